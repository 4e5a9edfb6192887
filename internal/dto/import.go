package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/importer"
)

// StatementFormatResponse describes one supported statement format.
type StatementFormatResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ToStatementFormatResponse converts format configs to their public DTO form,
// exposing only the identification fields.
func ToStatementFormatResponse(configs []importer.FormatConfig) []StatementFormatResponse {
	res := make([]StatementFormatResponse, len(configs))
	for i, cfg := range configs {
		res[i] = StatementFormatResponse{ID: cfg.ID, DisplayName: cfg.DisplayName}
	}
	return res
}

// ListStatementFormatsResponse wraps the supported statement formats.
type ListStatementFormatsResponse struct {
	Formats []StatementFormatResponse `json:"formats"`
}

// ImportPreviewResponse is the dry-run result of parsing and resolving a
// statement without committing anything.
type ImportPreviewResponse struct {
	Postings         []importer.PlannedPosting   `json:"postings"`
	Errors           []importer.ValidationError  `json:"errors"`
	Duplicates       []importer.DuplicateWarning `json:"duplicates"`
	AccountsToCreate []string                    `json:"accountsToCreate"`
	BillingYear      int                         `json:"billingYear"`
	BillingMonth     int                         `json:"billingMonth"`
}

// ToImportPreviewResponse converts an importer.RunPlan to its DTO form.
func ToImportPreviewResponse(plan *importer.RunPlan) ImportPreviewResponse {
	return ImportPreviewResponse{
		Postings:         plan.Postings,
		Errors:           plan.Errors,
		Duplicates:       plan.Duplicates,
		AccountsToCreate: plan.AccountsToCreate,
		BillingYear:      plan.BillingYear,
		BillingMonth:     plan.BillingMonth,
	}
}

// ImportRowOverride corrects caller-chosen fields of one statement row before
// it is committed; nil fields keep the parsed values.
type ImportRowOverride struct {
	FromAccountID *string          `json:"fromAccountID"`
	ToAccountID   *string          `json:"toAccountID"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *time.Time       `json:"date"`
	Description   *string          `json:"description"`
}

// ImportControlsRequest carries the caller's row-level decisions for a
// reconcile run, keyed by statement row number: rows to skip outright, flagged
// duplicates to import anyway, and per-row corrections.
type ImportControlsRequest struct {
	SkipRows  []int                     `json:"skipRows"`
	ForceRows []int                     `json:"forceRows"`
	Overrides map[int]ImportRowOverride `json:"overrides"`
}

// ToRunControls converts the request controls to their importer form.
func ToRunControls(req ImportControlsRequest) importer.RunControls {
	controls := importer.RunControls{
		SkipRows:  req.SkipRows,
		ForceRows: req.ForceRows,
	}
	if len(req.Overrides) > 0 {
		controls.Overrides = make(map[int]importer.RowOverride, len(req.Overrides))
		for row, ov := range req.Overrides {
			controls.Overrides[row] = importer.RowOverride{
				FromAccountID: ov.FromAccountID,
				ToAccountID:   ov.ToAccountID,
				Amount:        ov.Amount,
				Date:          ov.Date,
				Description:   ov.Description,
			}
		}
	}
	return controls
}

// ImportResultResponse reports a committed reconciliation run.
type ImportResultResponse struct {
	RunID             string                      `json:"runID"`
	Imported          int                         `json:"imported"`
	SkippedRows       int                         `json:"skippedRows"`
	SkippedDuplicates int                         `json:"skippedDuplicates"`
	CreatedAccounts   []string                    `json:"createdAccounts"`
	Errors            []importer.ValidationError  `json:"errors"`
	Duplicates        []importer.DuplicateWarning `json:"duplicates"`
}

// ToImportResultResponse converts an importer.RunSummary to its DTO form.
func ToImportResultResponse(summary *importer.RunSummary) ImportResultResponse {
	return ImportResultResponse{
		RunID:             summary.RunID,
		Imported:          summary.Imported,
		SkippedRows:       summary.SkippedRows,
		SkippedDuplicates: summary.SkippedDuplicates,
		CreatedAccounts:   summary.CreatedAccounts,
		Errors:            summary.Errors,
		Duplicates:        summary.Duplicates,
	}
}
