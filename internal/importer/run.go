package importer

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlannedPosting is one parsed row after account resolution, ready to commit.
type PlannedPosting struct {
	RowNumber   int             `json:"rowNumber"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	FromPath    string          `json:"fromPath"`
	ToPath      string          `json:"toPath"`
	Duplicate   bool            `json:"duplicate"`
	Skipped     bool            `json:"skipped"` // Excluded by the caller's skip list
}

// RowOverride replaces caller-chosen fields of one parsed row before commit.
// Nil fields keep the parsed value. Account ids must name existing (or
// run-created) accounts in the ledger.
type RowOverride struct {
	FromAccountID *string          `json:"fromAccountID"`
	ToAccountID   *string          `json:"toAccountID"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *time.Time       `json:"date"`
	Description   *string          `json:"description"`
}

// RunControls carries the caller's row-level decisions for a reconcile run,
// keyed by statement row number. Duplicate detection is advisory: flagged rows
// are withheld unless the caller forces them, and any row can be skipped or
// corrected outright.
type RunControls struct {
	SkipRows  []int               `json:"skipRows"`
	ForceRows []int               `json:"forceRows"` // Commit these rows even when flagged duplicate
	Overrides map[int]RowOverride `json:"overrides"`
}

// RunPlan is the dry-run outcome of an import: what would be committed, which
// accounts would be created, and everything that could not be parsed or
// resolved. Preview and reconcile share this planning step.
type RunPlan struct {
	Postings         []PlannedPosting   `json:"postings"`
	Errors           []ValidationError  `json:"errors"`
	Duplicates       []DuplicateWarning `json:"duplicates"`
	AccountsToCreate []string           `json:"accountsToCreate"` // Full dotted paths
	BillingYear      int                `json:"billingYear"`
	BillingMonth     int                `json:"billingMonth"`
}

// RunSummary reports a committed reconciliation run.
type RunSummary struct {
	RunID             string             `json:"runID"`
	Imported          int                `json:"imported"`
	SkippedRows       int                `json:"skippedRows"` // Rows excluded by the caller
	SkippedDuplicates int                `json:"skippedDuplicates"`
	CreatedAccounts   []string           `json:"createdAccounts"` // Full dotted paths, creation order
	Errors            []ValidationError  `json:"errors"`
	Duplicates        []DuplicateWarning `json:"duplicates"`
}
