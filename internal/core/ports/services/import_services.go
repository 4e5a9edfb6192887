package services

import (
	"context"

	"github.com/pennywise-app/pennywise_backend/internal/importer"
)

// ImportSvcFacade defines the statement import pipeline operations.
type ImportSvcFacade interface {
	// ListStatementFormats returns the registered statement formats.
	ListStatementFormats(ctx context.Context) []importer.FormatConfig

	// PreviewStatement parses and resolves a statement without committing
	// anything: a dry run of ReconcileStatement.
	PreviewStatement(ctx context.Context, ledgerID string, formatID string, data []byte) (*importer.RunPlan, error)

	// ReconcileStatement parses a statement, creates any missing referenced
	// accounts, and posts the committable rows, all in one atomic run under
	// the ledger's writer lock. Controls carry the caller's per-row skip,
	// force-duplicate, and override decisions.
	ReconcileStatement(ctx context.Context, ledgerID string, formatID string, data []byte, controls importer.RunControls, userID string) (*importer.RunSummary, error)
}
