package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// AuditWriter defines write operations for the audit log
type AuditWriter interface {
	// SaveAuditRecordInTx appends an audit record within a transaction, so the
	// record commits or rolls back together with the change it describes.
	SaveAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error

	// SaveAuditRecord appends an audit record outside any caller transaction.
	// Used for records that must survive a rolled-back operation, like a failed
	// import run.
	SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error
}

// AuditReader defines read operations for the audit log
type AuditReader interface {
	// ListAuditRecords retrieves a ledger's audit records, newest first.
	ListAuditRecords(ctx context.Context, ledgerID string, limit int, offset int) ([]domain.AuditRecord, error)
}

// AuditRepositoryFacade combines all audit-related repository interfaces
type AuditRepositoryFacade interface {
	AuditWriter
	AuditReader
}
