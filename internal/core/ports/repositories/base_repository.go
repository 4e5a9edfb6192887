package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for database transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// LedgerLocker serializes writers of one ledger. The lock is transaction-scoped
// and released automatically on commit or rollback.
type LedgerLocker interface {
	// LockLedgerInTx takes the per-ledger advisory lock within tx, blocking
	// until any concurrent holder releases it.
	LockLedgerInTx(ctx context.Context, tx pgx.Tx, ledgerID string) error
}
