package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// LedgerReader defines read operations for ledger data
type LedgerReader interface {
	// FindLedgerByID retrieves a specific ledger by its unique identifier.
	FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error)

	// ListLedgersByOwner retrieves all ledgers belonging to an owner.
	ListLedgersByOwner(ctx context.Context, ownerID string) ([]domain.Ledger, error)
}

// LedgerWriter defines write operations for ledger data
type LedgerWriter interface {
	// SaveLedgerInTx persists a new ledger within a transaction.
	SaveLedgerInTx(ctx context.Context, tx pgx.Tx, ledger domain.Ledger) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
	LedgerLocker
}
