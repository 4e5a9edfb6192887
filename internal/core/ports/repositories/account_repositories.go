package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, ledgerID string, accountID string) (*domain.Account, error)

	// FindAccountByName retrieves an account by its name within a ledger.
	// Names are unique per ledger.
	FindAccountByName(ctx context.Context, ledgerID string, name string) (*domain.Account, error)

	// FindAccountsByLedger retrieves the full chart of accounts for a ledger.
	FindAccountsByLedger(ctx context.Context, ledgerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccountInTx persists a new account within a transaction.
	SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// DeleteAccountInTx removes an account within a transaction.
	DeleteAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) error
}

// AccountTransactionSupport defines operations used by multi-step writes
type AccountTransactionSupport interface {
	// FindAccountsByLedgerInTx reads the chart of accounts within a transaction,
	// seeing rows created earlier in the same transaction.
	FindAccountsByLedgerInTx(ctx context.Context, tx pgx.Tx, ledgerID string) ([]domain.Account, error)

	// CountChildrenInTx counts direct children of an account within a transaction.
	CountChildrenInTx(ctx context.Context, tx pgx.Tx, accountID string) (int64, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
