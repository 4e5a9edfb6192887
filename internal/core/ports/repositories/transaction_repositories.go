package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, ledgerID string, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByLedger retrieves a paginated list of a ledger's
	// transactions, newest first, using token-based pagination. It returns the
	// transactions, a token for the next page, and an error.
	ListTransactionsByLedger(ctx context.Context, ledgerID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListTransactionsByAccount retrieves a paginated list of transactions
	// touching a specific account on either side.
	ListTransactionsByAccount(ctx context.Context, ledgerID string, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumFlowsByLedger aggregates per-account inflow and outflow totals over all
	// of a ledger's transactions, keyed by account ID.
	SumFlowsByLedger(ctx context.Context, ledgerID string) (map[string]domain.AccountFlow, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransactionInTx persists a new transaction within a transaction.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateTransactionInTx replaces the mutable fields of an existing
	// transaction within a transaction.
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// DeleteTransactionInTx removes a transaction within a transaction.
	DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error

	// ReassignTransactionsInTx repoints every posting referencing fromAccountID
	// onto toAccountID and returns the number of rows touched.
	ReassignTransactionsInTx(ctx context.Context, tx pgx.Tx, ledgerID string, fromAccountID string, toAccountID string) (int64, error)
}

// TransactionSupport defines operations used by multi-step writes
type TransactionSupport interface {
	// CountByAccountInTx counts transactions referencing an account on either
	// side, within a transaction.
	CountByAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) (int64, error)

	// FindTransactionsByLedgerInTx reads all of a ledger's transactions within a
	// transaction, seeing rows written earlier in the same transaction.
	FindTransactionsByLedgerInTx(ctx context.Context, tx pgx.Tx, ledgerID string) ([]domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionSupport
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
	LedgerLocker
}
