package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, ledgerID string, accountID string) (*domain.Account, error)

	// ListAccounts retrieves the full chart of accounts for a ledger.
	ListAccounts(ctx context.Context, ledgerID string) ([]domain.Account, error)

	// GetAccountBalance derives an account's balance, aggregated over the
	// account and all of its descendants.
	GetAccountBalance(ctx context.Context, ledgerID string, accountID string) (decimal.Decimal, error)

	// GetAccountTree renders the ledger's hierarchy with aggregated balances.
	// A non-nil typeFilter restricts the tree to accounts of that type.
	GetAccountTree(ctx context.Context, ledgerID string, typeFilter *domain.AccountType) ([]domain.AccountNode, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, ledgerID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// DeleteAccount removes an account that has no children, no transactions,
	// and is not a system account.
	DeleteAccount(ctx context.Context, ledgerID string, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
