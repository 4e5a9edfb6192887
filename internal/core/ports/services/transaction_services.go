package services

import (
	"context"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction.
	GetTransactionByID(ctx context.Context, ledgerID string, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of a ledger's transactions, optionally
	// filtered to one account, using token-based pagination.
	ListTransactions(ctx context.Context, ledgerID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// TransactionWriterSvc defines write operations for transaction data
type TransactionWriterSvc interface {
	// CreateTransaction validates and posts a new transaction.
	CreateTransaction(ctx context.Context, ledgerID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// UpdateTransaction replaces an existing transaction wholesale after
	// revalidating it like a fresh posting.
	UpdateTransaction(ctx context.Context, ledgerID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, ledgerID string, transactionID string, userID string) error

	// ReassignTransactions moves every posting off one account onto another of
	// the same type and returns the number of postings moved.
	ReassignTransactions(ctx context.Context, ledgerID string, req dto.ReassignTransactionsRequest, userID string) (int64, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
