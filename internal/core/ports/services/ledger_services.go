package services

import (
	"context"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

// LedgerSvcFacade defines operations on ledgers.
type LedgerSvcFacade interface {
	// CreateLedger creates a ledger with its Cash and Equity system accounts,
	// booking a positive initial balance as an Equity -> Cash transfer.
	CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, userID string) (*domain.Ledger, error)

	// GetLedgerByID retrieves a specific ledger.
	GetLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error)

	// ListLedgers retrieves all ledgers belonging to an owner.
	ListLedgers(ctx context.Context, ownerID string) ([]domain.Ledger, error)
}
