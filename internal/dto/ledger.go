package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// CreateLedgerRequest defines the data needed to create a new ledger.
// A positive InitialBalance is booked as an Equity -> Cash transfer at creation.
type CreateLedgerRequest struct {
	Name           string           `json:"name" binding:"required,notblank,max=100"`
	InitialBalance *decimal.Decimal `json:"initialBalance"` // Optional, must be >= 0 when present
}

// LedgerResponse defines the data returned for a ledger.
type LedgerResponse struct {
	LedgerID      string    `json:"ledgerID"`
	Name          string    `json:"name"`
	OwnerID       string    `json:"ownerID"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToLedgerResponse converts a domain.Ledger to LedgerResponse DTO
func ToLedgerResponse(l *domain.Ledger) LedgerResponse {
	return LedgerResponse{
		LedgerID:      l.LedgerID,
		Name:          l.Name,
		OwnerID:       l.OwnerID,
		CreatedAt:     l.CreatedAt,
		CreatedBy:     l.CreatedBy,
		LastUpdatedAt: l.LastUpdatedAt,
		LastUpdatedBy: l.LastUpdatedBy,
	}
}

// ListLedgersResponse wraps the list of ledgers.
type ListLedgersResponse struct {
	Ledgers []LedgerResponse `json:"ledgers"`
}
