package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// CreateTransactionRequest defines the data needed to post a transaction.
// TransactionType is optional: when omitted it is inferred from the two account
// types; when present it must agree with them.
type CreateTransactionRequest struct {
	Date             time.Time               `json:"date" binding:"required"`
	Description      string                  `json:"description" binding:"required,notblank,max=255"`
	Amount           decimal.Decimal         `json:"amount" binding:"required"`
	FromAccountID    string                  `json:"fromAccountID" binding:"required"`
	ToAccountID      string                  `json:"toAccountID" binding:"required"`
	TransactionType  domain.TransactionType  `json:"transactionType" binding:"omitempty,oneof=EXPENSE INCOME TRANSFER"`
	Notes            string                  `json:"notes" binding:"max=500"`
	SourceExpression string                  `json:"sourceExpression"` // Raw arithmetic the user typed, recorded verbatim
}

// UpdateTransactionRequest replaces a transaction wholesale; every field goes
// through the same validation as a fresh posting.
type UpdateTransactionRequest struct {
	Date             time.Time               `json:"date" binding:"required"`
	Description      string                  `json:"description" binding:"required,notblank,max=255"`
	Amount           decimal.Decimal         `json:"amount" binding:"required"`
	FromAccountID    string                  `json:"fromAccountID" binding:"required"`
	ToAccountID      string                  `json:"toAccountID" binding:"required"`
	TransactionType  domain.TransactionType  `json:"transactionType" binding:"omitempty,oneof=EXPENSE INCOME TRANSFER"`
	Notes            string                  `json:"notes" binding:"max=500"`
	SourceExpression string                  `json:"sourceExpression"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID    string                 `json:"transactionID"`
	LedgerID         string                 `json:"ledgerID"`
	Date             time.Time              `json:"date"`
	Description      string                 `json:"description"`
	Amount           decimal.Decimal        `json:"amount"`
	FromAccountID    string                 `json:"fromAccountID"`
	ToAccountID      string                 `json:"toAccountID"`
	TransactionType  domain.TransactionType `json:"transactionType"`
	Notes            string                 `json:"notes"`
	SourceExpression string                 `json:"sourceExpression"`
	CreatedAt        time.Time              `json:"createdAt"`
	CreatedBy        string                 `json:"createdBy"`
	LastUpdatedAt    time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy    string                 `json:"lastUpdatedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:    txn.TransactionID,
		LedgerID:         txn.LedgerID,
		Date:             txn.Date,
		Description:      txn.Description,
		Amount:           txn.Amount,
		FromAccountID:    txn.FromAccountID,
		ToAccountID:      txn.ToAccountID,
		TransactionType:  txn.TransactionType,
		Notes:            txn.Notes,
		SourceExpression: txn.SourceExpression,
		CreatedAt:        txn.CreatedAt,
		CreatedBy:        txn.CreatedBy,
		LastUpdatedAt:    txn.LastUpdatedAt,
		LastUpdatedBy:    txn.LastUpdatedBy,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToTransactionResponse(&txn)
	}
	return res
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	AccountID string  `form:"accountID"` // Optional filter: postings touching this account
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ReassignTransactionsRequest moves every posting off one account onto another.
type ReassignTransactionsRequest struct {
	FromAccountID string `json:"fromAccountID" binding:"required"`
	ToAccountID   string `json:"toAccountID" binding:"required"`
}

// ReassignTransactionsResponse reports how many postings were moved.
type ReassignTransactionsResponse struct {
	ReassignedCount int64 `json:"reassignedCount"`
}
