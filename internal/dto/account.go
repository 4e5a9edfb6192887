package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name            string             `json:"name" binding:"required,notblank,max=100"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY INCOME EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	LedgerID        string             `json:"ledgerID"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	ParentAccountID string             `json:"parentAccountID"` // Empty string if null in DB
	Depth           int                `json:"depth"`
	IsSystem        bool               `json:"isSystem"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		LedgerID:        acc.LedgerID,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		ParentAccountID: acc.ParentAccountID,
		Depth:           acc.Depth,
		IsSystem:        acc.IsSystem,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
// Balance aggregates the account and all its descendants.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// AccountTreeNode is one node of the rendered hierarchy with its aggregated balance.
type AccountTreeNode struct {
	AccountResponse
	Balance  decimal.Decimal   `json:"balance"`
	Children []AccountTreeNode `json:"children"`
}

// ToAccountTreeResponse converts domain tree nodes to their DTO form.
func ToAccountTreeResponse(nodes []domain.AccountNode) []AccountTreeNode {
	res := make([]AccountTreeNode, len(nodes))
	for i, n := range nodes {
		res[i] = AccountTreeNode{
			AccountResponse: ToAccountResponse(&n.Account),
			Balance:         n.Balance,
			Children:        ToAccountTreeResponse(n.Children),
		}
	}
	return res
}

// AccountTreeResponse wraps the root nodes of a ledger's account hierarchy.
type AccountTreeResponse struct {
	Accounts []AccountTreeNode `json:"accounts"`
}
