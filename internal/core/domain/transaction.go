package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a posting by the direction of value flow.
type TransactionType string

const (
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionIncome   TransactionType = "INCOME"
	TransactionTransfer TransactionType = "TRANSFER"
)

// IsValid reports whether t is one of the supported transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionExpense, TransactionIncome, TransactionTransfer:
		return true
	}
	return false
}

// Field length limits enforced at validation time.
const (
	MaxDescriptionLen = 255
	MaxNotesLen       = 500
)

// Transaction is one two-sided posting: a positive amount moving from one leaf
// account to another within the same ledger.
type Transaction struct {
	TransactionID    string          `json:"transactionID"` // Primary key (UUID)
	LedgerID         string          `json:"ledgerID"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"` // Non-empty, <= MaxDescriptionLen
	Amount           decimal.Decimal `json:"amount"`      // Positive, at most two fractional digits
	FromAccountID    string          `json:"fromAccountID"`
	ToAccountID      string          `json:"toAccountID"`
	TransactionType  TransactionType `json:"transactionType"`
	Notes            string          `json:"notes"`            // Optional, <= MaxNotesLen
	SourceExpression string          `json:"sourceExpression"` // Literal arithmetic the user typed; audit only
	AuditFields
}

// InferTransactionType derives the transaction type from the two account types.
// Callers that supply an explicit type still go through full legality validation;
// on disagreement the explicit validation error is authoritative.
func InferTransactionType(from, to AccountType) TransactionType {
	switch {
	case to == Expense:
		return TransactionExpense
	case from == Income:
		return TransactionIncome
	default:
		return TransactionTransfer
	}
}

// LegalEndpointTypes reports whether the (from, to) account types are legal for the
// given transaction type:
//
//	EXPENSE:  ASSET|LIABILITY -> EXPENSE
//	INCOME:   INCOME -> ASSET|LIABILITY
//	TRANSFER: ASSET|LIABILITY -> ASSET|LIABILITY
func LegalEndpointTypes(txType TransactionType, from, to AccountType) bool {
	fundsSide := func(t AccountType) bool { return t == Asset || t == Liability }
	switch txType {
	case TransactionExpense:
		return fundsSide(from) && to == Expense
	case TransactionIncome:
		return from == Income && fundsSide(to)
	case TransactionTransfer:
		return fundsSide(from) && fundsSide(to)
	}
	return false
}
