package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a posting by the kinds of accounts it connects.
type TransactionType string

const (
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionIncome   TransactionType = "INCOME"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Transaction represents a single posting moving Amount from one account into
// another. Amount is always positive; direction is carried by the account pair.
type Transaction struct {
	TransactionID    string          `db:"transaction_id"`
	LedgerID         string          `db:"ledger_id"`
	Date             time.Time       `db:"transaction_date"`
	Description      string          `db:"description"`
	Amount           decimal.Decimal `db:"amount"`
	FromAccountID    string          `db:"from_account_id"`
	ToAccountID      string          `db:"to_account_id"`
	TransactionType  TransactionType `db:"transaction_type"`
	Notes            string          `db:"notes"`             // Nullable
	SourceExpression string          `db:"source_expression"` // Raw statement line for imported postings
	AuditFields
}
