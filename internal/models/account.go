package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Account represents one node of a ledger's chart of accounts.
// Note: ParentAccountID uses string for a nullable foreign key; the repository
// translates "" to NULL. Balances are derived from transactions and never
// stored on this row.
type Account struct {
	AccountID       string      `db:"account_id"`
	LedgerID        string      `db:"ledger_id"`
	Name            string      `db:"name"`
	AccountType     AccountType `db:"account_type"`
	ParentAccountID string      `db:"parent_account_id"` // Nullable
	Depth           int         `db:"depth"`
	IsSystem        bool        `db:"is_system"`
	AuditFields
}
