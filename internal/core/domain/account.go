package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the four supported account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Income, Expense:
		return true
	}
	return false
}

// MaxAccountDepth is the hard cap on the chart-of-accounts hierarchy. Depth 1 is a
// root account; creating a child below depth 3 is rejected, never truncated.
const MaxAccountDepth = 3

// Names of the two bootstrap accounts every ledger is created with.
const (
	SystemAccountCash   = "Cash"
	SystemAccountEquity = "Equity"
)

// Account represents one node in a ledger's chart of accounts.
// Balance is deliberately absent: it is always derived from postings, never stored.
type Account struct {
	AccountID       string      `json:"accountID"` // Primary key (UUID)
	LedgerID        string      `json:"ledgerID"`  // FK -> ledgers.ledger_id
	Name            string      `json:"name"`      // Unique within the ledger, case sensitive
	AccountType     AccountType `json:"accountType"`
	ParentAccountID string      `json:"parentAccountID"` // Empty for root accounts
	Depth           int         `json:"depth"`           // 1 + parent depth, <= MaxAccountDepth
	IsSystem        bool        `json:"isSystem"`        // True only for Cash/Equity bootstrap accounts
	AuditFields
}

// IsLeaf is resolved against the hierarchy, not stored; see AccountService.
