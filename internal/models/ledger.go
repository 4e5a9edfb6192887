package models

// Ledger is one independent book of accounts.
type Ledger struct {
	LedgerID string `db:"ledger_id"`
	Name     string `db:"name"`
	OwnerID  string `db:"owner_id"`
	AuditFields
}
