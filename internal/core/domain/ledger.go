package domain

// Ledger is an isolated book of accounts and postings belonging to one owner.
type Ledger struct {
	LedgerID string `json:"ledgerID"` // Primary key (UUID)
	Name     string `json:"name"`
	OwnerID  string `json:"ownerID"` // External user reference; auth is a collaborator
	AuditFields
}
