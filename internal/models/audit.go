package models

import (
	"encoding/json"
	"time"
)

// AuditRecord is one append-only audit log row. Old/new values are stored as
// JSONB snapshots of the entity before and after the change.
type AuditRecord struct {
	AuditID    string          `db:"audit_id"`
	LedgerID   string          `db:"ledger_id"`
	EntityType string          `db:"entity_type"`
	EntityID   string          `db:"entity_id"`
	Action     string          `db:"action"`
	OldValue   json.RawMessage `db:"old_value"`  // Nullable
	NewValue   json.RawMessage `db:"new_value"`  // Nullable
	ExtraData  json.RawMessage `db:"extra_data"` // Nullable
	CreatedAt  time.Time       `db:"created_at"`
	CreatedBy  string          `db:"created_by"`
}
