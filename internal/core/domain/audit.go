package domain

import (
	"encoding/json"
	"time"
)

// AuditAction enumerates the mutations the audit sink records.
type AuditAction string

const (
	AuditCreate   AuditAction = "CREATE"
	AuditUpdate   AuditAction = "UPDATE"
	AuditDelete   AuditAction = "DELETE"
	AuditReassign AuditAction = "REASSIGN"
)

// AuditEntityType names the entity a record refers to.
type AuditEntityType string

const (
	AuditEntityAccount     AuditEntityType = "ACCOUNT"
	AuditEntityTransaction AuditEntityType = "TRANSACTION"
	AuditEntityLedger      AuditEntityType = "LEDGER"
	AuditEntityImportRun   AuditEntityType = "IMPORT_RUN"
)

// AuditRecord is the write contract of the audit sink: exactly one record per
// mutating operation. OldValue/NewValue are JSON snapshots of the entity before and
// after; a reassignment carries neither and instead describes the move in ExtraData.
type AuditRecord struct {
	AuditID    string          `json:"auditID"`
	LedgerID   string          `json:"ledgerID"`
	EntityType AuditEntityType `json:"entityType"`
	EntityID   string          `json:"entityID"`
	Action     AuditAction     `json:"action"`
	OldValue   json.RawMessage `json:"oldValue,omitempty"`
	NewValue   json.RawMessage `json:"newValue,omitempty"`
	ExtraData  json.RawMessage `json:"extraData,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	CreatedBy  string          `json:"createdBy"`
}
