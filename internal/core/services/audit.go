package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// newAuditRecord builds one audit record for a mutation. oldValue, newValue and
// extraData may each be nil; non-nil values are serialized as JSON snapshots.
func newAuditRecord(ledgerID string, entityType domain.AuditEntityType, entityID string, action domain.AuditAction, oldValue, newValue, extraData any, userID string, now time.Time) (domain.AuditRecord, error) {
	record := domain.AuditRecord{
		AuditID:    uuid.NewString(),
		LedgerID:   ledgerID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		CreatedAt:  now,
		CreatedBy:  userID,
	}

	var err error
	if record.OldValue, err = marshalSnapshot(oldValue); err != nil {
		return domain.AuditRecord{}, fmt.Errorf("failed to marshal audit old value: %w", err)
	}
	if record.NewValue, err = marshalSnapshot(newValue); err != nil {
		return domain.AuditRecord{}, fmt.Errorf("failed to marshal audit new value: %w", err)
	}
	if record.ExtraData, err = marshalSnapshot(extraData); err != nil {
		return domain.AuditRecord{}, fmt.Errorf("failed to marshal audit extra data: %w", err)
	}
	return record, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
