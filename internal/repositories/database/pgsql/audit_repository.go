package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	"github.com/pennywise-app/pennywise_backend/internal/models"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the append-only audit log.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func toModelAuditRecord(d domain.AuditRecord) models.AuditRecord {
	return models.AuditRecord{
		AuditID:    d.AuditID,
		LedgerID:   d.LedgerID,
		EntityType: string(d.EntityType),
		EntityID:   d.EntityID,
		Action:     string(d.Action),
		OldValue:   d.OldValue,
		NewValue:   d.NewValue,
		ExtraData:  d.ExtraData,
		CreatedAt:  d.CreatedAt,
		CreatedBy:  d.CreatedBy,
	}
}

func toDomainAuditRecord(m models.AuditRecord) domain.AuditRecord {
	return domain.AuditRecord{
		AuditID:    m.AuditID,
		LedgerID:   m.LedgerID,
		EntityType: domain.AuditEntityType(m.EntityType),
		EntityID:   m.EntityID,
		Action:     domain.AuditAction(m.Action),
		OldValue:   m.OldValue,
		NewValue:   m.NewValue,
		ExtraData:  m.ExtraData,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}

const auditInsertQuery = `
	INSERT INTO audit_logs (audit_id, ledger_id, entity_type, entity_id, action, old_value, new_value, extra_data, created_at, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// SaveAuditRecordInTx appends an audit record within the given transaction.
func (r *PgxAuditRepository) SaveAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	m := toModelAuditRecord(record)
	_, err := tx.Exec(ctx, auditInsertQuery,
		m.AuditID, m.LedgerID, m.EntityType, m.EntityID, m.Action,
		m.OldValue, m.NewValue, m.ExtraData, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record %s: %w", m.AuditID, err)
	}
	return nil
}

// SaveAuditRecord appends an audit record outside any caller transaction.
func (r *PgxAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	m := toModelAuditRecord(record)
	_, err := r.Pool.Exec(ctx, auditInsertQuery,
		m.AuditID, m.LedgerID, m.EntityType, m.EntityID, m.Action,
		m.OldValue, m.NewValue, m.ExtraData, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record %s: %w", m.AuditID, err)
	}
	return nil
}

// ListAuditRecords retrieves a ledger's audit records, newest first.
func (r *PgxAuditRepository) ListAuditRecords(ctx context.Context, ledgerID string, limit int, offset int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT audit_id, ledger_id, entity_type, entity_id, action, old_value, new_value, extra_data, created_at, created_by
		FROM audit_logs
		WHERE ledger_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, ledgerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records for ledger %s: %w", ledgerID, err)
	}
	defer rows.Close()

	records := []domain.AuditRecord{}
	for rows.Next() {
		var m models.AuditRecord
		err := rows.Scan(
			&m.AuditID,
			&m.LedgerID,
			&m.EntityType,
			&m.EntityID,
			&m.Action,
			&m.OldValue,
			&m.NewValue,
			&m.ExtraData,
			&m.CreatedAt,
			&m.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row for ledger %s: %w", ledgerID, err)
		}
		records = append(records, toDomainAuditRecord(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating audit rows for ledger %s: %w", ledgerID, rows.Err())
	}
	return records, nil
}
