package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	"github.com/pennywise-app/pennywise_backend/internal/models"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

func toModelLedger(d domain.Ledger) models.Ledger {
	return models.Ledger{
		LedgerID: d.LedgerID,
		Name:     d.Name,
		OwnerID:  d.OwnerID,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainLedger(m models.Ledger) domain.Ledger {
	return domain.Ledger{
		LedgerID: m.LedgerID,
		Name:     m.Name,
		OwnerID:  m.OwnerID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveLedgerInTx inserts a new ledger within the given transaction.
func (r *PgxLedgerRepository) SaveLedgerInTx(ctx context.Context, tx pgx.Tx, ledger domain.Ledger) error {
	m := toModelLedger(ledger)

	query := `
		INSERT INTO ledgers (ledger_id, name, owner_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		m.LedgerID,
		m.Name,
		m.OwnerID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: ledger %s already exists", apperrors.ErrDuplicate, m.LedgerID)
		}
		return fmt.Errorf("failed to save ledger %s: %w", m.LedgerID, err)
	}
	return nil
}

// FindLedgerByID retrieves a ledger by its ID.
func (r *PgxLedgerRepository) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	query := `
		SELECT ledger_id, name, owner_id, created_at, created_by, last_updated_at, last_updated_by
		FROM ledgers
		WHERE ledger_id = $1;
	`
	var m models.Ledger
	err := r.Pool.QueryRow(ctx, query, ledgerID).Scan(
		&m.LedgerID,
		&m.Name,
		&m.OwnerID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger by ID %s: %w", ledgerID, err)
	}
	d := toDomainLedger(m)
	return &d, nil
}

// ListLedgersByOwner retrieves all ledgers belonging to an owner, oldest first.
func (r *PgxLedgerRepository) ListLedgersByOwner(ctx context.Context, ownerID string) ([]domain.Ledger, error) {
	query := `
		SELECT ledger_id, name, owner_id, created_at, created_by, last_updated_at, last_updated_by
		FROM ledgers
		WHERE owner_id = $1
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	ledgers := []domain.Ledger{}
	for rows.Next() {
		var m models.Ledger
		err := rows.Scan(
			&m.LedgerID,
			&m.Name,
			&m.OwnerID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row for owner %s: %w", ownerID, err)
		}
		ledgers = append(ledgers, toDomainLedger(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating ledger rows for owner %s: %w", ownerID, rows.Err())
	}
	return ledgers, nil
}
