package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	"github.com/pennywise-app/pennywise_backend/internal/models"
	"github.com/pennywise-app/pennywise_backend/internal/utils/pagination"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func toModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:    d.TransactionID,
		LedgerID:         d.LedgerID,
		Date:             d.Date,
		Description:      d.Description,
		Amount:           d.Amount,
		FromAccountID:    d.FromAccountID,
		ToAccountID:      d.ToAccountID,
		TransactionType:  models.TransactionType(d.TransactionType),
		Notes:            d.Notes,
		SourceExpression: d.SourceExpression,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:    m.TransactionID,
		LedgerID:         m.LedgerID,
		Date:             m.Date,
		Description:      m.Description,
		Amount:           m.Amount,
		FromAccountID:    m.FromAccountID,
		ToAccountID:      m.ToAccountID,
		TransactionType:  domain.TransactionType(m.TransactionType),
		Notes:            m.Notes,
		SourceExpression: m.SourceExpression,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const transactionColumns = `transaction_id, ledger_id, transaction_date, description, amount, from_account_id, to_account_id, transaction_type, notes, source_expression, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.LedgerID,
		&m.Date,
		&m.Description,
		&m.Amount,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.TransactionType,
		&m.Notes,
		&m.SourceExpression,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return toDomainTransaction(m), nil
}

// SaveTransactionInTx inserts a new transaction within the given transaction.
func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := toModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.LedgerID,
		m.Date,
		m.Description,
		m.Amount,
		m.FromAccountID,
		m.ToAccountID,
		m.TransactionType,
		m.Notes,
		m.SourceExpression,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// UpdateTransactionInTx replaces the mutable fields of an existing transaction.
func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := toModelTransaction(txn)

	query := `
		UPDATE transactions
		SET transaction_date = $2, description = $3, amount = $4, from_account_id = $5,
		    to_account_id = $6, transaction_type = $7, notes = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Date,
		m.Description,
		m.Amount,
		m.FromAccountID,
		m.ToAccountID,
		m.TransactionType,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransactionInTx removes a transaction within the given transaction.
func (r *PgxTransactionRepository) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID, scoped to a ledger.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, ledgerID string, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ledger_id = $1 AND transaction_id = $2;
	`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, ledgerID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return &txn, nil
}

// ListTransactionsByLedger retrieves a page of a ledger's transactions, newest
// first, with token-based pagination on (transaction_date, created_at).
func (r *PgxTransactionRepository) ListTransactionsByLedger(ctx context.Context, ledgerID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	return r.listPaginated(ctx, ledgerID, "", limit, nextToken)
}

// ListTransactionsByAccount retrieves a page of transactions touching the given
// account on either side.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, ledgerID string, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	return r.listPaginated(ctx, ledgerID, accountID, limit, nextToken)
}

func (r *PgxTransactionRepository) listPaginated(ctx context.Context, ledgerID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ledger_id = $1
	`
	args := []any{ledgerID}
	if accountID != "" {
		query += ` AND (from_account_id = $2 OR to_account_id = $2)`
		args = append(args, accountID)
	}
	if nextToken != nil && *nextToken != "" {
		afterDate, afterCreated, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += fmt.Sprintf(` AND (transaction_date, created_at) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, afterDate, afterCreated)
	}
	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY transaction_date DESC, created_at DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for ledger %s: %w", ledgerID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for ledger %s: %w", ledgerID, err)
		}
		transactions = append(transactions, txn)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for ledger %s: %w", ledgerID, rows.Err())
	}

	var newNextToken *string
	if len(transactions) > limit {
		transactions = transactions[:limit]
		last := transactions[len(transactions)-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		newNextToken = &token
	}
	return transactions, newNextToken, nil
}

// FindTransactionsByLedgerInTx reads all of a ledger's transactions within a
// transaction.
func (r *PgxTransactionRepository) FindTransactionsByLedgerInTx(ctx context.Context, tx pgx.Tx, ledgerID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ledger_id = $1;
	`
	rows, err := tx.Query(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for ledger %s: %w", ledgerID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for ledger %s: %w", ledgerID, err)
		}
		transactions = append(transactions, txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows for ledger %s: %w", ledgerID, rows.Err())
	}
	return transactions, nil
}

// CountByAccountInTx counts transactions referencing an account on either side.
func (r *PgxTransactionRepository) CountByAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE from_account_id = $1 OR to_account_id = $1;`,
		accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for account %s: %w", accountID, err)
	}
	return count, nil
}

// SumFlowsByLedger aggregates per-account inflow/outflow totals in one pass.
// Each posting contributes its amount as outflow for the from side and inflow
// for the to side; balances are derived from these sums, never stored.
func (r *PgxTransactionRepository) SumFlowsByLedger(ctx context.Context, ledgerID string) (map[string]domain.AccountFlow, error) {
	query := `
		SELECT account_id, SUM(inflow) AS total_in, SUM(outflow) AS total_out
		FROM (
			SELECT to_account_id AS account_id, amount AS inflow, 0 AS outflow
			FROM transactions WHERE ledger_id = $1
			UNION ALL
			SELECT from_account_id AS account_id, 0 AS inflow, amount AS outflow
			FROM transactions WHERE ledger_id = $1
		) flows
		GROUP BY account_id;
	`
	rows, err := r.Pool.Query(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum account flows for ledger %s: %w", ledgerID, err)
	}
	defer rows.Close()

	flows := make(map[string]domain.AccountFlow)
	for rows.Next() {
		var accountID string
		var in, out decimal.Decimal
		if err := rows.Scan(&accountID, &in, &out); err != nil {
			return nil, fmt.Errorf("failed to scan flow row for ledger %s: %w", ledgerID, err)
		}
		flows[accountID] = domain.AccountFlow{In: in, Out: out}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating flow rows for ledger %s: %w", ledgerID, rows.Err())
	}
	return flows, nil
}

// ReassignTransactionsInTx repoints every posting referencing fromAccountID
// onto toAccountID. Both sides are rewritten in one statement so a posting
// referencing the account on both sides cannot end up half-moved.
func (r *PgxTransactionRepository) ReassignTransactionsInTx(ctx context.Context, tx pgx.Tx, ledgerID string, fromAccountID string, toAccountID string) (int64, error) {
	query := `
		UPDATE transactions
		SET from_account_id = CASE WHEN from_account_id = $2 THEN $3 ELSE from_account_id END,
		    to_account_id   = CASE WHEN to_account_id = $2 THEN $3 ELSE to_account_id END
		WHERE ledger_id = $1 AND (from_account_id = $2 OR to_account_id = $2);
	`
	cmdTag, err := tx.Exec(ctx, query, ledgerID, fromAccountID, toAccountID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign transactions from account %s: %w", fromAccountID, err)
	}
	return cmdTag.RowsAffected(), nil
}
