package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

const maxListLimit = 100

// transactionServiceImpl implements the TransactionSvcFacade interface
type transactionServiceImpl struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryWithTx
	accountRepo     portsrepo.AccountRepositoryFacade
	auditRepo       portsrepo.AuditWriter
	maxAmount       decimal.Decimal
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(transactionRepo portsrepo.TransactionRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, auditRepo portsrepo.AuditWriter, maxAmount decimal.Decimal) portssvc.TransactionSvcFacade {
	return &transactionServiceImpl{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		auditRepo:       auditRepo,
		maxAmount:       maxAmount,
	}
}

// Ensure transactionServiceImpl implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionServiceImpl)(nil)

// buildTransaction validates a posting request against the ledger's chart and
// assembles the domain transaction. Create and update share every rule.
func (s *transactionServiceImpl) buildTransaction(ctx context.Context, ledgerID string, req dto.CreateTransactionRequest) (domain.Transaction, error) {
	if strings.TrimSpace(req.Description) == "" {
		return domain.Transaction{}, fmt.Errorf("%w: description must not be blank", apperrors.ErrValidation)
	}
	if len(req.Description) > domain.MaxDescriptionLen {
		return domain.Transaction{}, fmt.Errorf("%w: description exceeds %d characters", apperrors.ErrValidation, domain.MaxDescriptionLen)
	}
	if len(req.Notes) > domain.MaxNotesLen {
		return domain.Transaction{}, fmt.Errorf("%w: notes exceed %d characters", apperrors.ErrValidation, domain.MaxNotesLen)
	}
	if err := validateAmount(req.Amount, s.maxAmount); err != nil {
		return domain.Transaction{}, err
	}

	chart, err := s.accountRepo.FindAccountsByLedger(ctx, ledgerID)
	if err != nil {
		return domain.Transaction{}, err
	}
	_, _, txType, err := validatePosting(chart, req.FromAccountID, req.ToAccountID, req.TransactionType)
	if err != nil {
		return domain.Transaction{}, err
	}

	return domain.Transaction{
		LedgerID:         ledgerID,
		Date:             req.Date,
		Description:      req.Description,
		Amount:           req.Amount,
		FromAccountID:    req.FromAccountID,
		ToAccountID:      req.ToAccountID,
		TransactionType:  txType,
		Notes:            req.Notes,
		SourceExpression: req.SourceExpression,
	}, nil
}

// CreateTransaction validates and posts a new transaction.
func (s *transactionServiceImpl) CreateTransaction(ctx context.Context, ledgerID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	txn, err := s.buildTransaction(ctx, ledgerID, req)
	if err != nil {
		s.LogError(ctx, err, "Transaction validation failed", slog.String("ledger_id", ledgerID))
		return nil, err
	}

	now := time.Now()
	txn.TransactionID = uuid.NewString()
	txn.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}

	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.transactionRepo.Rollback(ctx, tx)

	if err := s.transactionRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction", slog.String("transaction_id", txn.TransactionID))
		return nil, err
	}
	auditRecord, err := newAuditRecord(ledgerID, domain.AuditEntityTransaction, txn.TransactionID, domain.AuditCreate, nil, txn, nil, userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txn.TransactionType)),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

// UpdateTransaction replaces a transaction wholesale. The request goes through
// exactly the same validation as a fresh posting; only the identity and
// creation audit fields survive from the original.
func (s *transactionServiceImpl) UpdateTransaction(ctx context.Context, ledgerID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	existing, err := s.transactionRepo.FindTransactionByID(ctx, ledgerID, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find transaction for update", slog.String("transaction_id", transactionID))
		return nil, err
	}

	txn, err := s.buildTransaction(ctx, ledgerID, dto.CreateTransactionRequest(req))
	if err != nil {
		s.LogError(ctx, err, "Transaction update validation failed", slog.String("transaction_id", transactionID))
		return nil, err
	}

	now := time.Now()
	txn.TransactionID = existing.TransactionID
	txn.AuditFields = domain.AuditFields{
		CreatedAt:     existing.CreatedAt,
		CreatedBy:     existing.CreatedBy,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.transactionRepo.Rollback(ctx, tx)

	if err := s.transactionRepo.UpdateTransactionInTx(ctx, tx, txn); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	auditRecord, err := newAuditRecord(ledgerID, domain.AuditEntityTransaction, transactionID, domain.AuditUpdate, existing, txn, nil, userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	return &txn, nil
}

// DeleteTransaction removes a transaction.
func (s *transactionServiceImpl) DeleteTransaction(ctx context.Context, ledgerID string, transactionID string, userID string) error {
	existing, err := s.transactionRepo.FindTransactionByID(ctx, ledgerID, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find transaction for deletion", slog.String("transaction_id", transactionID))
		return err
	}

	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.transactionRepo.Rollback(ctx, tx)

	if err := s.transactionRepo.DeleteTransactionInTx(ctx, tx, transactionID); err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}
	auditRecord, err := newAuditRecord(ledgerID, domain.AuditEntityTransaction, transactionID, domain.AuditDelete, existing, nil, nil, userID, time.Now())
	if err != nil {
		return err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
		return err
	}
	if err := s.transactionRepo.Commit(ctx, tx); err != nil {
		return err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// GetTransactionByID retrieves a specific transaction.
func (s *transactionServiceImpl) GetTransactionByID(ctx context.Context, ledgerID string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, ledgerID, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

// ListTransactions retrieves a page of a ledger's transactions.
func (s *transactionServiceImpl) ListTransactions(ctx context.Context, ledgerID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	if params.AccountID != "" {
		return s.transactionRepo.ListTransactionsByAccount(ctx, ledgerID, params.AccountID, limit, params.NextToken)
	}
	return s.transactionRepo.ListTransactionsByLedger(ctx, ledgerID, limit, params.NextToken)
}

// ReassignTransactions moves every posting off one account onto another of the
// same type. The move runs under the ledger writer lock so balance reads in
// flight see either none or all of it.
func (s *transactionServiceImpl) ReassignTransactions(ctx context.Context, ledgerID string, req dto.ReassignTransactionsRequest, userID string) (int64, error) {
	if req.FromAccountID == req.ToAccountID {
		return 0, apperrors.ErrSameAccount
	}
	from, err := s.accountRepo.FindAccountByID(ctx, ledgerID, req.FromAccountID)
	if err != nil {
		return 0, fmt.Errorf("%w: from account %s", apperrors.ErrAccountNotFound, req.FromAccountID)
	}
	to, err := s.accountRepo.FindAccountByID(ctx, ledgerID, req.ToAccountID)
	if err != nil {
		return 0, fmt.Errorf("%w: to account %s", apperrors.ErrAccountNotFound, req.ToAccountID)
	}
	if from.AccountType != to.AccountType {
		return 0, fmt.Errorf("%w: %s -> %s", apperrors.ErrTypeMismatch, from.AccountType, to.AccountType)
	}

	chart, err := s.accountRepo.FindAccountsByLedger(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	for _, acc := range chart {
		if acc.ParentAccountID == to.AccountID {
			return 0, fmt.Errorf("%w: target %s has children", apperrors.ErrLeafRequired, to.Name)
		}
	}

	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.transactionRepo.Rollback(ctx, tx)

	if err := s.transactionRepo.LockLedgerInTx(ctx, tx, ledgerID); err != nil {
		return 0, err
	}
	moved, err := s.transactionRepo.ReassignTransactionsInTx(ctx, tx, ledgerID, req.FromAccountID, req.ToAccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to reassign transactions", slog.String("from", req.FromAccountID), slog.String("to", req.ToAccountID))
		return 0, err
	}

	extra := map[string]any{
		"fromAccountID": req.FromAccountID,
		"toAccountID":   req.ToAccountID,
		"moved":         moved,
	}
	auditRecord, err := newAuditRecord(ledgerID, domain.AuditEntityTransaction, req.FromAccountID, domain.AuditReassign, nil, nil, extra, userID, time.Now())
	if err != nil {
		return 0, err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
		return 0, err
	}
	if err := s.transactionRepo.Commit(ctx, tx); err != nil {
		return 0, err
	}

	s.LogInfo(ctx, "Transactions reassigned",
		slog.String("from", req.FromAccountID),
		slog.String("to", req.ToAccountID),
		slog.Int64("moved", moved))
	return moved, nil
}
