package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

// ledgerServiceImpl implements the LedgerSvcFacade interface
type ledgerServiceImpl struct {
	BaseService
	ledgerRepo      portsrepo.LedgerRepositoryWithTx
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	auditRepo       portsrepo.AuditWriter
	maxAmount       decimal.Decimal
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, transactionRepo portsrepo.TransactionRepositoryFacade, auditRepo portsrepo.AuditWriter, maxAmount decimal.Decimal) portssvc.LedgerSvcFacade {
	return &ledgerServiceImpl{
		ledgerRepo:      ledgerRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		maxAmount:       maxAmount,
	}
}

// Ensure ledgerServiceImpl implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerServiceImpl)(nil)

// CreateLedger creates a ledger together with its two system accounts. Both
// Cash and Equity are ASSET accounts so the bootstrap posting is a plain
// transfer; a positive initial balance becomes an Equity -> Cash posting dated
// at creation time. Everything commits or nothing does.
func (s *ledgerServiceImpl) CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, userID string) (*domain.Ledger, error) {
	initialBalance := decimal.Zero
	if req.InitialBalance != nil {
		initialBalance = *req.InitialBalance
		if initialBalance.IsNegative() {
			return nil, fmt.Errorf("%w: initial balance must not be negative", apperrors.ErrValidation)
		}
		if initialBalance.IsPositive() {
			if err := validateAmount(initialBalance, s.maxAmount); err != nil {
				s.LogError(ctx, err, "Invalid initial balance", slog.String("initial_balance", initialBalance.String()))
				return nil, err
			}
		}
	}

	now := time.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}

	ledger := domain.Ledger{
		LedgerID:    uuid.NewString(),
		Name:        req.Name,
		OwnerID:     userID,
		AuditFields: audit,
	}
	cash := domain.Account{
		AccountID:   uuid.NewString(),
		LedgerID:    ledger.LedgerID,
		Name:        domain.SystemAccountCash,
		AccountType: domain.Asset,
		Depth:       1,
		IsSystem:    true,
		AuditFields: audit,
	}
	equity := domain.Account{
		AccountID:   uuid.NewString(),
		LedgerID:    ledger.LedgerID,
		Name:        domain.SystemAccountEquity,
		AccountType: domain.Asset,
		Depth:       1,
		IsSystem:    true,
		AuditFields: audit,
	}

	tx, err := s.ledgerRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin ledger creation transaction")
		return nil, err
	}
	defer s.ledgerRepo.Rollback(ctx, tx)

	if err := s.ledgerRepo.SaveLedgerInTx(ctx, tx, ledger); err != nil {
		s.LogError(ctx, err, "Failed to save ledger", slog.String("ledger_id", ledger.LedgerID))
		return nil, err
	}
	for _, acc := range []domain.Account{cash, equity} {
		if err := s.accountRepo.SaveAccountInTx(ctx, tx, acc); err != nil {
			s.LogError(ctx, err, "Failed to save system account", slog.String("account_name", acc.Name))
			return nil, err
		}
	}

	type auditItem struct {
		entityType domain.AuditEntityType
		entityID   string
		newValue   any
	}
	records := []auditItem{
		{domain.AuditEntityLedger, ledger.LedgerID, ledger},
		{domain.AuditEntityAccount, cash.AccountID, cash},
		{domain.AuditEntityAccount, equity.AccountID, equity},
	}

	if initialBalance.IsPositive() {
		bootstrap := domain.Transaction{
			TransactionID:   uuid.NewString(),
			LedgerID:        ledger.LedgerID,
			Date:            now,
			Description:     "Initial balance",
			Amount:          initialBalance,
			FromAccountID:   equity.AccountID,
			ToAccountID:     cash.AccountID,
			TransactionType: domain.TransactionTransfer,
			AuditFields:     audit,
		}
		if err := s.transactionRepo.SaveTransactionInTx(ctx, tx, bootstrap); err != nil {
			s.LogError(ctx, err, "Failed to save initial balance transaction", slog.String("ledger_id", ledger.LedgerID))
			return nil, err
		}
		records = append(records, auditItem{domain.AuditEntityTransaction, bootstrap.TransactionID, bootstrap})
	}

	for _, rec := range records {
		auditRecord, err := newAuditRecord(ledger.LedgerID, rec.entityType, rec.entityID, domain.AuditCreate, nil, rec.newValue, nil, userID, now)
		if err != nil {
			return nil, err
		}
		if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
			s.LogError(ctx, err, "Failed to save audit record", slog.String("entity_id", rec.entityID))
			return nil, err
		}
	}

	if err := s.ledgerRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit ledger creation", slog.String("ledger_id", ledger.LedgerID))
		return nil, err
	}

	s.LogInfo(ctx, "Ledger created",
		slog.String("ledger_id", ledger.LedgerID),
		slog.String("initial_balance", initialBalance.String()))
	return &ledger, nil
}

// GetLedgerByID retrieves a specific ledger.
func (s *ledgerServiceImpl) GetLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	ledger, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find ledger", slog.String("ledger_id", ledgerID))
		return nil, err
	}
	return ledger, nil
}

// ListLedgers retrieves all ledgers belonging to an owner.
func (s *ledgerServiceImpl) ListLedgers(ctx context.Context, ownerID string) ([]domain.Ledger, error) {
	ledgers, err := s.ledgerRepo.ListLedgersByOwner(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledgers", slog.String("owner_id", ownerID))
		return nil, err
	}
	return ledgers, nil
}
