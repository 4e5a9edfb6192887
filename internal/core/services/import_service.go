package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/importer"
)

// importServiceImpl implements the ImportSvcFacade interface
type importServiceImpl struct {
	BaseService
	registry        *importer.Registry
	ledgerRepo      portsrepo.LedgerReader
	accountRepo     portsrepo.AccountRepositoryWithTx
	transactionRepo portsrepo.TransactionRepositoryWithTx
	auditRepo       portsrepo.AuditRepositoryFacade
	maxAmount       decimal.Decimal
	maxBytes        int64
	maxRows         int
}

// NewImportService creates a new statement import service.
func NewImportService(registry *importer.Registry, ledgerRepo portsrepo.LedgerReader, accountRepo portsrepo.AccountRepositoryWithTx, transactionRepo portsrepo.TransactionRepositoryWithTx, auditRepo portsrepo.AuditRepositoryFacade, maxAmount decimal.Decimal, maxBytes int64, maxRows int) portssvc.ImportSvcFacade {
	return &importServiceImpl{
		registry:        registry,
		ledgerRepo:      ledgerRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		maxAmount:       maxAmount,
		maxBytes:        maxBytes,
		maxRows:         maxRows,
	}
}

// Ensure importServiceImpl implements the ImportSvcFacade interface
var _ portssvc.ImportSvcFacade = (*importServiceImpl)(nil)

// ListStatementFormats returns the registered statement formats.
func (s *importServiceImpl) ListStatementFormats(ctx context.Context) []importer.FormatConfig {
	return s.registry.List()
}

// plannedRow is one committable posting with its resolved endpoints.
type plannedRow struct {
	posting importer.ParsedTransaction
	fromID  string
	toID    string
	txType  domain.TransactionType
}

// importPlan is the outcome of one planning pass.
type importPlan struct {
	plan              *importer.RunPlan
	rows              []plannedRow
	skippedRows       int
	skippedDuplicates int
}

// plan runs the parse/resolve/dedup pipeline against a chart of accounts.
// The create callback is invoked for every account the plan requires, parents
// first; preview passes a no-op, reconcile persists. Controls carry the
// caller's row decisions: skipped rows are excluded, overrides correct a row
// before validation, and duplicate rows (matching an existing posting by
// date+amount+accounts) are withheld unless forced, making re-imports of the
// same statement idempotent by default.
//
// In strict mode (reconcile) an unresolved account reference or a posting rule
// violation aborts the whole plan; in lenient mode (preview) it is reported as
// a row error. Parse-time problems are row errors in both modes.
func (s *importServiceImpl) plan(ctx context.Context, ledgerID string, cfg importer.FormatConfig, data []byte, userID string, chart []domain.Account, existing []domain.Transaction, controls importer.RunControls, strict bool, create func(domain.Account) error) (*importPlan, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: statement exceeds %d bytes", apperrors.ErrValidation, s.maxBytes)
	}

	result, err := importer.Parse(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if s.maxRows > 0 && len(result.Postings) > s.maxRows {
		return nil, fmt.Errorf("%w: statement exceeds %d rows", apperrors.ErrValidation, s.maxRows)
	}

	skip := make(map[int]bool, len(controls.SkipRows))
	for _, row := range controls.SkipRows {
		skip[row] = true
	}
	force := make(map[int]bool, len(controls.ForceRows))
	for _, row := range controls.ForceRows {
		force[row] = true
	}

	resolver := importer.NewResolver(chart)
	detector := importer.NewDuplicateDetector(existing)
	now := time.Now()

	plan := &importer.RunPlan{
		Errors:       result.Errors,
		BillingYear:  result.BillingYear,
		BillingMonth: result.BillingMonth,
	}
	chartLocal := append([]domain.Account{}, chart...)

	// Resolves a reference, creating the missing chain parents-first.
	ensureAccount := func(ref importer.AccountRef) (string, error) {
		res, err := resolver.Resolve(ref)
		if err != nil {
			return "", err
		}
		if res.AccountID != "" {
			return res.AccountID, nil
		}

		parentID := res.Plan.ParentID
		depth := res.Plan.ParentDepth
		existingSegments := len(res.Plan.Segments) - len(res.Plan.Missing)
		var lastID string
		for i, name := range res.Plan.Missing {
			depth++
			acc := domain.Account{
				AccountID:       uuid.NewString(),
				LedgerID:        ledgerID,
				Name:            name,
				AccountType:     res.Plan.Type,
				ParentAccountID: parentID,
				Depth:           depth,
				AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
			}
			if err := create(acc); err != nil {
				return "", err
			}
			resolver.Bind(acc)
			chartLocal = append(chartLocal, acc)
			path := strings.Join(res.Plan.Segments[:existingSegments+i+1], ".")
			plan.AccountsToCreate = append(plan.AccountsToCreate, path)
			parentID = acc.AccountID
			lastID = acc.AccountID
		}
		return lastID, nil
	}

	outcome := &importPlan{plan: plan}

	// In strict mode the first unresolved reference or rule violation fails
	// the whole run; in lenient mode it becomes a row error.
	rowError := func(rowNumber int, kind importer.ValidationErrorKind, err error, raw string) error {
		if strict {
			return fmt.Errorf("%w: row %d: %s", apperrors.ErrValidation, rowNumber, err.Error())
		}
		plan.Errors = append(plan.Errors, importer.ValidationError{
			RowNumber: rowNumber,
			Kind:      kind,
			Message:   err.Error(),
			RawValue:  raw,
		})
		return nil
	}

	for _, p := range result.Postings {
		override := controls.Overrides[p.RowNumber]
		if override.Date != nil {
			p.Date = *override.Date
		}
		if override.Amount != nil {
			p.Amount = *override.Amount
		}
		if override.Description != nil {
			p.Description = *override.Description
		}

		if skip[p.RowNumber] {
			plan.Postings = append(plan.Postings, importer.PlannedPosting{
				RowNumber:   p.RowNumber,
				Date:        p.Date,
				Amount:      p.Amount,
				Description: p.Description,
				FromPath:    p.FromRef.FullPath(),
				ToPath:      p.ToRef.FullPath(),
				Skipped:     true,
			})
			outcome.skippedRows++
			continue
		}

		fromID, fromPath := "", p.FromRef.FullPath()
		if override.FromAccountID != nil {
			fromID = *override.FromAccountID
			if path, ok := resolver.Path(fromID); ok {
				fromPath = path
			}
		} else if fromID, err = ensureAccount(p.FromRef); err != nil {
			if abort := rowError(p.RowNumber, importer.ErrKindUnknownAccountType, err, p.FromRef.Raw); abort != nil {
				return nil, abort
			}
			continue
		}
		toID, toPath := "", p.ToRef.FullPath()
		if override.ToAccountID != nil {
			toID = *override.ToAccountID
			if path, ok := resolver.Path(toID); ok {
				toPath = path
			}
		} else if toID, err = ensureAccount(p.ToRef); err != nil {
			if abort := rowError(p.RowNumber, importer.ErrKindUnknownAccountType, err, p.ToRef.Raw); abort != nil {
				return nil, abort
			}
			continue
		}
		if err := validateAmount(p.Amount, s.maxAmount); err != nil {
			if abort := rowError(p.RowNumber, importer.ErrKindInvalidAmount, err, p.Amount.String()); abort != nil {
				return nil, abort
			}
			continue
		}
		_, _, txType, err := validatePosting(chartLocal, fromID, toID, "")
		if err != nil {
			if abort := rowError(p.RowNumber, importer.ErrKindInvalidFormat, err, ""); abort != nil {
				return nil, abort
			}
			continue
		}

		dup := detector.Warn(p.RowNumber, p.Date, p.Amount, fromID, toID)
		plan.Postings = append(plan.Postings, importer.PlannedPosting{
			RowNumber:   p.RowNumber,
			Date:        p.Date,
			Amount:      p.Amount,
			Description: p.Description,
			FromPath:    fromPath,
			ToPath:      toPath,
			Duplicate:   dup != nil,
		})
		if dup != nil {
			plan.Duplicates = append(plan.Duplicates, *dup)
			if !force[p.RowNumber] {
				outcome.skippedDuplicates++
				continue
			}
		}
		outcome.rows = append(outcome.rows, plannedRow{posting: p, fromID: fromID, toID: toID, txType: txType})
	}
	return outcome, nil
}

// PreviewStatement is the dry run: it plans the import against the current
// ledger state without writing anything. Planned accounts get synthetic IDs
// that are discarded with the preview.
func (s *importServiceImpl) PreviewStatement(ctx context.Context, ledgerID string, formatID string, data []byte) (*importer.RunPlan, error) {
	cfg, ok := s.registry.Get(formatID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown statement format %q", apperrors.ErrValidation, formatID)
	}
	if _, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID); err != nil {
		return nil, err
	}

	chart, err := s.accountRepo.FindAccountsByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	existing, err := s.loadExistingTransactions(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.plan(ctx, ledgerID, cfg, data, "", chart, existing, importer.RunControls{}, false, func(domain.Account) error { return nil })
	if err != nil {
		s.LogError(ctx, err, "Statement preview failed", slog.String("format", formatID))
		return nil, err
	}
	return outcome.plan, nil
}

// loadExistingTransactions reads the full posting set for duplicate detection.
func (s *importServiceImpl) loadExistingTransactions(ctx context.Context, ledgerID string) ([]domain.Transaction, error) {
	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.transactionRepo.Rollback(ctx, tx)
	return s.transactionRepo.FindTransactionsByLedgerInTx(ctx, tx, ledgerID)
}

// ReconcileStatement runs the full pipeline and commits it atomically: missing
// accounts, committable postings, and the run's audit trail all land in one
// database transaction held under the ledger writer lock. Parse-time row
// problems are reported alongside what was committed; an unresolved account
// reference or a posting rule violation aborts and rolls back the whole run.
// Controls let the caller skip, force, or correct individual rows.
func (s *importServiceImpl) ReconcileStatement(ctx context.Context, ledgerID string, formatID string, data []byte, controls importer.RunControls, userID string) (*importer.RunSummary, error) {
	cfg, ok := s.registry.Get(formatID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown statement format %q", apperrors.ErrValidation, formatID)
	}
	if _, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	now := time.Now()

	summary, err := s.reconcileInTx(ctx, ledgerID, cfg, data, controls, userID, runID, now)
	if err != nil {
		// Best effort: record the failed run outside the rolled-back transaction.
		extra := map[string]any{"formatID": cfg.ID, "status": "FAILED", "error": err.Error()}
		if record, auditErr := newAuditRecord(ledgerID, domain.AuditEntityImportRun, runID, domain.AuditCreate, nil, nil, extra, userID, now); auditErr == nil {
			if saveErr := s.auditRepo.SaveAuditRecord(ctx, record); saveErr != nil {
				s.LogError(ctx, saveErr, "Failed to record failed import run", slog.String("run_id", runID))
			}
		}
		s.LogError(ctx, err, "Statement reconciliation failed", slog.String("run_id", runID), slog.String("format", formatID))
		return nil, err
	}

	s.LogInfo(ctx, "Statement reconciled",
		slog.String("run_id", runID),
		slog.String("format", formatID),
		slog.Int("imported", summary.Imported),
		slog.Int("skipped_rows", summary.SkippedRows),
		slog.Int("skipped_duplicates", summary.SkippedDuplicates),
		slog.Int("created_accounts", len(summary.CreatedAccounts)))
	return summary, nil
}

func (s *importServiceImpl) reconcileInTx(ctx context.Context, ledgerID string, cfg importer.FormatConfig, data []byte, controls importer.RunControls, userID, runID string, now time.Time) (*importer.RunSummary, error) {
	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.transactionRepo.Rollback(ctx, tx)

	// One writer per ledger at a time; concurrent imports of the same ledger
	// queue here instead of interleaving.
	if err := s.transactionRepo.LockLedgerInTx(ctx, tx, ledgerID); err != nil {
		return nil, err
	}

	chart, err := s.accountRepo.FindAccountsByLedgerInTx(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}
	existing, err := s.transactionRepo.FindTransactionsByLedgerInTx(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}

	create := func(acc domain.Account) error {
		if err := s.accountRepo.SaveAccountInTx(ctx, tx, acc); err != nil {
			return err
		}
		record, err := newAuditRecord(ledgerID, domain.AuditEntityAccount, acc.AccountID, domain.AuditCreate, nil, acc, nil, userID, now)
		if err != nil {
			return err
		}
		return s.auditRepo.SaveAuditRecordInTx(ctx, tx, record)
	}

	outcome, err := s.plan(ctx, ledgerID, cfg, data, userID, chart, existing, controls, true, create)
	if err != nil {
		return nil, err
	}
	plan := outcome.plan

	for _, row := range outcome.rows {
		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			LedgerID:        ledgerID,
			Date:            row.posting.Date,
			Description:     row.posting.Description,
			Amount:          row.posting.Amount,
			FromAccountID:   row.fromID,
			ToAccountID:     row.toID,
			TransactionType: row.txType,
			Notes:           row.posting.CategoryHint,
			AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
		}
		if err := s.saveImportedTransaction(ctx, tx, txn, userID, now); err != nil {
			return nil, err
		}
	}

	summary := &importer.RunSummary{
		RunID:             runID,
		Imported:          len(outcome.rows),
		SkippedRows:       outcome.skippedRows,
		SkippedDuplicates: outcome.skippedDuplicates,
		CreatedAccounts:   plan.AccountsToCreate,
		Errors:            plan.Errors,
		Duplicates:        plan.Duplicates,
	}
	extra := map[string]any{
		"formatID":          cfg.ID,
		"status":            "COMMITTED",
		"imported":          summary.Imported,
		"skippedRows":       summary.SkippedRows,
		"skippedDuplicates": summary.SkippedDuplicates,
		"createdAccounts":   summary.CreatedAccounts,
		"rowErrors":         len(summary.Errors),
	}
	runRecord, err := newAuditRecord(ledgerID, domain.AuditEntityImportRun, runID, domain.AuditCreate, nil, nil, extra, userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, runRecord); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *importServiceImpl) saveImportedTransaction(ctx context.Context, tx pgx.Tx, txn domain.Transaction, userID string, now time.Time) error {
	if err := s.transactionRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}
	record, err := newAuditRecord(txn.LedgerID, domain.AuditEntityTransaction, txn.TransactionID, domain.AuditCreate, nil, txn, nil, userID, now)
	if err != nil {
		return err
	}
	return s.auditRepo.SaveAuditRecordInTx(ctx, tx, record)
}
