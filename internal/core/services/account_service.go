package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
)

// accountServiceImpl implements the AccountSvcFacade interface
type accountServiceImpl struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryWithTx
	transactionRepo portsrepo.TransactionRepositoryFacade
	auditRepo       portsrepo.AuditWriter
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, transactionRepo portsrepo.TransactionRepositoryFacade, auditRepo portsrepo.AuditWriter) portssvc.AccountSvcFacade {
	return &accountServiceImpl{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
	}
}

// Ensure accountServiceImpl implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountServiceImpl)(nil)

// CreateAccount validates the hierarchy rules and persists a new account.
func (s *accountServiceImpl) CreateAccount(ctx context.Context, ledgerID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	// Names are unique per ledger; the unique index is the concurrent-write backstop.
	if _, err := s.accountRepo.FindAccountByName(ctx, ledgerID, req.Name); err == nil {
		s.LogError(ctx, apperrors.ErrDuplicateName, "Account name already in use", slog.String("name", req.Name))
		return nil, fmt.Errorf("%w: %q", apperrors.ErrDuplicateName, req.Name)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	depth := 1
	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		parent, err := s.accountRepo.FindAccountByID(ctx, ledgerID, parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrParentNotFound, parentID)
			}
			return nil, err
		}
		if parent.LedgerID != ledgerID {
			return nil, fmt.Errorf("%w: parent %s", apperrors.ErrLedgerMismatch, parentID)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("%w: parent is %s, child declared %s", apperrors.ErrTypeMismatch, parent.AccountType, req.AccountType)
		}
		if parent.Depth >= domain.MaxAccountDepth {
			return nil, fmt.Errorf("%w: parent %s is at depth %d", apperrors.ErrMaxDepthExceeded, parent.Name, parent.Depth)
		}
		depth = parent.Depth + 1
	}

	now := time.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		LedgerID:        ledgerID,
		Name:            req.Name,
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Depth:           depth,
		AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	if err := s.accountRepo.SaveAccountInTx(ctx, tx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("name", account.Name))
		return nil, err
	}
	auditRecord, err := newAuditRecord(ledgerID, domain.AuditEntityAccount, account.AccountID, domain.AuditCreate, nil, account, nil, userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("name", account.Name),
		slog.Int("depth", account.Depth))
	return &account, nil
}

// DeleteAccount removes an account after verifying it is deletable. The child
// and transaction checks are re-run inside the transaction so a concurrent
// writer cannot slip a dependency in between check and delete.
func (s *accountServiceImpl) DeleteAccount(ctx context.Context, ledgerID string, accountID string, userID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, ledgerID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find account for deletion", slog.String("account_id", accountID))
		return err
	}
	if account.IsSystem {
		return fmt.Errorf("%w: %s", apperrors.ErrSystemAccount, account.Name)
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	children, err := s.accountRepo.CountChildrenInTx(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: %s has %d children", apperrors.ErrHasChildren, account.Name, children)
	}
	referenced, err := s.transactionRepo.CountByAccountInTx(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if referenced > 0 {
		return fmt.Errorf("%w: %s is referenced by %d transactions", apperrors.ErrHasTransactions, account.Name, referenced)
	}

	if err := s.accountRepo.DeleteAccountInTx(ctx, tx, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	auditRecord, err := newAuditRecord(ledgerID, domain.AuditEntityAccount, accountID, domain.AuditDelete, account, nil, nil, userID, time.Now())
	if err != nil {
		return err
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, auditRecord); err != nil {
		return err
	}
	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return err
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("name", account.Name))
	return nil
}

// GetAccountByID retrieves a specific account.
func (s *accountServiceImpl) GetAccountByID(ctx context.Context, ledgerID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, ledgerID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves the full chart of accounts for a ledger.
func (s *accountServiceImpl) ListAccounts(ctx context.Context, ledgerID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByLedger(ctx, ledgerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("ledger_id", ledgerID))
		return nil, err
	}
	return accounts, nil
}

// GetAccountBalance derives the balance of an account aggregated over its
// descendant closure. Nothing is read from storage but postings: the flows are
// summed per account and reduced by the account type's convention.
func (s *accountServiceImpl) GetAccountBalance(ctx context.Context, ledgerID string, accountID string) (decimal.Decimal, error) {
	accounts, err := s.accountRepo.FindAccountsByLedger(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}
	target := findAccount(accounts, accountID)
	if target == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}

	flows, err := s.transactionRepo.SumFlowsByLedger(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}

	total := domain.AccountFlow{}
	for _, id := range subtreeIDs(accounts, accountID) {
		total = total.Add(flows[id])
	}
	return total.BalanceFor(target.AccountType), nil
}

// GetAccountTree renders the hierarchy with aggregated balances, children
// sorted by name. A non-nil typeFilter restricts the tree to accounts of that
// type; since children always share their parent's type, filtering keeps whole
// subtrees intact.
func (s *accountServiceImpl) GetAccountTree(ctx context.Context, ledgerID string, typeFilter *domain.AccountType) ([]domain.AccountNode, error) {
	if typeFilter != nil && !typeFilter.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *typeFilter)
	}
	accounts, err := s.accountRepo.FindAccountsByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	flows, err := s.transactionRepo.SumFlowsByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if typeFilter != nil {
		filtered := accounts[:0:0]
		for _, acc := range accounts {
			if acc.AccountType == *typeFilter {
				filtered = append(filtered, acc)
			}
		}
		accounts = filtered
	}
	return buildAccountTree(accounts, flows), nil
}

func findAccount(accounts []domain.Account, accountID string) *domain.Account {
	for i := range accounts {
		if accounts[i].AccountID == accountID {
			return &accounts[i]
		}
	}
	return nil
}

// subtreeIDs returns the account and all of its descendants.
func subtreeIDs(accounts []domain.Account, rootID string) []string {
	children := make(map[string][]string)
	for _, acc := range accounts {
		if acc.ParentAccountID != "" {
			children[acc.ParentAccountID] = append(children[acc.ParentAccountID], acc.AccountID)
		}
	}
	ids := []string{rootID}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}

// buildAccountTree assembles the hierarchy bottom-up: a node's balance is its
// own flow plus its children's flows, reduced by the node's account type.
func buildAccountTree(accounts []domain.Account, flows map[string]domain.AccountFlow) []domain.AccountNode {
	childAccounts := make(map[string][]domain.Account)
	roots := []domain.Account{}
	for _, acc := range accounts {
		if acc.ParentAccountID == "" {
			roots = append(roots, acc)
		} else {
			childAccounts[acc.ParentAccountID] = append(childAccounts[acc.ParentAccountID], acc)
		}
	}

	var build func(acc domain.Account) (domain.AccountNode, domain.AccountFlow)
	build = func(acc domain.Account) (domain.AccountNode, domain.AccountFlow) {
		flow := flows[acc.AccountID]
		kids := childAccounts[acc.AccountID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })

		node := domain.AccountNode{Account: acc, Children: make([]domain.AccountNode, 0, len(kids))}
		for _, kid := range kids {
			childNode, childFlow := build(kid)
			node.Children = append(node.Children, childNode)
			flow = flow.Add(childFlow)
		}
		node.Balance = flow.BalanceFor(acc.AccountType)
		return node, flow
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	nodes := make([]domain.AccountNode, 0, len(roots))
	for _, root := range roots {
		node, _ := build(root)
		nodes = append(nodes, node)
	}
	return nodes
}
