package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/pennywise-app/pennywise_backend/internal/core/ports/repositories"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/importer"
)

// Options carries the tunables the services need beyond their repositories.
type Options struct {
	MaxTransactionAmount decimal.Decimal
	ImportMaxBytes       int64
	ImportMaxRows        int
}

// NewServiceContainer wires the repository provider and format registry into
// the full service set.
func NewServiceContainer(repos portsrepo.RepositoryProvider, registry *importer.Registry, opts Options) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Ledger:      NewLedgerService(repos.LedgerRepo, repos.AccountRepo, repos.TransactionRepo, repos.AuditRepo, opts.MaxTransactionAmount),
		Account:     NewAccountService(repos.AccountRepo, repos.TransactionRepo, repos.AuditRepo),
		Transaction: NewTransactionService(repos.TransactionRepo, repos.AccountRepo, repos.AuditRepo, opts.MaxTransactionAmount),
		Import:      NewImportService(registry, repos.LedgerRepo, repos.AccountRepo, repos.TransactionRepo, repos.AuditRepo, opts.MaxTransactionAmount, opts.ImportMaxBytes, opts.ImportMaxRows),
	}
}
