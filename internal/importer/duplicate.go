package importer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// DuplicateWarning flags a parsed posting that matches an existing posting by
// the composite key (date, amount, from, to). It is advisory: the caller decides
// which rows to skip, the detector never blocks an import.
type DuplicateWarning struct {
	RowNumber   int      `json:"rowNumber"`
	MatchingIDs []string `json:"matchingIDs"`
	Reason      string   `json:"reason"`
}

type dupKey struct {
	date   string
	amount string
	fromID string
	toID   string
}

// DuplicateDetector indexes a ledger's existing postings by their duplicate key.
type DuplicateDetector struct {
	index map[dupKey][]string
}

// NewDuplicateDetector builds the index from existing postings.
func NewDuplicateDetector(transactions []domain.Transaction) *DuplicateDetector {
	d := &DuplicateDetector{index: make(map[dupKey][]string, len(transactions))}
	for _, txn := range transactions {
		k := makeDupKey(txn.Date, txn.Amount, txn.FromAccountID, txn.ToAccountID)
		d.index[k] = append(d.index[k], txn.TransactionID)
	}
	return d
}

// Check returns the matching transaction ids for a resolved posting, or nil.
func (d *DuplicateDetector) Check(date time.Time, amount decimal.Decimal, fromID, toID string) []string {
	return d.index[makeDupKey(date, amount, fromID, toID)]
}

// Warn wraps Check into an advisory warning for a specific row.
func (d *DuplicateDetector) Warn(rowNumber int, date time.Time, amount decimal.Decimal, fromID, toID string) *DuplicateWarning {
	ids := d.Check(date, amount, fromID, toID)
	if len(ids) == 0 {
		return nil
	}
	return &DuplicateWarning{
		RowNumber:   rowNumber,
		MatchingIDs: ids,
		Reason:      "same date+amount+accounts",
	}
}

func makeDupKey(date time.Time, amount decimal.Decimal, fromID, toID string) dupKey {
	return dupKey{
		date:   date.Format("2006-01-02"),
		amount: amount.StringFixed(2),
		fromID: fromID,
		toID:   toID,
	}
}
