package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

func TestDuplicateDetector(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := []domain.Transaction{
		{
			TransactionID: "txn-1",
			Date:          date,
			Amount:        decimal.RequireFromString("42.50"),
			FromAccountID: "acc-cash",
			ToAccountID:   "acc-food",
		},
		{
			TransactionID: "txn-2",
			Date:          date,
			Amount:        decimal.RequireFromString("42.50"),
			FromAccountID: "acc-cash",
			ToAccountID:   "acc-food",
		},
	}
	d := NewDuplicateDetector(existing)

	t.Run("match on same key", func(t *testing.T) {
		ids := d.Check(date, decimal.RequireFromString("42.5"), "acc-cash", "acc-food")
		assert.ElementsMatch(t, []string{"txn-1", "txn-2"}, ids, "scale differences do not break matching")
	})

	t.Run("time of day ignored", func(t *testing.T) {
		ids := d.Check(date.Add(13*time.Hour), decimal.RequireFromString("42.50"), "acc-cash", "acc-food")
		assert.Len(t, ids, 2)
	})

	t.Run("different amount", func(t *testing.T) {
		assert.Empty(t, d.Check(date, decimal.RequireFromString("42.51"), "acc-cash", "acc-food"))
	})

	t.Run("different accounts", func(t *testing.T) {
		assert.Empty(t, d.Check(date, decimal.RequireFromString("42.50"), "acc-food", "acc-cash"))
	})

	t.Run("warning carries row and reason", func(t *testing.T) {
		w := d.Warn(7, date, decimal.RequireFromString("42.50"), "acc-cash", "acc-food")
		require.NotNil(t, w)
		assert.Equal(t, 7, w.RowNumber)
		assert.Equal(t, "same date+amount+accounts", w.Reason)

		assert.Nil(t, d.Warn(8, date, decimal.RequireFromString("1.00"), "acc-cash", "acc-food"))
	})
}
