package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

func testAccounts() []domain.Account {
	return []domain.Account{
		{AccountID: "acc-cash", Name: "Cash", AccountType: domain.Asset, Depth: 1},
		{AccountID: "acc-food", Name: "Food", AccountType: domain.Expense, Depth: 1},
		{AccountID: "acc-groceries", Name: "Groceries", AccountType: domain.Expense, ParentAccountID: "acc-food", Depth: 2},
		{AccountID: "acc-cards", Name: "CreditCards", AccountType: domain.Liability, Depth: 1},
	}
}

func mustRef(t *testing.T, raw string) AccountRef {
	t.Helper()
	ref, err := ParseAccountRef(raw)
	require.NoError(t, err)
	return ref
}

func TestResolver_ExactPathMatch(t *testing.T) {
	r := NewResolver(testAccounts())

	res, err := r.Resolve(mustRef(t, "E-Food.Groceries"))
	require.NoError(t, err)
	assert.Equal(t, "acc-groceries", res.AccountID)
	assert.Nil(t, res.Plan)
}

func TestResolver_LeafNameFallback(t *testing.T) {
	r := NewResolver(testAccounts())

	// Flat untyped name matches by leaf.
	res, err := r.Resolve(mustRef(t, "Groceries"))
	require.NoError(t, err)
	assert.Equal(t, "acc-groceries", res.AccountID)

	// Typed leaf with matching type also falls back.
	res, err = r.Resolve(mustRef(t, "E-Groceries"))
	require.NoError(t, err)
	assert.Equal(t, "acc-groceries", res.AccountID)
}

func TestResolver_LeafFallbackRejectsTypeMismatch(t *testing.T) {
	r := NewResolver(testAccounts())

	// "Cash" exists as an ASSET; an INCOME reference must not bind to it.
	res, err := r.Resolve(mustRef(t, "I-Cash"))
	require.NoError(t, err)
	assert.Empty(t, res.AccountID)
	require.NotNil(t, res.Plan)
	assert.Equal(t, domain.Income, res.Plan.Type)
	assert.Equal(t, []string{"Cash"}, res.Plan.Missing)
}

func TestResolver_CreationPlanAttachesToLongestPrefix(t *testing.T) {
	r := NewResolver(testAccounts())

	res, err := r.Resolve(mustRef(t, "E-Food.Restaurants.Lunch"))
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
	assert.Equal(t, "acc-food", res.Plan.ParentID)
	assert.Equal(t, 1, res.Plan.ParentDepth)
	assert.Equal(t, []string{"Restaurants", "Lunch"}, res.Plan.Missing)
}

func TestResolver_CreationPlanForNewRoot(t *testing.T) {
	r := NewResolver(testAccounts())

	res, err := r.Resolve(mustRef(t, "L-Loans.Mortgage"))
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
	assert.Empty(t, res.Plan.ParentID)
	assert.Equal(t, []string{"Loans", "Mortgage"}, res.Plan.Missing)
}

func TestResolver_AncestorTypeMismatchIsError(t *testing.T) {
	r := NewResolver(testAccounts())

	_, err := r.Resolve(mustRef(t, "A-Food.Snacks"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ancestor")
}

func TestResolver_PathCappedToMaxDepth(t *testing.T) {
	r := NewResolver(testAccounts())

	res, err := r.Resolve(mustRef(t, "E-Food.Restaurants.Lunch.Weekday"))
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
	assert.Equal(t, []string{"Food", "Restaurants", "Lunch"}, res.Plan.Segments,
		"segments beyond the depth cap are dropped")
}

func TestResolver_BindMakesRunIdempotent(t *testing.T) {
	r := NewResolver(testAccounts())
	ref := mustRef(t, "E-Food.Restaurants")

	res, err := r.Resolve(ref)
	require.NoError(t, err)
	require.NotNil(t, res.Plan)

	r.Bind(domain.Account{
		AccountID:       "acc-restaurants",
		Name:            "Restaurants",
		AccountType:     domain.Expense,
		ParentAccountID: "acc-food",
		Depth:           2,
	})

	// Same reference again in the same run resolves to the created account.
	res, err = r.Resolve(ref)
	require.NoError(t, err)
	assert.Equal(t, "acc-restaurants", res.AccountID)
	assert.Nil(t, res.Plan)

	// And a deeper path under it now only needs the remaining segment.
	res, err = r.Resolve(mustRef(t, "E-Food.Restaurants.Lunch"))
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
	assert.Equal(t, "acc-restaurants", res.Plan.ParentID)
	assert.Equal(t, []string{"Lunch"}, res.Plan.Missing)
}

func TestResolver_UntypedUnknownNameIsError(t *testing.T) {
	r := NewResolver(testAccounts())

	_, err := r.Resolve(mustRef(t, "Mystery"))
	require.Error(t, err)
}

func TestParseAccountRef(t *testing.T) {
	ref, err := ParseAccountRef("L-CreditCards.BankX.CardY")
	require.NoError(t, err)
	assert.Equal(t, domain.Liability, ref.Type)
	assert.Equal(t, []string{"CreditCards", "BankX", "CardY"}, ref.Segments)
	assert.Equal(t, "CardY", ref.Leaf())

	ref, err = ParseAccountRef("Groceries")
	require.NoError(t, err)
	assert.Empty(t, string(ref.Type))

	_, err = ParseAccountRef("Z-Something")
	require.Error(t, err, "unknown single-letter prefix is rejected")

	// A multi-letter prefix is part of the name, not a type.
	ref, err = ParseAccountRef("Co-op")
	require.NoError(t, err)
	assert.Equal(t, "Co-op", ref.Leaf())

	_, err = ParseAccountRef("E-Food..Snacks")
	require.Error(t, err, "empty segment is rejected")

	_, err = ParseAccountRef("Food.Snacks")
	require.Error(t, err, "hierarchical path needs a type prefix")
}
