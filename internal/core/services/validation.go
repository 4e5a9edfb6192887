package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// validateAmount enforces the posting amount rules: strictly positive, at most
// two fractional digits, and within the configured ceiling when one is set.
func validateAmount(amount decimal.Decimal, maxAmount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: amount must have at most two fractional digits", apperrors.ErrValidation)
	}
	if maxAmount.IsPositive() && amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: amount exceeds the maximum of %s", apperrors.ErrValidation, maxAmount)
	}
	return nil
}

// validatePosting checks a (from, to) pair against the chart of accounts and
// returns the effective transaction type. Postings and imports share these
// rules: both endpoints must exist, differ, be leaves, and form a legal type
// combination. An explicit type must agree with the endpoint types; when it is
// empty the type is inferred from them.
func validatePosting(chart []domain.Account, fromID, toID string, explicit domain.TransactionType) (*domain.Account, *domain.Account, domain.TransactionType, error) {
	byID := make(map[string]*domain.Account, len(chart))
	hasChildren := make(map[string]bool)
	for i := range chart {
		byID[chart[i].AccountID] = &chart[i]
		if chart[i].ParentAccountID != "" {
			hasChildren[chart[i].ParentAccountID] = true
		}
	}

	if fromID == toID {
		return nil, nil, "", apperrors.ErrSameAccount
	}
	from, ok := byID[fromID]
	if !ok {
		return nil, nil, "", fmt.Errorf("%w: from account %s", apperrors.ErrAccountNotFound, fromID)
	}
	to, ok := byID[toID]
	if !ok {
		return nil, nil, "", fmt.Errorf("%w: to account %s", apperrors.ErrAccountNotFound, toID)
	}
	if hasChildren[from.AccountID] {
		return nil, nil, "", fmt.Errorf("%w: account %s has children", apperrors.ErrLeafRequired, from.Name)
	}
	if hasChildren[to.AccountID] {
		return nil, nil, "", fmt.Errorf("%w: account %s has children", apperrors.ErrLeafRequired, to.Name)
	}

	txType := explicit
	if txType == "" {
		txType = domain.InferTransactionType(from.AccountType, to.AccountType)
	} else if !txType.IsValid() {
		return nil, nil, "", fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, txType)
	}
	if !domain.LegalEndpointTypes(txType, from.AccountType, to.AccountType) {
		return nil, nil, "", fmt.Errorf("%w: %s from %s to %s", apperrors.ErrAccountTypeIllegal, txType, from.AccountType, to.AccountType)
	}
	return from, to, txType, nil
}
