package apperrors

import "errors"

// Generic error categories shared across the service layer.
var (
	// ErrNotFound indicates that a requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input data failed validation checks.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrInternal indicates an unexpected internal failure that should not leak details.
	ErrInternal = errors.New("internal error")
)

// Domain error kinds for account and transaction operations. These form a closed
// enumeration: callers and tests match them with errors.Is, never by message text.
var (
	ErrDuplicateName      = errors.New("account name already in use")
	ErrParentNotFound     = errors.New("parent account not found")
	ErrLedgerMismatch     = errors.New("account belongs to a different ledger")
	ErrTypeMismatch       = errors.New("account type does not match parent type")
	ErrMaxDepthExceeded   = errors.New("account hierarchy depth limit exceeded")
	ErrSystemAccount      = errors.New("system accounts cannot be modified or deleted")
	ErrHasChildren        = errors.New("account has child accounts")
	ErrHasTransactions    = errors.New("account has transactions")
	ErrLeafRequired       = errors.New("transactions may only be posted to leaf accounts")
	ErrSameAccount        = errors.New("from and to accounts must differ")
	ErrAccountTypeIllegal = errors.New("account type is illegal for this transaction type")
	ErrAccountNotFound    = errors.New("account not found")
)
