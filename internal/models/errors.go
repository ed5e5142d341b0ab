package models

import "errors"

// ValidationError is the only structured error kind in the ledger core.
// It is always detected before any mutation is attempted; on a
// ValidationError the store write is skipped entirely.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	// Split calculator errors
	ErrEmptyGroup        = ValidationError("group must have at least one member")
	ErrNonPositiveAmount = ValidationError("amount must be greater than 0")
	ErrSplitMismatch     = ValidationError("split amounts must equal the total expense amount")
	ErrNegativeSplit     = ValidationError("split amounts must not be negative")
	ErrUnknownPayer      = ValidationError("payer must be a member of the group")
	ErrUnknownSplitType  = ValidationError("split type must be 'equal' or 'custom'")

	// Debt settlement errors
	ErrNonPositivePayment = ValidationError("payment amount must be greater than 0")
	ErrOverpayment        = ValidationError("payment amount cannot exceed remaining debt")
	ErrMissingPaymentID   = ValidationError("payment id is required")
	ErrAmountBelowPaid    = ValidationError("amount cannot be lower than the paid amount")
	ErrDebtSettled        = ValidationError("debt is already settled")
)

// ErrForbidden marks an operation attempted by a caller who is neither the
// owner nor a participant of the target record.
var ErrForbidden = errors.New("caller does not have access to this resource")

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
