package calculator

import "github.com/mmynk/hisaab/internal/models"

// Settlement is the result of applying one payment against a debt.
type Settlement struct {
	PaidAmount float64
	IsSettled  bool
}

// ApplyPayment accumulates a partial payment against a debt of the given
// amount with paidAmount already applied. The payment must be positive and
// must not exceed the remaining principal; on error nothing should be
// persisted.
func ApplyPayment(amount, paidAmount, payment float64) (Settlement, error) {
	if payment <= 0 {
		return Settlement{}, models.ErrNonPositivePayment
	}
	if payment > amount-paidAmount {
		return Settlement{}, models.ErrOverpayment
	}

	newPaid := paidAmount + payment
	return Settlement{
		PaidAmount: newPaid,
		IsSettled:  newPaid >= amount,
	}, nil
}
