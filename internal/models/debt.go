package models

import "time"

// DebtDirection says which way the money flows.
type DebtDirection string

const (
	DebtIOwe      DebtDirection = "i_owe"
	DebtTheyOweMe DebtDirection = "they_owe_me"
)

// ValidDebtDirection reports whether d is a known direction.
func ValidDebtDirection(d DebtDirection) bool {
	return d == DebtIOwe || d == DebtTheyOweMe
}

// Payment is one applied partial settlement. The payment id doubles as the
// idempotency token: a replayed id must not be applied twice.
type Payment struct {
	ID     string    `json:"id"`
	Amount float64   `json:"amount"`
	PaidAt time.Time `json:"paidAt"`
}

// Debt is an individual debt tracked outside any group. PaidAmount is the
// cumulative total of applied payments; IsSettled is derived (paid >= amount)
// but may also be set explicitly.
type Debt struct {
	ID             string        `json:"id,omitempty"`
	UserID         string        `json:"userId"`
	CreditorName   string        `json:"creditorName"`
	CreditorUserID string        `json:"creditorUserId,omitempty"`
	Amount         float64       `json:"amount"`
	PaidAmount     float64       `json:"paidAmount"`
	Description    string        `json:"description"`
	Type           DebtDirection `json:"type"`
	IsSettled      bool          `json:"isSettled"`

	// DueDate is optional, YYYY-MM-DD.
	DueDate string `json:"dueDate,omitempty"`

	// Payments is the applied-payment log, oldest first.
	Payments []Payment `json:"payments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Remaining returns the unpaid portion of the debt.
func (d *Debt) Remaining() float64 {
	return d.Amount - d.PaidAmount
}

// HasPayment reports whether a payment with the given id was already applied.
func (d *Debt) HasPayment(id string) bool {
	for _, p := range d.Payments {
		if p.ID == id {
			return true
		}
	}
	return false
}
