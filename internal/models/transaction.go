package models

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionIncome || t == TransactionExpense
}

// PaymentMethod is how a transaction was paid.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodUPI  PaymentMethod = "upi"
	MethodCard PaymentMethod = "card"
	MethodBank PaymentMethod = "bank"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodUPI, MethodCard, MethodBank:
		return true
	}
	return false
}

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID       string          `json:"id,omitempty"`
	UserID   string          `json:"userId"`
	Amount   float64         `json:"amount"`
	Type     TransactionType `json:"type"`
	Method   PaymentMethod   `json:"method"`
	Category string          `json:"category"`
	Notes    string          `json:"notes,omitempty"`

	// Date is the day the transaction happened, YYYY-MM-DD.
	Date string `json:"date"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
