package models

// Identity is the authenticated caller, passed explicitly to every service
// operation. Ledger logic never reads ambient session state.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}
