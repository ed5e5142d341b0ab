package models

import (
	"strings"
	"time"
)

// SplitType selects how an expense is divided among members.
type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

// ValidSplitType reports whether t is a known split type.
func ValidSplitType(t SplitType) bool {
	return t == SplitEqual || t == SplitCustom
}

// Member is a group participant. Members invited by email before they have
// an account carry an empty UserID until they join; members are never
// removed.
type Member struct {
	// UserID is empty for email-invited placeholders.
	UserID string `json:"userId"`

	// Email is unique within a group.
	Email string `json:"email"`

	DisplayName string `json:"displayName"`

	// Balance is the member's signed net position: positive means the group
	// owes them, negative means they owe the group. It is a cached running
	// total, adjusted once per expense and rebuildable from the expense log.
	Balance float64 `json:"balance"`
}

// Key identifies a member within its group: the user id when resolved,
// otherwise the invite email.
func (m *Member) Key() string {
	if m.UserID != "" {
		return m.UserID
	}
	return m.Email
}

// Split is the owed portion of one expense attributed to one member.
type Split struct {
	MemberID string  `json:"memberId"`
	Amount   float64 `json:"amount"`
}

// Expense is a shared expense appended to a group's ledger. Expenses are
// immutable once appended; there is no edit or delete path.
type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	PaidBy      string    `json:"paidBy"` // member key
	SplitType   SplitType `json:"splitType"`
	Splits      []Split   `json:"splits"` // exactly one per member, payer included
	Category    string    `json:"category"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"createdAt"`
}

// Group is the aggregate root: the group document together with its embedded
// Members and Expenses, always written back as one unit.
type Group struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Members     []Member  `json:"members"`
	Expenses    []Expense `json:"expenses"`

	// Revision is the optimistic-concurrency token. Every write of the
	// aggregate must supply the last-seen revision and bumps it by one.
	Revision int64 `json:"revision"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindMember returns the member with the given key, or nil.
func (g *Group) FindMember(key string) *Member {
	for i := range g.Members {
		if g.Members[i].Key() == key {
			return &g.Members[i]
		}
	}
	return nil
}

// HasEmail reports whether a member with the given email already exists
// (case-insensitive).
func (g *Group) HasEmail(email string) bool {
	for i := range g.Members {
		if strings.EqualFold(g.Members[i].Email, email) {
			return true
		}
	}
	return false
}

// IsParticipant reports whether the caller belongs to the group, matched by
// user id or email.
func (g *Group) IsParticipant(userID, email string) bool {
	for i := range g.Members {
		m := &g.Members[i]
		if (userID != "" && m.UserID == userID) || (email != "" && strings.EqualFold(m.Email, email)) {
			return true
		}
	}
	return false
}
