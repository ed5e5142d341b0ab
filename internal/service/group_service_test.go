package service

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/hisaab/internal/models"
	"github.com/mmynk/hisaab/internal/storage"
	"github.com/mmynk/hisaab/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.DocStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "hisaab-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

var alice = models.Identity{UserID: "user-alice", Email: "alice@example.com", DisplayName: "Alice"}

func createTestGroup(t *testing.T, svc *GroupService, emails ...string) *models.Group {
	t.Helper()
	group, err := svc.CreateGroup(context.Background(), alice, CreateGroupInput{
		Name:         "Trip",
		MemberEmails: emails,
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestCreateGroup(t *testing.T) {
	svc := NewGroupService(newTestStore(t))

	group := createTestGroup(t, svc, "bob@example.com", "charlie@example.com")

	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Revision != 1 {
		t.Errorf("revision: expected 1, got %d", group.Revision)
	}
	if len(group.Members) != 3 {
		t.Fatalf("members: expected 3, got %d", len(group.Members))
	}
	for _, m := range group.Members {
		if m.Balance != 0 {
			t.Errorf("member %s balance = %v, want 0", m.Key(), m.Balance)
		}
	}
	if group.Members[0].UserID != alice.UserID {
		t.Errorf("first member should be the creator, got %s", group.Members[0].Key())
	}
	if group.Members[1].DisplayName != "bob" {
		t.Errorf("placeholder display name = %q, want 'bob'", group.Members[1].DisplayName)
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc := NewGroupService(newTestStore(t))

	_, err := svc.CreateGroup(context.Background(), alice, CreateGroupInput{Name: "  "})
	if !models.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestAddExpenseEqualSplit(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	group := createTestGroup(t, svc, "bob@example.com", "charlie@example.com")

	updated, expense, err := svc.AddExpense(ctx, alice, group.ID, AddExpenseInput{
		Description: "Dinner",
		Amount:      300,
		PaidBy:      alice.UserID,
		SplitType:   models.SplitEqual,
		Category:    "Food & Dining",
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if expense.ID == "" {
		t.Error("expected expense id")
	}
	if len(expense.Splits) != 3 {
		t.Errorf("splits: expected 3, got %d", len(expense.Splits))
	}
	if updated.Revision != 2 {
		t.Errorf("revision: expected 2, got %d", updated.Revision)
	}

	// Payer +200, the two placeholders -100 each.
	want := map[string]float64{
		alice.UserID:          200,
		"bob@example.com":     -100,
		"charlie@example.com": -100,
	}
	for _, m := range updated.Members {
		if math.Abs(m.Balance-want[m.Key()]) > 1e-9 {
			t.Errorf("%s balance = %v, want %v", m.Key(), m.Balance, want[m.Key()])
		}
	}

	// The write was persisted, not just returned.
	fetched, err := svc.GetGroup(ctx, alice, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(fetched.Expenses) != 1 {
		t.Errorf("persisted expenses: expected 1, got %d", len(fetched.Expenses))
	}
	for _, m := range fetched.Members {
		if math.Abs(m.Balance-want[m.Key()]) > 1e-9 {
			t.Errorf("persisted %s balance = %v, want %v", m.Key(), m.Balance, want[m.Key()])
		}
	}
}

func TestAddExpenseCustomSplit(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	group := createTestGroup(t, svc, "bob@example.com", "charlie@example.com")

	updated, _, err := svc.AddExpense(ctx, alice, group.ID, AddExpenseInput{
		Description: "Hotel",
		Amount:      300,
		PaidBy:      "bob@example.com",
		SplitType:   models.SplitCustom,
		CustomSplits: map[string]float64{
			alice.UserID:          50,
			"bob@example.com":     125,
			"charlie@example.com": 125,
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	want := map[string]float64{
		alice.UserID:          -50,
		"bob@example.com":     175,
		"charlie@example.com": -125,
	}
	for _, m := range updated.Members {
		if math.Abs(m.Balance-want[m.Key()]) > 1e-9 {
			t.Errorf("%s balance = %v, want %v", m.Key(), m.Balance, want[m.Key()])
		}
	}
}

func TestAddExpenseCustomSplitMismatchLeavesGroupUnchanged(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	group := createTestGroup(t, svc, "bob@example.com")

	_, _, err := svc.AddExpense(ctx, alice, group.ID, AddExpenseInput{
		Description: "Broken",
		Amount:      100,
		PaidBy:      alice.UserID,
		SplitType:   models.SplitCustom,
		CustomSplits: map[string]float64{
			alice.UserID:      40,
			"bob@example.com": 40,
		},
	})
	if !errors.Is(err, models.ErrSplitMismatch) {
		t.Fatalf("expected ErrSplitMismatch, got %v", err)
	}

	fetched, err := svc.GetGroup(ctx, alice, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(fetched.Expenses) != 0 {
		t.Errorf("expenses: expected 0 after rejected split, got %d", len(fetched.Expenses))
	}
	for _, m := range fetched.Members {
		if m.Balance != 0 {
			t.Errorf("%s balance = %v, want 0 after rejected split", m.Key(), m.Balance)
		}
	}
	if fetched.Revision != 1 {
		t.Errorf("revision: expected 1 (no write), got %d", fetched.Revision)
	}
}

func TestAddExpenseUnknownPayer(t *testing.T) {
	svc := NewGroupService(newTestStore(t))

	group := createTestGroup(t, svc)

	_, _, err := svc.AddExpense(context.Background(), alice, group.ID, AddExpenseInput{
		Description: "Dinner",
		Amount:      50,
		PaidBy:      "stranger@example.com",
		SplitType:   models.SplitEqual,
	})
	if !errors.Is(err, models.ErrUnknownPayer) {
		t.Errorf("expected ErrUnknownPayer, got %v", err)
	}
}

func TestGetGroupAccessControl(t *testing.T) {
	svc := NewGroupService(newTestStore(t))

	group := createTestGroup(t, svc, "bob@example.com")

	// Bob participates via invite email.
	bob := models.Identity{UserID: "user-bob", Email: "bob@example.com"}
	if _, err := svc.GetGroup(context.Background(), bob, group.ID); err != nil {
		t.Errorf("expected invited member to have access, got %v", err)
	}

	stranger := models.Identity{UserID: "user-x", Email: "x@example.com"}
	if _, err := svc.GetGroup(context.Background(), stranger, group.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestAddMember(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	group := createTestGroup(t, svc)

	updated, err := svc.AddMember(ctx, alice, group.ID, "dave@example.com")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if len(updated.Members) != 2 {
		t.Errorf("members: expected 2, got %d", len(updated.Members))
	}

	if _, err := svc.AddMember(ctx, alice, group.ID, "dave@example.com"); !models.IsValidation(err) {
		t.Errorf("expected ValidationError for duplicate email, got %v", err)
	}
}

func TestAuditBalances(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	group := createTestGroup(t, svc, "bob@example.com", "charlie@example.com")

	for _, amount := range []float64{300, 90, 45.5} {
		if _, _, err := svc.AddExpense(ctx, alice, group.ID, AddExpenseInput{
			Description: "Expense",
			Amount:      amount,
			PaidBy:      alice.UserID,
			SplitType:   models.SplitEqual,
		}); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	audit, err := svc.AuditBalances(ctx, alice, group.ID)
	if err != nil {
		t.Fatalf("AuditBalances failed: %v", err)
	}
	if !audit.Consistent {
		t.Errorf("expected consistent audit, drift = %v", audit.MaxDrift)
	}
}

// conflictingStore wraps a DocStore and fails the first N Replace calls with
// a revision conflict, simulating a concurrent writer.
type conflictingStore struct {
	storage.DocStore
	conflicts int
}

func (c *conflictingStore) Replace(ctx context.Context, collection, id string, body any, expectRevision int64) error {
	if c.conflicts > 0 {
		c.conflicts--
		return storage.ErrRevisionConflict
	}
	return c.DocStore.Replace(ctx, collection, id, body, expectRevision)
}

func TestAddExpenseRetriesOnRevisionConflict(t *testing.T) {
	real := newTestStore(t)
	wrapped := &conflictingStore{DocStore: real, conflicts: 1}
	svc := NewGroupService(wrapped)
	ctx := context.Background()

	group := createTestGroup(t, NewGroupService(real), "bob@example.com")

	updated, _, err := svc.AddExpense(ctx, alice, group.ID, AddExpenseInput{
		Description: "Dinner",
		Amount:      100,
		PaidBy:      alice.UserID,
		SplitType:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("AddExpense should retry through one conflict, got %v", err)
	}
	if len(updated.Expenses) != 1 {
		t.Errorf("expenses: expected 1, got %d", len(updated.Expenses))
	}
}

func TestAddExpenseGivesUpAfterRepeatedConflicts(t *testing.T) {
	real := newTestStore(t)
	wrapped := &conflictingStore{DocStore: real, conflicts: casMaxAttempts}
	svc := NewGroupService(wrapped)

	group := createTestGroup(t, NewGroupService(real))

	_, _, err := svc.AddExpense(context.Background(), alice, group.ID, AddExpenseInput{
		Description: "Dinner",
		Amount:      100,
		PaidBy:      alice.UserID,
		SplitType:   models.SplitEqual,
	})
	if !errors.Is(err, ErrTooMuchContention) {
		t.Errorf("expected ErrTooMuchContention, got %v", err)
	}
}
