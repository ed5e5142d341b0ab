package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/hisaab/internal/storage"
)

func newTestStore(t *testing.T) *DocStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "hisaab-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

type testDoc struct {
	UserID   string  `json:"userId"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Revision int64   `json:"revision,omitempty"`
}

func TestDocStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Create assigns id and Get round-trips", func(t *testing.T) {
		id, err := store.Create(ctx, "transactions", testDoc{UserID: "u1", Amount: 42.5, Date: "2026-08-01"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if id == "" {
			t.Fatal("Expected non-empty id")
		}

		doc, err := store.Get(ctx, "transactions", id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		var got testDoc
		if err := json.Unmarshal(doc.Body, &got); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if got.UserID != "u1" || got.Amount != 42.5 {
			t.Errorf("Round-trip mismatch: got %+v", got)
		}
	})

	t.Run("Get missing id returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "transactions", "nonexistent")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List filters and orders by body fields", func(t *testing.T) {
		for _, d := range []testDoc{
			{UserID: "alice", Amount: 1, Date: "2026-01-02"},
			{UserID: "alice", Amount: 2, Date: "2026-03-04"},
			{UserID: "bob", Amount: 3, Date: "2026-02-03"},
		} {
			if _, err := store.Create(ctx, "debts", d); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		docs, err := store.List(ctx, "debts",
			&storage.Filter{Field: "userId", Value: "alice"},
			&storage.Order{Field: "date", Desc: true},
		)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("Expected 2 documents, got %d", len(docs))
		}

		var first, second testDoc
		json.Unmarshal(docs[0].Body, &first)
		json.Unmarshal(docs[1].Body, &second)
		if first.Date != "2026-03-04" || second.Date != "2026-01-02" {
			t.Errorf("Expected date-descending order, got %s then %s", first.Date, second.Date)
		}
	})

	t.Run("List rejects unsafe field names", func(t *testing.T) {
		_, err := store.List(ctx, "debts", &storage.Filter{Field: "userId') --", Value: "x"}, nil)
		if err == nil {
			t.Error("Expected error for unsafe field name")
		}
	})

	t.Run("Update merges only supplied fields", func(t *testing.T) {
		id, err := store.Create(ctx, "debts", map[string]any{
			"userId": "carol", "amount": 500.0, "paidAmount": 0.0, "isSettled": false,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		err = store.Update(ctx, "debts", id, map[string]any{"paidAmount": 100.0})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		doc, err := store.Get(ctx, "debts", id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		var got map[string]any
		json.Unmarshal(doc.Body, &got)
		if got["paidAmount"] != 100.0 {
			t.Errorf("paidAmount = %v, want 100", got["paidAmount"])
		}
		if got["amount"] != 500.0 {
			t.Errorf("amount = %v, want 500 (untouched)", got["amount"])
		}
		if got["userId"] != "carol" {
			t.Errorf("userId = %v, want carol (untouched)", got["userId"])
		}
	})

	t.Run("Update missing id returns ErrNotFound", func(t *testing.T) {
		err := store.Update(ctx, "debts", "nonexistent", map[string]any{"x": 1})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Replace succeeds on matching revision and bumps it", func(t *testing.T) {
		id, err := store.Create(ctx, "groups", testDoc{UserID: "u1", Revision: 1})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		err = store.Replace(ctx, "groups", id, testDoc{UserID: "u1", Amount: 10, Revision: 2}, 1)
		if err != nil {
			t.Fatalf("Replace failed: %v", err)
		}

		doc, _ := store.Get(ctx, "groups", id)
		var got testDoc
		json.Unmarshal(doc.Body, &got)
		if got.Revision != 2 || got.Amount != 10 {
			t.Errorf("Replace did not apply: got %+v", got)
		}
	})

	t.Run("Replace with stale revision returns ErrRevisionConflict", func(t *testing.T) {
		id, err := store.Create(ctx, "groups", testDoc{UserID: "u1", Revision: 5})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		err = store.Replace(ctx, "groups", id, testDoc{UserID: "u1", Revision: 6}, 4)
		if !errors.Is(err, storage.ErrRevisionConflict) {
			t.Errorf("Expected ErrRevisionConflict, got %v", err)
		}

		// The stored document is untouched.
		doc, _ := store.Get(ctx, "groups", id)
		var got testDoc
		json.Unmarshal(doc.Body, &got)
		if got.Revision != 5 {
			t.Errorf("Revision = %d, want 5 (unchanged)", got.Revision)
		}
	})

	t.Run("Replace missing id returns ErrNotFound", func(t *testing.T) {
		err := store.Replace(ctx, "groups", "nonexistent", testDoc{Revision: 1}, 0)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes the document", func(t *testing.T) {
		id, err := store.Create(ctx, "transactions", testDoc{UserID: "u9"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := store.Delete(ctx, "transactions", id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "transactions", id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, "transactions", id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on double delete, got %v", err)
		}
	})
}
