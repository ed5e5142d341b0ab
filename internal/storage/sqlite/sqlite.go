// Package sqlite provides a SQLite-backed implementation of the
// storage.DocStore interface. Each document is one row with a JSON body;
// json_extract handles filtering, ordering, and the revision check, and
// json_patch gives Update its merge semantics.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/hisaab/internal/storage"
)

// Ensure DocStore implements storage.DocStore
var _ storage.DocStore = (*DocStore)(nil)

// DocStore implements storage.DocStore using SQLite.
type DocStore struct {
	db *sql.DB
}

// New creates a new DocStore with the given database path. It creates the
// parent directories and runs migrations automatically.
func New(dbPath string) (*DocStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DocStore{db: db}, nil
}

// Close closes the database connection.
func (s *DocStore) Close() error {
	return s.db.Close()
}

// List returns all documents in the collection matching the filter, in the
// given order.
func (s *DocStore) List(ctx context.Context, collection string, filter *storage.Filter, order *storage.Order) ([]storage.Document, error) {
	query := "SELECT id, body FROM documents WHERE collection = ?"
	args := []any{collection}

	if filter != nil {
		if err := validateField(filter.Field); err != nil {
			return nil, err
		}
		query += fmt.Sprintf(" AND json_extract(body, '$.%s') = ?", filter.Field)
		args = append(args, filter.Value)
	}
	if order != nil {
		if err := validateField(order.Field); err != nil {
			return nil, err
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY json_extract(body, '$.%s') %s", order.Field, dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		var body string
		if err := rows.Scan(&doc.ID, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Body = json.RawMessage(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}

	return docs, nil
}

// Get retrieves one document by id.
func (s *DocStore) Get(ctx context.Context, collection, id string) (storage.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return storage.Document{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return storage.Document{ID: id, Body: json.RawMessage(body)}, nil
}

// Create persists body as a new document and returns the assigned id.
func (s *DocStore) Create(ctx context.Context, collection string, body any) (string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)",
		collection, id, string(encoded),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

// Update merges partial into the stored document body. json_patch implements
// RFC 7396 merge semantics: only supplied fields change, arrays are replaced
// wholesale.
func (s *DocStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	encoded, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to encode partial update: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET body = json_patch(body, ?) WHERE collection = ? AND id = ?",
		string(encoded), collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return s.checkAffected(res, collection, id)
}

// Replace overwrites the whole body if the stored revision still matches.
func (s *DocStore) Replace(ctx context.Context, collection, id string, body any, expectRevision int64) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET body = ? WHERE collection = ? AND id = ? AND json_extract(body, '$.revision') = ?",
		string(encoded), collection, id, expectRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check replace result: %w", err)
	}
	if n > 0 {
		return nil
	}

	// No row matched: either the document is gone or its revision moved.
	if _, err := s.Get(ctx, collection, id); err != nil {
		return err
	}
	return storage.ErrRevisionConflict
}

// Delete removes a document.
func (s *DocStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return s.checkAffected(res, collection, id)
}

func (s *DocStore) checkAffected(res sql.Result, collection, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check result for %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// validateField guards the json_extract paths built by fmt.Sprintf. Field
// names come from code in this module, never from request input.
func validateField(field string) error {
	if field == "" {
		return fmt.Errorf("empty filter field")
	}
	for _, r := range field {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("invalid filter field %q", field)
		}
	}
	return nil
}
