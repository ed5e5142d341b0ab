// Package storage provides the document-store abstraction the services are
// written against. Documents are schemaless JSON bodies grouped into named
// collections and keyed by opaque string ids; this mirrors the hosted
// document databases the service is designed to sit in front of, and lets
// backends be swapped without touching the service layer.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names used by the services.
const (
	CollectionUsers        = "users"
	CollectionTransactions = "transactions"
	CollectionDebts        = "debts"
	CollectionGroups       = "groups"
)

var (
	// ErrNotFound is returned when a document id does not exist in the
	// collection.
	ErrNotFound = errors.New("document not found")

	// ErrRevisionConflict is returned by Replace when the stored document's
	// revision no longer matches the caller's last-seen revision.
	ErrRevisionConflict = errors.New("document revision conflict")
)

// Document is one stored record: an opaque id plus its JSON body.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Filter selects documents whose top-level body field equals a value.
type Filter struct {
	Field string
	Value any
}

// Order sorts results by a top-level body field.
type Order struct {
	Field string
	Desc  bool
}

// DocStore is the external document-store collaborator. Store failures are
// opaque to callers: no retries, no backoff; errors propagate immediately.
type DocStore interface {
	// List returns all documents in the collection matching the filter, in
	// the given order. Both filter and order may be nil.
	List(ctx context.Context, collection string, filter *Filter, order *Order) ([]Document, error)

	// Get retrieves one document by id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create persists body as a new document and returns the assigned id.
	Create(ctx context.Context, collection string, body any) (string, error)

	// Update merges partial into the stored document: only supplied fields
	// change. Returns ErrNotFound for a missing id.
	Update(ctx context.Context, collection, id string, partial map[string]any) error

	// Replace overwrites the whole document body, but only if the stored
	// body's `revision` field still equals expectRevision. Returns
	// ErrRevisionConflict on mismatch. This is the compare-and-swap used to
	// keep concurrent writers of an aggregate from losing updates.
	Replace(ctx context.Context, collection, id string, body any, expectRevision int64) error

	// Delete removes a document, or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// Close releases any resources held by the store.
	Close() error
}
