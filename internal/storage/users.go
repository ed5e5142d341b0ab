package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/hisaab/internal/models"
)

// Users is a typed view over the users collection, implementing the
// persistence interface the authenticator needs.
type Users struct {
	store DocStore
}

// NewUsers wraps a DocStore with user-specific accessors.
func NewUsers(store DocStore) *Users {
	return &Users{store: store}
}

// CreateUser persists a new user and fills in the assigned id.
func (u *Users) CreateUser(ctx context.Context, user *models.User) error {
	id, err := u.store.Create(ctx, CollectionUsers, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no user
// has that email.
func (u *Users) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := u.store.List(ctx, CollectionUsers, &Filter{Field: "email", Value: email}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(docs[0])
}

// GetUserByID retrieves a user by id. Returns (nil, nil) when the id does
// not exist.
func (u *Users) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := u.store.Get(ctx, CollectionUsers, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return decodeUser(doc)
}

func decodeUser(doc Document) (*models.User, error) {
	user := &models.User{}
	if err := json.Unmarshal(doc.Body, user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", doc.ID, err)
	}
	user.ID = doc.ID
	return user, nil
}
