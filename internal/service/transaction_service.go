package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/hisaab/internal/models"
	"github.com/mmynk/hisaab/internal/storage"
)

// TransactionService manages a user's income/expense entries.
type TransactionService struct {
	store storage.DocStore
}

// NewTransactionService creates a new TransactionService with the given
// storage backend.
func NewTransactionService(store storage.DocStore) *TransactionService {
	return &TransactionService{store: store}
}

// CreateTransactionInput carries the fields for a new transaction.
type CreateTransactionInput struct {
	Amount   float64                `json:"amount"`
	Type     models.TransactionType `json:"type"`
	Method   models.PaymentMethod   `json:"method"`
	Category string                 `json:"category"`
	Notes    string                 `json:"notes"`
	Date     string                 `json:"date"`
}

// CreateTransaction records a new transaction for the caller.
func (s *TransactionService) CreateTransaction(ctx context.Context, caller models.Identity, in CreateTransactionInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, models.ErrNonPositiveAmount
	}
	if !models.ValidTransactionType(in.Type) {
		return nil, models.ValidationError("transaction type must be 'income' or 'expense'")
	}
	if !models.ValidPaymentMethod(in.Method) {
		return nil, models.ValidationError("payment method must be one of cash, upi, card, bank")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, models.ValidationError("category is required")
	}

	now := time.Now().UTC()
	date := in.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	tx := &models.Transaction{
		UserID:    caller.UserID,
		Amount:    in.Amount,
		Type:      in.Type,
		Method:    in.Method,
		Category:  in.Category,
		Notes:     in.Notes,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.store.Create(ctx, storage.CollectionTransactions, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	tx.ID = id

	slog.Info("transaction created", "transaction_id", id, "type", tx.Type, "amount", tx.Amount)
	return tx, nil
}

// ListTransactions returns the caller's transactions, most recent date first.
func (s *TransactionService) ListTransactions(ctx context.Context, caller models.Identity) ([]models.Transaction, error) {
	docs, err := s.store.List(ctx, storage.CollectionTransactions,
		&storage.Filter{Field: "userId", Value: caller.UserID},
		&storage.Order{Field: "date", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]models.Transaction, 0, len(docs))
	for _, doc := range docs {
		tx, err := decodeTransaction(doc)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

// GetTransaction retrieves one of the caller's transactions.
func (s *TransactionService) GetTransaction(ctx context.Context, caller models.Identity, txID string) (*models.Transaction, error) {
	doc, err := s.store.Get(ctx, storage.CollectionTransactions, txID)
	if err != nil {
		return nil, err
	}
	tx, err := decodeTransaction(doc)
	if err != nil {
		return nil, err
	}
	if tx.UserID != caller.UserID {
		return nil, models.ErrForbidden
	}
	return tx, nil
}

// UpdateTransactionInput carries optional changes; nil fields stay untouched.
type UpdateTransactionInput struct {
	Amount   *float64                `json:"amount"`
	Type     *models.TransactionType `json:"type"`
	Method   *models.PaymentMethod   `json:"method"`
	Category *string                 `json:"category"`
	Notes    *string                 `json:"notes"`
	Date     *string                 `json:"date"`
}

// UpdateTransaction merges the supplied fields into the transaction.
func (s *TransactionService) UpdateTransaction(ctx context.Context, caller models.Identity, txID string, in UpdateTransactionInput) (*models.Transaction, error) {
	if _, err := s.GetTransaction(ctx, caller, txID); err != nil {
		return nil, err
	}

	partial := map[string]any{"updatedAt": time.Now().UTC()}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return nil, models.ErrNonPositiveAmount
		}
		partial["amount"] = *in.Amount
	}
	if in.Type != nil {
		if !models.ValidTransactionType(*in.Type) {
			return nil, models.ValidationError("transaction type must be 'income' or 'expense'")
		}
		partial["type"] = *in.Type
	}
	if in.Method != nil {
		if !models.ValidPaymentMethod(*in.Method) {
			return nil, models.ValidationError("payment method must be one of cash, upi, card, bank")
		}
		partial["method"] = *in.Method
	}
	if in.Category != nil {
		partial["category"] = *in.Category
	}
	if in.Notes != nil {
		partial["notes"] = *in.Notes
	}
	if in.Date != nil {
		partial["date"] = *in.Date
	}

	if err := s.store.Update(ctx, storage.CollectionTransactions, txID, partial); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return s.GetTransaction(ctx, caller, txID)
}

// DeleteTransaction removes one of the caller's transactions.
func (s *TransactionService) DeleteTransaction(ctx context.Context, caller models.Identity, txID string) error {
	if _, err := s.GetTransaction(ctx, caller, txID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.CollectionTransactions, txID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	slog.Info("transaction deleted", "transaction_id", txID)
	return nil
}

func decodeTransaction(doc storage.Document) (*models.Transaction, error) {
	tx := &models.Transaction{}
	if err := json.Unmarshal(doc.Body, tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", doc.ID, err)
	}
	tx.ID = doc.ID
	return tx, nil
}
