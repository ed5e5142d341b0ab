package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/hisaab/internal/calculator"
	"github.com/mmynk/hisaab/internal/models"
	"github.com/mmynk/hisaab/internal/storage"
)

// DebtService manages individual debts and their partial settlements.
type DebtService struct {
	store storage.DocStore
}

// NewDebtService creates a new DebtService with the given storage backend.
func NewDebtService(store storage.DocStore) *DebtService {
	return &DebtService{store: store}
}

// CreateDebtInput carries the fields for a new debt.
type CreateDebtInput struct {
	CreditorName   string               `json:"creditorName"`
	CreditorUserID string               `json:"creditorUserId"`
	Amount         float64              `json:"amount"`
	Description    string               `json:"description"`
	Type           models.DebtDirection `json:"type"`
	DueDate        string               `json:"dueDate"`
}

// CreateDebt records a new debt for the caller, starting unpaid.
func (s *DebtService) CreateDebt(ctx context.Context, caller models.Identity, in CreateDebtInput) (*models.Debt, error) {
	if strings.TrimSpace(in.CreditorName) == "" {
		return nil, models.ValidationError("creditor name is required")
	}
	if in.Amount <= 0 {
		return nil, models.ErrNonPositiveAmount
	}
	if !models.ValidDebtDirection(in.Type) {
		return nil, models.ValidationError("debt type must be 'i_owe' or 'they_owe_me'")
	}

	now := time.Now().UTC()
	debt := &models.Debt{
		UserID:         caller.UserID,
		CreditorName:   in.CreditorName,
		CreditorUserID: in.CreditorUserID,
		Amount:         in.Amount,
		Description:    in.Description,
		Type:           in.Type,
		DueDate:        in.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.store.Create(ctx, storage.CollectionDebts, debt)
	if err != nil {
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}
	debt.ID = id

	slog.Info("debt created", "debt_id", id, "amount", debt.Amount, "type", debt.Type)
	return debt, nil
}

// ListDebts returns the caller's debts, newest first.
func (s *DebtService) ListDebts(ctx context.Context, caller models.Identity) ([]models.Debt, error) {
	docs, err := s.store.List(ctx, storage.CollectionDebts,
		&storage.Filter{Field: "userId", Value: caller.UserID},
		&storage.Order{Field: "createdAt", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}

	debts := make([]models.Debt, 0, len(docs))
	for _, doc := range docs {
		debt, err := decodeDebt(doc)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *debt)
	}
	return debts, nil
}

// GetDebt retrieves one of the caller's debts.
func (s *DebtService) GetDebt(ctx context.Context, caller models.Identity, debtID string) (*models.Debt, error) {
	doc, err := s.store.Get(ctx, storage.CollectionDebts, debtID)
	if err != nil {
		return nil, err
	}
	debt, err := decodeDebt(doc)
	if err != nil {
		return nil, err
	}
	if debt.UserID != caller.UserID {
		return nil, models.ErrForbidden
	}
	return debt, nil
}

// UpdateDebtInput carries optional debt changes; nil fields stay untouched.
// Settlement state is only changed through RecordPayment, except that
// IsSettled may be set explicitly to close a debt outright.
type UpdateDebtInput struct {
	CreditorName *string               `json:"creditorName"`
	Amount       *float64              `json:"amount"`
	Description  *string               `json:"description"`
	Type         *models.DebtDirection `json:"type"`
	DueDate      *string               `json:"dueDate"`
	IsSettled    *bool                 `json:"isSettled"`
}

// UpdateDebt merges the supplied fields into the debt record.
func (s *DebtService) UpdateDebt(ctx context.Context, caller models.Identity, debtID string, in UpdateDebtInput) (*models.Debt, error) {
	debt, err := s.GetDebt(ctx, caller, debtID)
	if err != nil {
		return nil, err
	}

	partial := map[string]any{"updatedAt": time.Now().UTC()}
	if in.CreditorName != nil {
		if strings.TrimSpace(*in.CreditorName) == "" {
			return nil, models.ValidationError("creditor name is required")
		}
		partial["creditorName"] = *in.CreditorName
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return nil, models.ErrNonPositiveAmount
		}
		// Applied payments can never exceed the principal.
		if *in.Amount < debt.PaidAmount {
			return nil, models.ErrAmountBelowPaid
		}
		partial["amount"] = *in.Amount
		// The amount moved, so re-derive the settlement flag unless the
		// caller is setting it explicitly.
		if in.IsSettled == nil {
			partial["isSettled"] = debt.PaidAmount >= *in.Amount
		}
	}
	if in.Description != nil {
		partial["description"] = *in.Description
	}
	if in.Type != nil {
		if !models.ValidDebtDirection(*in.Type) {
			return nil, models.ValidationError("debt type must be 'i_owe' or 'they_owe_me'")
		}
		partial["type"] = *in.Type
	}
	if in.DueDate != nil {
		partial["dueDate"] = *in.DueDate
	}
	if in.IsSettled != nil {
		partial["isSettled"] = *in.IsSettled
	}

	if err := s.store.Update(ctx, storage.CollectionDebts, debtID, partial); err != nil {
		return nil, fmt.Errorf("failed to update debt: %w", err)
	}
	return s.GetDebt(ctx, caller, debtID)
}

// DeleteDebt removes one of the caller's debts.
func (s *DebtService) DeleteDebt(ctx context.Context, caller models.Identity, debtID string) error {
	if _, err := s.GetDebt(ctx, caller, debtID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.CollectionDebts, debtID); err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	slog.Info("debt deleted", "debt_id", debtID)
	return nil
}

// PaymentInput is one partial settlement. PaymentID is a caller-generated
// idempotency token: submitting the same id twice applies the payment once.
type PaymentInput struct {
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
}

// RecordPayment applies a partial payment against the debt. The accumulated
// paidAmount, the derived isSettled flag, and the applied-payment log are
// persisted together. A replayed PaymentID returns the current state without
// double-applying.
func (s *DebtService) RecordPayment(ctx context.Context, caller models.Identity, debtID string, in PaymentInput) (*models.Debt, error) {
	if strings.TrimSpace(in.PaymentID) == "" {
		return nil, models.ErrMissingPaymentID
	}

	debt, err := s.GetDebt(ctx, caller, debtID)
	if err != nil {
		return nil, err
	}

	if debt.HasPayment(in.PaymentID) {
		slog.Info("duplicate payment ignored", "debt_id", debtID, "payment_id", in.PaymentID)
		return debt, nil
	}

	// Covers debts closed explicitly with paidAmount still below amount.
	if debt.IsSettled {
		return nil, models.ErrDebtSettled
	}

	settlement, err := calculator.ApplyPayment(debt.Amount, debt.PaidAmount, in.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payments := append(debt.Payments, models.Payment{
		ID:     in.PaymentID,
		Amount: in.Amount,
		PaidAt: now,
	})

	partial := map[string]any{
		"paidAmount": settlement.PaidAmount,
		"isSettled":  settlement.IsSettled,
		"payments":   payments,
		"updatedAt":  now,
	}
	if err := s.store.Update(ctx, storage.CollectionDebts, debtID, partial); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	debt.PaidAmount = settlement.PaidAmount
	debt.IsSettled = settlement.IsSettled
	debt.Payments = payments
	debt.UpdatedAt = now

	slog.Info("payment recorded",
		"debt_id", debtID,
		"payment_id", in.PaymentID,
		"amount", in.Amount,
		"settled", debt.IsSettled,
	)
	return debt, nil
}

func decodeDebt(doc storage.Document) (*models.Debt, error) {
	debt := &models.Debt{}
	if err := json.Unmarshal(doc.Body, debt); err != nil {
		return nil, fmt.Errorf("failed to decode debt %s: %w", doc.ID, err)
	}
	debt.ID = doc.ID
	return debt, nil
}
