// Package service orchestrates the ledger core over the document store.
// Every operation takes the caller identity explicitly; validation always
// runs before any write, so a ValidationError means nothing was mutated.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hisaab/internal/calculator"
	"github.com/mmynk/hisaab/internal/models"
	"github.com/mmynk/hisaab/internal/storage"
)

// casMaxAttempts bounds the read-modify-write retry loop on the group
// aggregate. Conflicts only happen when two members submit concurrently, so
// a couple of retries is plenty.
const casMaxAttempts = 3

// ErrTooMuchContention is returned when the compare-and-swap loop exhausts
// its retries.
var ErrTooMuchContention = errors.New("group is being updated concurrently, try again")

// GroupService manages shared-expense groups and their balance ledgers.
type GroupService struct {
	store storage.DocStore
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.DocStore) *GroupService {
	return &GroupService{store: store}
}

// CreateGroupInput carries the fields for a new group.
type CreateGroupInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails"`
}

// CreateGroup creates a group with the caller as first member plus one
// placeholder member per invited email, all balances zero.
func (s *GroupService) CreateGroup(ctx context.Context, caller models.Identity, in CreateGroupInput) (*models.Group, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.ValidationError("group name is required")
	}

	now := time.Now().UTC()
	group := &models.Group{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   caller.UserID,
		Members: []models.Member{{
			UserID:      caller.UserID,
			Email:       caller.Email,
			DisplayName: caller.DisplayName,
		}},
		Expenses:  []models.Expense{},
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, email := range in.MemberEmails {
		email = strings.TrimSpace(email)
		if email == "" || group.HasEmail(email) {
			continue
		}
		group.Members = append(group.Members, models.Member{
			Email:       email,
			DisplayName: displayNameFromEmail(email),
		})
	}

	id, err := s.store.Create(ctx, storage.CollectionGroups, group)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	group.ID = id

	slog.Info("group created", "group_id", id, "members", len(group.Members))
	return group, nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, caller models.Identity) ([]models.Group, error) {
	docs, err := s.store.List(ctx, storage.CollectionGroups,
		&storage.Filter{Field: "createdBy", Value: caller.UserID},
		&storage.Order{Field: "createdAt", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]models.Group, 0, len(docs))
	for _, doc := range docs {
		group, err := decodeGroup(doc)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

// GetGroup retrieves a group the caller participates in.
func (s *GroupService) GetGroup(ctx context.Context, caller models.Identity, groupID string) (*models.Group, error) {
	doc, err := s.store.Get(ctx, storage.CollectionGroups, groupID)
	if err != nil {
		return nil, err
	}
	group, err := decodeGroup(doc)
	if err != nil {
		return nil, err
	}
	if !group.IsParticipant(caller.UserID, caller.Email) {
		return nil, models.ErrForbidden
	}
	return group, nil
}

// UpdateGroupInput carries optional group metadata changes.
type UpdateGroupInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateGroup changes group metadata. Only the creator may update; member
// and expense lists are never touched here.
func (s *GroupService) UpdateGroup(ctx context.Context, caller models.Identity, groupID string, in UpdateGroupInput) (*models.Group, error) {
	group, err := s.GetGroup(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != caller.UserID {
		return nil, models.ErrForbidden
	}

	partial := map[string]any{"updatedAt": time.Now().UTC()}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, models.ValidationError("group name is required")
		}
		partial["name"] = *in.Name
	}
	if in.Description != nil {
		partial["description"] = *in.Description
	}

	if err := s.store.Update(ctx, storage.CollectionGroups, groupID, partial); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return s.GetGroup(ctx, caller, groupID)
}

// AddMember appends a placeholder member by email. Members are never
// removed, so this is the only membership mutation after creation.
func (s *GroupService) AddMember(ctx context.Context, caller models.Identity, groupID, email string) (*models.Group, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, models.ValidationError("member email is required")
	}

	for attempt := 1; attempt <= casMaxAttempts; attempt++ {
		group, err := s.GetGroup(ctx, caller, groupID)
		if err != nil {
			return nil, err
		}
		if group.HasEmail(email) {
			return nil, models.ValidationError("a member with this email already exists")
		}

		group.Members = append(group.Members, models.Member{
			Email:       email,
			DisplayName: displayNameFromEmail(email),
		})

		if err := s.writeAggregate(ctx, group); err != nil {
			if errors.Is(err, storage.ErrRevisionConflict) {
				slog.Warn("AddMember revision conflict, retrying", "group_id", groupID, "attempt", attempt)
				continue
			}
			return nil, err
		}
		slog.Info("member added", "group_id", groupID, "email", email)
		return group, nil
	}
	return nil, ErrTooMuchContention
}

// AddExpenseInput carries a new shared expense. CustomSplits is keyed by
// member key and only read for the custom split type.
type AddExpenseInput struct {
	Description  string             `json:"description"`
	Amount       float64            `json:"amount"`
	PaidBy       string             `json:"paidBy"`
	SplitType    models.SplitType   `json:"splitType"`
	CustomSplits map[string]float64 `json:"customSplits"`
	Category     string             `json:"category"`
	Date         string             `json:"date"`
}

// AddExpense splits the expense among all members, folds the deltas into the
// cached balances, and appends the expense to the ledger. The updated member
// list and the appended expense land in one compare-and-swap write of the
// aggregate; on a revision conflict the whole read-modify-write is retried.
func (s *GroupService) AddExpense(ctx context.Context, caller models.Identity, groupID string, in AddExpenseInput) (*models.Group, *models.Expense, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, nil, models.ValidationError("expense description is required")
	}

	for attempt := 1; attempt <= casMaxAttempts; attempt++ {
		group, err := s.GetGroup(ctx, caller, groupID)
		if err != nil {
			return nil, nil, err
		}

		if group.FindMember(in.PaidBy) == nil {
			return nil, nil, models.ErrUnknownPayer
		}

		splits, err := calculator.CalculateSplits(in.Amount, group.Members, in.SplitType, in.CustomSplits)
		if err != nil {
			return nil, nil, err
		}

		now := time.Now().UTC()
		date := in.Date
		if date == "" {
			date = now.Format("2006-01-02")
		}
		expense := models.Expense{
			ID:          uuid.New().String(),
			Description: in.Description,
			Amount:      in.Amount,
			PaidBy:      in.PaidBy,
			SplitType:   in.SplitType,
			Splits:      splits,
			Category:    in.Category,
			Date:        date,
			CreatedAt:   now,
		}

		group.Members = calculator.ApplyExpense(group.Members, expense)
		group.Expenses = append(group.Expenses, expense)

		if err := s.writeAggregate(ctx, group); err != nil {
			if errors.Is(err, storage.ErrRevisionConflict) {
				slog.Warn("AddExpense revision conflict, retrying", "group_id", groupID, "attempt", attempt)
				continue
			}
			return nil, nil, err
		}

		slog.Info("expense added",
			"group_id", groupID,
			"expense_id", expense.ID,
			"amount", expense.Amount,
			"split_type", expense.SplitType,
		)
		return group, &expense, nil
	}
	return nil, nil, ErrTooMuchContention
}

// BalanceAudit compares the cached member balances against a rebuild from
// the expense log.
type BalanceAudit struct {
	Cached     []models.Member `json:"cached"`
	Rebuilt    []models.Member `json:"rebuilt"`
	MaxDrift   float64         `json:"maxDrift"`
	Consistent bool            `json:"consistent"`
}

// auditTolerance absorbs float noise accumulated by the incremental fold.
const auditTolerance = 1e-6

// AuditBalances rebuilds every balance from the append-only expense log and
// reports any drift from the cached values.
func (s *GroupService) AuditBalances(ctx context.Context, caller models.Identity, groupID string) (*BalanceAudit, error) {
	group, err := s.GetGroup(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}

	rebuilt := calculator.Rebuild(group.Members, group.Expenses)
	drift := calculator.MaxDrift(group.Members, rebuilt)
	return &BalanceAudit{
		Cached:     group.Members,
		Rebuilt:    rebuilt,
		MaxDrift:   drift,
		Consistent: drift <= auditTolerance,
	}, nil
}

// writeAggregate bumps the revision and replaces the whole group document,
// conditional on the revision the caller read.
func (s *GroupService) writeAggregate(ctx context.Context, group *models.Group) error {
	lastSeen := group.Revision
	group.Revision++
	group.UpdatedAt = time.Now().UTC()

	if err := s.store.Replace(ctx, storage.CollectionGroups, group.ID, group, lastSeen); err != nil {
		// Undo the local bump so a retry re-reads cleanly.
		group.Revision = lastSeen
		if errors.Is(err, storage.ErrRevisionConflict) || errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to write group %s: %w", group.ID, err)
	}
	return nil
}

func decodeGroup(doc storage.Document) (*models.Group, error) {
	group := &models.Group{}
	if err := json.Unmarshal(doc.Body, group); err != nil {
		return nil, fmt.Errorf("failed to decode group %s: %w", doc.ID, err)
	}
	group.ID = doc.ID
	return group, nil
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
