package service

import (
	"context"
	"time"

	"github.com/mmynk/hisaab/internal/calculator"
	"github.com/mmynk/hisaab/internal/models"
)

// ReportService computes read-only dashboard projections. It fetches through
// the other services and reduces with the pure calculator functions; nothing
// here writes.
type ReportService struct {
	transactions *TransactionService
	debts        *DebtService
	groups       *GroupService
}

// NewReportService creates a new ReportService over the given services.
func NewReportService(transactions *TransactionService, debts *DebtService, groups *GroupService) *ReportService {
	return &ReportService{
		transactions: transactions,
		debts:        debts,
		groups:       groups,
	}
}

// DashboardSummary is the landing-page aggregate.
type DashboardSummary struct {
	Transactions calculator.TransactionSummary `json:"transactions"`
	Debts        calculator.DebtSummary        `json:"debts"`
}

// Dashboard aggregates the caller's transactions and debts.
func (s *ReportService) Dashboard(ctx context.Context, caller models.Identity) (*DashboardSummary, error) {
	txs, err := s.transactions.ListTransactions(ctx, caller)
	if err != nil {
		return nil, err
	}
	debts, err := s.debts.ListDebts(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &DashboardSummary{
		Transactions: calculator.SummarizeTransactions(txs, now),
		Debts:        calculator.SummarizeDebts(debts, now),
	}, nil
}

// GroupOverview aggregates the caller's position across all their groups.
func (s *ReportService) GroupOverview(ctx context.Context, caller models.Identity) (*calculator.GroupOverview, error) {
	groups, err := s.groups.ListGroups(ctx, caller)
	if err != nil {
		return nil, err
	}
	overview := calculator.SummarizeGroups(groups, caller.UserID)
	return &overview, nil
}
