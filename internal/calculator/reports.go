package calculator

import (
	"time"

	"github.com/mmynk/hisaab/internal/models"
)

const dateLayout = "2006-01-02"

// TransactionSummary aggregates a user's transactions for the dashboard.
type TransactionSummary struct {
	TotalIncome     float64            `json:"totalIncome"`
	TotalExpenses   float64            `json:"totalExpenses"`
	NetBalance      float64            `json:"netBalance"`
	WeeklyIncome    float64            `json:"weeklyIncome"`
	WeeklyExpenses  float64            `json:"weeklyExpenses"`
	MonthlyIncome   float64            `json:"monthlyIncome"`
	MonthlyExpenses float64            `json:"monthlyExpenses"`
	ByCategory      map[string]float64 `json:"byCategory"` // expenses only
}

// SummarizeTransactions is a stateless filter-then-reduce over an already
// fetched transaction list. Weekly covers the 7 days ending at now; monthly
// covers the calendar month of now. Entries with unparseable dates count
// toward the overall totals only.
func SummarizeTransactions(txs []models.Transaction, now time.Time) TransactionSummary {
	sum := TransactionSummary{ByCategory: make(map[string]float64)}
	weekStart := now.AddDate(0, 0, -7)

	for _, tx := range txs {
		income := tx.Type == models.TransactionIncome
		if income {
			sum.TotalIncome += tx.Amount
		} else {
			sum.TotalExpenses += tx.Amount
			sum.ByCategory[tx.Category] += tx.Amount
		}

		date, err := time.Parse(dateLayout, tx.Date)
		if err != nil {
			continue
		}
		if !date.Before(weekStart) && !date.After(now) {
			if income {
				sum.WeeklyIncome += tx.Amount
			} else {
				sum.WeeklyExpenses += tx.Amount
			}
		}
		if date.Year() == now.Year() && date.Month() == now.Month() {
			if income {
				sum.MonthlyIncome += tx.Amount
			} else {
				sum.MonthlyExpenses += tx.Amount
			}
		}
	}

	sum.NetBalance = sum.TotalIncome - sum.TotalExpenses
	return sum
}

// DebtSummary aggregates a user's individual debts.
type DebtSummary struct {
	Pending       int     `json:"pending"`
	Overdue       int     `json:"overdue"`
	TotalIOwe     float64 `json:"totalIOwe"`
	TotalOwedToMe float64 `json:"totalOwedToMe"`
}

// SummarizeDebts totals the remaining principal of unsettled debts in each
// direction. A debt is overdue when its due date has passed and it is not
// settled.
func SummarizeDebts(debts []models.Debt, now time.Time) DebtSummary {
	var sum DebtSummary
	for i := range debts {
		d := &debts[i]
		if d.IsSettled {
			continue
		}
		sum.Pending++

		switch d.Type {
		case models.DebtIOwe:
			sum.TotalIOwe += d.Remaining()
		case models.DebtTheyOweMe:
			sum.TotalOwedToMe += d.Remaining()
		}

		if d.DueDate == "" {
			continue
		}
		due, err := time.Parse(dateLayout, d.DueDate)
		if err == nil && due.Before(now) {
			sum.Overdue++
		}
	}
	return sum
}

// GroupOverview aggregates the caller's position across all their groups.
type GroupOverview struct {
	Groups     int     `json:"groups"`
	TotalSpent float64 `json:"totalSpent"`
	YouOwe     float64 `json:"youOwe"`
	YouAreOwed float64 `json:"youAreOwed"`
	NetBalance float64 `json:"netBalance"`
}

// SummarizeGroups folds the caller's cached balance in each group into an
// overall owe / owed split, plus total group spend.
func SummarizeGroups(groups []models.Group, callerKey string) GroupOverview {
	overview := GroupOverview{Groups: len(groups)}
	for i := range groups {
		g := &groups[i]
		for j := range g.Expenses {
			overview.TotalSpent += g.Expenses[j].Amount
		}
		m := g.FindMember(callerKey)
		if m == nil {
			continue
		}
		overview.NetBalance += m.Balance
		if m.Balance < 0 {
			overview.YouOwe += -m.Balance
		} else {
			overview.YouAreOwed += m.Balance
		}
	}
	return overview
}
