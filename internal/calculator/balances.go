package calculator

import (
	"math"

	"github.com/mmynk/hisaab/internal/models"
)

// ApplyExpense folds one expense into the members' cached balances and
// returns the updated member list. Each member's balance moves by
// paid - owed, where paid is the full expense amount for the payer (0 for
// everyone else) and owed is that member's split (0 if absent). The deltas
// across all members sum to zero modulo float epsilon.
//
// The fold is applied exactly once per expense, at creation time. It never
// errors: validation (payer membership, split coverage) happens before the
// expense is built.
func ApplyExpense(members []models.Member, exp models.Expense) []models.Member {
	owedBy := make(map[string]float64, len(exp.Splits))
	for _, s := range exp.Splits {
		owedBy[s.MemberID] = s.Amount
	}

	updated := make([]models.Member, len(members))
	for i, m := range members {
		var paid float64
		if m.Key() == exp.PaidBy {
			paid = exp.Amount
		}
		m.Balance += paid - owedBy[m.Key()]
		updated[i] = m
	}
	return updated
}

// Rebuild recomputes every balance from zero by folding the full expense
// log. Member.Balance is only a cache; this is the authoritative
// computation, used to audit the cached values.
func Rebuild(members []models.Member, expenses []models.Expense) []models.Member {
	rebuilt := make([]models.Member, len(members))
	for i, m := range members {
		m.Balance = 0
		rebuilt[i] = m
	}
	for _, exp := range expenses {
		rebuilt = ApplyExpense(rebuilt, exp)
	}
	return rebuilt
}

// MaxDrift returns the largest absolute difference between cached and
// rebuilt balances, matched by member position.
func MaxDrift(cached, rebuilt []models.Member) float64 {
	var max float64
	for i := range cached {
		if i >= len(rebuilt) {
			break
		}
		if d := math.Abs(cached[i].Balance - rebuilt[i].Balance); d > max {
			max = d
		}
	}
	return max
}
