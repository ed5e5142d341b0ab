// Package calculator holds the pure ledger math: expense splitting, the
// balance fold, debt partial settlement, and report projections. Nothing in
// this package touches storage; bad input fails closed before any caller
// mutates state.
package calculator

import (
	"math"

	"github.com/mmynk/hisaab/internal/models"
)

// SplitTolerance is the allowed gap between a custom split total and the
// expense amount, in currency units.
const SplitTolerance = 0.01

// CalculateSplits produces one split per group member, payer included, such
// that the split amounts cover the expense.
//
//   - equal: each member owes amount / n. Plain float division; no remainder
//     redistribution, so the sum may differ from amount by machine epsilon.
//   - custom: owed amounts come from the custom map keyed by member key,
//     defaulting to 0 for unnamed members. The total must match the expense
//     amount within SplitTolerance.
func CalculateSplits(amount float64, members []models.Member, splitType models.SplitType, custom map[string]float64) ([]models.Split, error) {
	if amount <= 0 {
		return nil, models.ErrNonPositiveAmount
	}
	if len(members) == 0 {
		return nil, models.ErrEmptyGroup
	}

	splits := make([]models.Split, len(members))

	switch splitType {
	case models.SplitEqual:
		share := amount / float64(len(members))
		for i := range members {
			splits[i] = models.Split{MemberID: members[i].Key(), Amount: share}
		}

	case models.SplitCustom:
		var total float64
		for i := range members {
			owed := custom[members[i].Key()]
			if owed < 0 {
				return nil, models.ErrNegativeSplit
			}
			splits[i] = models.Split{MemberID: members[i].Key(), Amount: owed}
			total += owed
		}
		if math.Abs(total-amount) > SplitTolerance {
			return nil, models.ErrSplitMismatch
		}

	default:
		return nil, models.ErrUnknownSplitType
	}

	return splits, nil
}
