package ledger

import (
	"math"
	"sort"

	"github.com/jsantoro/mealbank/internal/model"
)

// RecomputeAttribution redistributes the day's bank coverage across meals in
// chronological eating order. bankAvailable is the balance spendable for this
// day, with any coverage previously attributed to these meals already
// refunded by the caller.
//
// Attribution is not commutative with edit order: deleting an early meal can
// free capacity for a later one, so every same-day mutation reruns this over
// the full meal list. Each meal is charged only for the overshoot it alone
// pushed past the goal — max(0, cumulative - max(goal, previousTotal)) —
// never for overshoot already settled by earlier meals.
//
// Returns the rewritten meals (sorted by eaten-at) and the total drawn from
// the bank. Σ covered never exceeds bankAvailable.
func RecomputeAttribution(meals []model.Meal, goal, bankAvailable float64) ([]model.Meal, float64) {
	out := make([]model.Meal, len(meals))
	copy(out, meals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EatenAt.Before(out[j].EatenAt)
	})

	var cumulative, bankUsed float64
	for i := range out {
		previousTotal := cumulative
		cumulative += out[i].Calories

		out[i].CoveredByBank = 0
		if cumulative <= goal {
			continue
		}

		overshoot := math.Max(0, cumulative-math.Max(goal, previousTotal))
		fromBank := math.Min(overshoot, bankAvailable-bankUsed)
		if fromBank > 0 {
			out[i].CoveredByBank = fromBank
			bankUsed += fromBank
		}
	}

	return out, bankUsed
}

// coveredTotal sums the bank coverage currently attributed across meals.
// This is the refund owed to the bank before attribution is redone.
func coveredTotal(meals []model.Meal) float64 {
	var total float64
	for _, m := range meals {
		total += m.CoveredByBank
	}
	return total
}

// diffMeals returns the meals in after whose attribution or macros differ
// from their counterpart in before, plus any meals with no counterpart.
// Only these need to be written back.
func diffMeals(before, after []model.Meal) []model.Meal {
	prev := make(map[string]model.Meal, len(before))
	for _, m := range before {
		prev[m.ID] = m
	}

	var changed []model.Meal
	for _, m := range after {
		old, ok := prev[m.ID]
		if !ok || old != m {
			changed = append(changed, m)
		}
	}
	return changed
}
