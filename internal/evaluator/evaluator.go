// Package evaluator scores one finished calendar day against the user's
// goals. Evaluation is deterministic and side-effect free; everything the
// verdict depends on arrives through Input.
package evaluator

import (
	"math"

	"github.com/jsantoro/mealbank/internal/model"
)

const (
	// MinSafeFraction and MinSafeFloorCalories bound the minimum intake a
	// successful day requires. A day below max(goal*fraction, floor) never
	// counts, so the streak cannot reward undereating.
	MinSafeFraction      = 0.5
	MinSafeFloorCalories = 1200

	// MaintainBand is the tolerated deviation around the goal for the
	// maintain goal type.
	MaintainBand = 0.10
)

// Input carries everything needed to score one day.
type Input struct {
	Meals         []model.Meal
	WaterML       float64
	Goals         model.Goals
	GoalType      model.GoalType
	BankAvailable float64
}

// Result is the verdict for one day.
type Result struct {
	GoalMet           bool
	ProteinGoalMet    bool
	WaterGoalMet      bool
	Banked            float64
	ConsumedCalories  float64
	ConsumedProteinG  float64
	ConsumedCarbsG    float64
	ConsumedFatG      float64
	CoveredByBank     float64
	EffectiveCalories float64
}

// MinSafeCalories returns the minimum intake below which a day cannot
// succeed for the given calorie goal.
func MinSafeCalories(goal float64) float64 {
	return math.Max(goal*MinSafeFraction, MinSafeFloorCalories)
}

// Evaluate scores one day. Calories covered by the bank are excluded from
// the success judgment: spending the bank is a deliberate accommodation,
// not a failure. Surplus is banked only on a successful day that touched no
// bank and stayed at or under the goal.
func Evaluate(in Input) Result {
	var r Result
	for _, m := range in.Meals {
		r.ConsumedCalories += m.Calories
		r.ConsumedProteinG += m.ProteinG
		r.ConsumedCarbsG += m.CarbsG
		r.ConsumedFatG += m.FatG
		r.CoveredByBank += m.CoveredByBank
	}
	r.EffectiveCalories = r.ConsumedCalories - r.CoveredByBank

	r.ProteinGoalMet = in.Goals.ProteinG > 0 && r.ConsumedProteinG >= in.Goals.ProteinG
	r.WaterGoalMet = in.Goals.WaterML > 0 && in.WaterML >= in.Goals.WaterML

	// A day with no logged meals is never successful, regardless of goal type.
	if len(in.Meals) == 0 {
		return r
	}
	if r.ConsumedCalories < MinSafeCalories(in.Goals.Calories) {
		return r
	}

	goal := in.Goals.Calories
	switch in.GoalType {
	case model.GoalLoseFat:
		r.GoalMet = r.EffectiveCalories <= goal
	case model.GoalGainMuscle:
		r.GoalMet = r.EffectiveCalories >= goal
	default: // maintain
		r.GoalMet = math.Abs(r.EffectiveCalories-goal) <= goal*MaintainBand
	}

	if r.GoalMet && r.CoveredByBank == 0 && r.ConsumedCalories <= goal {
		if surplus := goal - r.ConsumedCalories; surplus > 0 {
			r.Banked = surplus
		}
	}

	return r
}
