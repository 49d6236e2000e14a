// Package model defines the core ledger data types.
package model

import "time"

// GoalType determines how a day's calorie consumption is judged against the goal.
type GoalType string

const (
	GoalLoseFat    GoalType = "lose_fat"
	GoalMaintain   GoalType = "maintain"
	GoalGainMuscle GoalType = "gain_muscle"
)

// ValidGoalTypes are the allowed goal types.
var ValidGoalTypes = map[GoalType]bool{
	GoalLoseFat:    true,
	GoalMaintain:   true,
	GoalGainMuscle: true,
}

// Meal represents one logged eaten item or portion.
//
// CoveredByBank is the slice of this meal's calories paid for by the weekly
// bank. It is recomputed for every meal of a day whenever any meal of that
// day changes, because attribution follows chronological eating order, not
// insertion order.
type Meal struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	DateKey       string    `json:"date_key"` // "YYYY-MM-DD" local time
	EatenAt       time.Time `json:"eaten_at"`
	Calories      float64   `json:"calories"`
	ProteinG      float64   `json:"protein_g"`
	CarbsG        float64   `json:"carbs_g"`
	FatG          float64   `json:"fat_g"`
	CoveredByBank float64   `json:"covered_by_bank,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// WeeklyBank accumulates unused calorie allowance within one ISO week.
// The balance never carries across a week boundary.
type WeeklyBank struct {
	WeekID    string  `json:"week_id"` // e.g. "2026-W35"
	Calories  float64 `json:"calories"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// DaySummary is the finalized record for a calendar day that is no longer
// "today". Once BinaryOrigin is set the outcome is authoritative and skipped
// by automatic recomputation.
type DaySummary struct {
	DateKey          string   `json:"date_key"`
	ConsumedCalories float64  `json:"consumed_calories"`
	ConsumedProteinG float64  `json:"consumed_protein_g"`
	ConsumedCarbsG   float64  `json:"consumed_carbs_g"`
	ConsumedFatG     float64  `json:"consumed_fat_g"`
	GoalCalories     float64  `json:"goal_calories"`
	GoalProteinG     float64  `json:"goal_protein_g"`
	GoalCarbsG       float64  `json:"goal_carbs_g"`
	GoalFatG         float64  `json:"goal_fat_g"`
	GoalType         GoalType `json:"goal_type"`
	GoalMet          bool     `json:"goal_met"`
	ProteinGoalMet   bool     `json:"protein_goal_met"`
	WaterGoalMet     *bool    `json:"water_goal_met,omitempty"` // nil on legacy rows until healed
	BankedCalories   float64  `json:"banked_calories"`
	StreakForDay     int      `json:"streak_for_day"`
	BinaryOrigin     bool     `json:"binary_origin"`
}

// StreakState tracks consecutive successful days.
// LastDateChecked is the most recent date already finalized by reconciliation;
// empty means no day has ever been evaluated.
type StreakState struct {
	Current         int    `json:"current"`
	Highest         int    `json:"highest"`
	LastDateChecked string `json:"last_date_checked,omitempty"`
}

// Goals holds the daily nutritional targets in effect.
type Goals struct {
	Calories float64 `json:"calories" yaml:"calories"`
	ProteinG float64 `json:"protein_g" yaml:"protein_g"`
	CarbsG   float64 `json:"carbs_g" yaml:"carbs_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g"`
	WaterML  float64 `json:"water_ml" yaml:"water_ml"`
}

// UserAggregate is the per-user streak/bank/goal document. The Store is the
// owner of record; in-memory copies are caches that reconcile toward it.
type UserAggregate struct {
	UserID   string      `json:"user_id"`
	Streak   StreakState `json:"streak"`
	Bank     WeeklyBank  `json:"bank"`
	Goals    Goals       `json:"goals"`
	GoalType GoalType    `json:"goal_type"`
}

// WeightEntry is one body-weight measurement.
type WeightEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MeasuredAt time.Time `json:"measured_at"`
	WeightKG   float64   `json:"weight_kg"`
	Notes      string    `json:"notes,omitempty"`
}

// NutritionalInfo is the structured result of food analysis (text or image).
type NutritionalInfo struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Clamp floors negative nutritional values to zero. Inputs are normalized
// rather than rejected to keep the logging flow frictionless.
func (n NutritionalInfo) Clamp() NutritionalInfo {
	if n.Calories < 0 {
		n.Calories = 0
	}
	if n.ProteinG < 0 {
		n.ProteinG = 0
	}
	if n.CarbsG < 0 {
		n.CarbsG = 0
	}
	if n.FatG < 0 {
		n.FatG = 0
	}
	return n
}
