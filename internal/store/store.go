// Package store provides the ledger storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/jsantoro/mealbank/internal/model"
)

// WriteOpKind identifies the kind of operation inside a batch.
type WriteOpKind string

const (
	OpPutMeal        WriteOpKind = "put_meal"
	OpDeleteMeal     WriteOpKind = "delete_meal"
	OpPutSummary     WriteOpKind = "put_summary"
	OpPatchAggregate WriteOpKind = "patch_aggregate"
)

// WriteOp is one operation in an atomic batch. Exactly one payload field is
// set, matching Kind.
type WriteOp struct {
	Kind      WriteOpKind
	Meal      *model.Meal
	MealID    string
	Summary   *model.DaySummary
	Aggregate *AggregatePatch
}

// PutMeal builds a meal upsert op.
func PutMeal(m model.Meal) WriteOp {
	return WriteOp{Kind: OpPutMeal, Meal: &m}
}

// DeleteMeal builds a meal delete op.
func DeleteMeal(id string) WriteOp {
	return WriteOp{Kind: OpDeleteMeal, MealID: id}
}

// PutSummary builds a day-summary upsert op.
func PutSummary(s model.DaySummary) WriteOp {
	return WriteOp{Kind: OpPutSummary, Summary: &s}
}

// PatchAggregate builds a user-aggregate merge-patch op.
func PatchAggregate(p AggregatePatch) WriteOp {
	return WriteOp{Kind: OpPatchAggregate, Aggregate: &p}
}

// AggregatePatch is a merge-patch on the user's streak/bank/goal document.
// Nil fields are left untouched.
type AggregatePatch struct {
	CurrentStreak   *int
	HighestStreak   *int
	LastDateChecked *string
	BankWeekID      *string
	BankCalories    *float64
	BankStart       *string
	BankEnd         *string
	Goals           *model.Goals
	GoalType        *model.GoalType
}

// Store defines the ledger storage interface consumed by the engine.
type Store interface {
	// MealsForDay returns every meal logged for the given calendar day,
	// ordered by eaten-at ascending.
	MealsForDay(ctx context.Context, userID, dateKey string) ([]model.Meal, error)

	// WaterForDay returns the millilitres of water logged for the day
	// (0 when none).
	WaterForDay(ctx context.Context, userID, dateKey string) (float64, error)

	// DaySummary returns the finalized summary for a day, or nil when the
	// day has not been evaluated.
	DaySummary(ctx context.Context, userID, dateKey string) (*model.DaySummary, error)

	// Summaries lists finalized day summaries, newest first.
	Summaries(ctx context.Context, userID string, limit int) ([]model.DaySummary, error)

	// BatchWrite applies all operations in one atomic commit.
	BatchWrite(ctx context.Context, userID string, ops []WriteOp) error

	// UserAggregate returns the user's streak/bank/goal document, or nil for
	// a user with no state yet.
	UserAggregate(ctx context.Context, userID string) (*model.UserAggregate, error)

	// UpdateUserAggregate merge-patches the user's aggregate document,
	// creating it when missing.
	UpdateUserAggregate(ctx context.Context, userID string, p AggregatePatch) error

	// AddWater adds millilitres to the day's water total and returns the new
	// total.
	AddWater(ctx context.Context, userID, dateKey string, ml float64) (float64, error)

	// LogWeight records a body-weight measurement. Returns the stored entry.
	LogWeight(ctx context.Context, userID string, weightKG float64, notes string) (*model.WeightEntry, error)

	// Weights lists weight entries, newest first.
	Weights(ctx context.Context, userID string, limit int) ([]model.WeightEntry, error)

	// Close closes the store.
	Close() error
}
