package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsantoro/mealbank/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBatchWriteMealsForDay(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lunch := model.Meal{
		Name: "lunch", DateKey: "2026-08-24",
		EatenAt:  time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Calories: 600, ProteinG: 30,
	}
	breakfast := model.Meal{
		Name: "breakfast", DateKey: "2026-08-24",
		EatenAt:  time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC),
		Calories: 400,
	}
	if err := s.BatchWrite(ctx, "u1", []WriteOp{PutMeal(lunch), PutMeal(breakfast)}); err != nil {
		t.Fatalf("batch write: %v", err)
	}

	meals, err := s.MealsForDay(ctx, "u1", "2026-08-24")
	if err != nil {
		t.Fatalf("meals for day: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(meals))
	}
	// Ordered by eaten-at, not insertion
	if meals[0].Name != "breakfast" || meals[1].Name != "lunch" {
		t.Errorf("expected chronological order, got %s then %s", meals[0].Name, meals[1].Name)
	}
	if meals[0].ID == "" {
		t.Error("expected store-assigned ID")
	}

	// Other users and other days are not visible
	meals, _ = s.MealsForDay(ctx, "u2", "2026-08-24")
	if len(meals) != 0 {
		t.Errorf("expected no meals for other user, got %d", len(meals))
	}
}

func TestBatchWriteUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m := model.Meal{Name: "snack", DateKey: "2026-08-24", EatenAt: time.Now(), Calories: 200}
	if err := s.BatchWrite(ctx, "u1", []WriteOp{PutMeal(m)}); err != nil {
		t.Fatalf("batch write: %v", err)
	}
	meals, _ := s.MealsForDay(ctx, "u1", "2026-08-24")
	if len(meals) != 1 {
		t.Fatalf("expected 1 meal, got %d", len(meals))
	}

	// Update in place keeps the ID
	edited := meals[0]
	edited.Calories = 250
	edited.CoveredByBank = 50
	if err := s.BatchWrite(ctx, "u1", []WriteOp{PutMeal(edited)}); err != nil {
		t.Fatalf("batch write edit: %v", err)
	}
	meals, _ = s.MealsForDay(ctx, "u1", "2026-08-24")
	if len(meals) != 1 || meals[0].Calories != 250 || meals[0].CoveredByBank != 50 {
		t.Fatalf("expected edited meal, got %+v", meals)
	}

	if err := s.BatchWrite(ctx, "u1", []WriteOp{DeleteMeal(meals[0].ID)}); err != nil {
		t.Fatalf("batch write delete: %v", err)
	}
	meals, _ = s.MealsForDay(ctx, "u1", "2026-08-24")
	if len(meals) != 0 {
		t.Errorf("expected no meals after delete, got %d", len(meals))
	}
}

func TestBatchWriteAtomicOnBadOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	good := model.Meal{Name: "dinner", DateKey: "2026-08-24", EatenAt: time.Now(), Calories: 700}
	err := s.BatchWrite(ctx, "u1", []WriteOp{PutMeal(good), {Kind: "bogus"}})
	if err == nil {
		t.Fatal("expected error for unknown op kind")
	}

	meals, _ := s.MealsForDay(ctx, "u1", "2026-08-24")
	if len(meals) != 0 {
		t.Errorf("expected rollback of whole batch, got %d meals", len(meals))
	}
}

func TestWater(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ml, err := s.WaterForDay(ctx, "u1", "2026-08-24")
	if err != nil || ml != 0 {
		t.Fatalf("expected 0 ml for fresh day, got %v ml, err %v", ml, err)
	}

	if _, err := s.AddWater(ctx, "u1", "2026-08-24", 500); err != nil {
		t.Fatalf("add water: %v", err)
	}
	total, err := s.AddWater(ctx, "u1", "2026-08-24", 250)
	if err != nil {
		t.Fatalf("add water: %v", err)
	}
	if total != 750 {
		t.Errorf("expected 750 ml total, got %v", total)
	}
}

func TestDaySummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.DaySummary(ctx, "u1", "2026-08-23")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil summary for unevaluated day, got %+v", got)
	}

	waterMet := true
	sum := model.DaySummary{
		DateKey:          "2026-08-23",
		ConsumedCalories: 1900,
		GoalCalories:     2000,
		GoalType:         model.GoalLoseFat,
		GoalMet:          true,
		WaterGoalMet:     &waterMet,
		BankedCalories:   100,
		StreakForDay:     4,
	}
	if err := s.BatchWrite(ctx, "u1", []WriteOp{PutSummary(sum)}); err != nil {
		t.Fatalf("put summary: %v", err)
	}

	got, err = s.DaySummary(ctx, "u1", "2026-08-23")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got == nil || !got.GoalMet || got.BankedCalories != 100 || got.StreakForDay != 4 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if got.WaterGoalMet == nil || !*got.WaterGoalMet {
		t.Error("expected water goal met to round-trip")
	}

	// Legacy row with unknown water outcome stays nil
	legacy := model.DaySummary{DateKey: "2026-08-22", GoalType: model.GoalMaintain}
	s.BatchWrite(ctx, "u1", []WriteOp{PutSummary(legacy)})
	got, _ = s.DaySummary(ctx, "u1", "2026-08-22")
	if got.WaterGoalMet != nil {
		t.Error("expected nil water goal met on legacy row")
	}
}

func TestSummariesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, day := range []string{"2026-08-20", "2026-08-22", "2026-08-21"} {
		s.BatchWrite(ctx, "u1", []WriteOp{PutSummary(model.DaySummary{DateKey: day, GoalType: model.GoalMaintain})})
	}

	sums, err := s.Summaries(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(sums) != 2 || sums[0].DateKey != "2026-08-22" || sums[1].DateKey != "2026-08-21" {
		t.Fatalf("expected newest first with limit, got %+v", sums)
	}
}

func TestAggregatePatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	agg, err := s.UserAggregate(ctx, "u1")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg != nil {
		t.Fatalf("expected nil aggregate for new user, got %+v", agg)
	}

	streak := 3
	week := "2026-W35"
	bank := 150.0
	goals := model.Goals{Calories: 2000, ProteinG: 150, WaterML: 2000}
	gt := model.GoalLoseFat
	err = s.UpdateUserAggregate(ctx, "u1", AggregatePatch{
		CurrentStreak: &streak,
		BankWeekID:    &week,
		BankCalories:  &bank,
		Goals:         &goals,
		GoalType:      &gt,
	})
	if err != nil {
		t.Fatalf("update aggregate: %v", err)
	}

	// Partial patch leaves other fields untouched
	newBank := 0.0
	last := "2026-08-23"
	if err := s.UpdateUserAggregate(ctx, "u1", AggregatePatch{BankCalories: &newBank, LastDateChecked: &last}); err != nil {
		t.Fatalf("partial patch: %v", err)
	}

	agg, err = s.UserAggregate(ctx, "u1")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.Streak.Current != 3 {
		t.Errorf("expected streak 3 preserved, got %d", agg.Streak.Current)
	}
	if agg.Bank.Calories != 0 || agg.Bank.WeekID != "2026-W35" {
		t.Errorf("unexpected bank %+v", agg.Bank)
	}
	if agg.Streak.LastDateChecked != "2026-08-23" {
		t.Errorf("expected last checked 2026-08-23, got %s", agg.Streak.LastDateChecked)
	}
	if agg.Goals.Calories != 2000 || agg.GoalType != model.GoalLoseFat {
		t.Errorf("unexpected goals %+v type %s", agg.Goals, agg.GoalType)
	}
}

func TestWeights(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.LogWeight(ctx, "u1", 82.4, "morning")
	if err != nil {
		t.Fatalf("log weight: %v", err)
	}
	if e.ID == "" {
		t.Error("expected assigned ID")
	}

	entries, err := s.Weights(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	if len(entries) != 1 || entries[0].WeightKG != 82.4 || entries[0].Notes != "morning" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
