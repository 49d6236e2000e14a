package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jsantoro/mealbank/internal/model"
	"github.com/jsantoro/mealbank/internal/store"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore is an in-memory Store with failure injection for engine and
// reconciler tests.
type fakeStore struct {
	meals     map[string]model.Meal       // meal id -> meal
	water     map[string]float64          // date key -> ml
	summaries map[string]model.DaySummary // date key -> summary
	agg       *model.UserAggregate

	failBatch       bool
	failSummaryOn   string // date key that fails DaySummary reads
	failMealsOn     string // date key that fails MealsForDay reads
	batchesApplied  int
	aggregateWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meals:     make(map[string]model.Meal),
		water:     make(map[string]float64),
		summaries: make(map[string]model.DaySummary),
	}
}

func (f *fakeStore) MealsForDay(_ context.Context, _, dateKey string) ([]model.Meal, error) {
	if dateKey == f.failMealsOn {
		return nil, errStoreDown
	}
	var out []model.Meal
	for _, m := range f.meals {
		if m.DateKey == dateKey {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EatenAt.Before(out[j].EatenAt) })
	return out, nil
}

func (f *fakeStore) WaterForDay(_ context.Context, _, dateKey string) (float64, error) {
	return f.water[dateKey], nil
}

func (f *fakeStore) DaySummary(_ context.Context, _, dateKey string) (*model.DaySummary, error) {
	if dateKey == f.failSummaryOn {
		return nil, errStoreDown
	}
	if s, ok := f.summaries[dateKey]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) Summaries(_ context.Context, _ string, limit int) ([]model.DaySummary, error) {
	var out []model.DaySummary
	for _, s := range f.summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey > out[j].DateKey })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) BatchWrite(_ context.Context, _ string, ops []store.WriteOp) error {
	if f.failBatch {
		return errStoreDown
	}
	for _, op := range ops {
		switch op.Kind {
		case store.OpPutMeal:
			f.meals[op.Meal.ID] = *op.Meal
		case store.OpDeleteMeal:
			delete(f.meals, op.MealID)
		case store.OpPutSummary:
			f.summaries[op.Summary.DateKey] = *op.Summary
		case store.OpPatchAggregate:
			f.applyPatch(*op.Aggregate)
		default:
			return fmt.Errorf("unknown op %q", op.Kind)
		}
	}
	f.batchesApplied++
	return nil
}

func (f *fakeStore) applyPatch(p store.AggregatePatch) {
	if f.agg == nil {
		f.agg = &model.UserAggregate{}
	}
	if p.CurrentStreak != nil {
		f.agg.Streak.Current = *p.CurrentStreak
	}
	if p.HighestStreak != nil {
		f.agg.Streak.Highest = *p.HighestStreak
	}
	if p.LastDateChecked != nil {
		f.agg.Streak.LastDateChecked = *p.LastDateChecked
	}
	if p.BankWeekID != nil {
		f.agg.Bank.WeekID = *p.BankWeekID
	}
	if p.BankCalories != nil {
		f.agg.Bank.Calories = *p.BankCalories
	}
	if p.BankStart != nil {
		f.agg.Bank.StartDate = *p.BankStart
	}
	if p.BankEnd != nil {
		f.agg.Bank.EndDate = *p.BankEnd
	}
	if p.Goals != nil {
		f.agg.Goals = *p.Goals
	}
	if p.GoalType != nil {
		f.agg.GoalType = *p.GoalType
	}
}

func (f *fakeStore) UserAggregate(_ context.Context, _ string) (*model.UserAggregate, error) {
	if f.agg == nil {
		return nil, nil
	}
	cp := *f.agg
	return &cp, nil
}

func (f *fakeStore) UpdateUserAggregate(_ context.Context, _ string, p store.AggregatePatch) error {
	if f.failBatch {
		return errStoreDown
	}
	f.applyPatch(p)
	f.aggregateWrites++
	return nil
}

func (f *fakeStore) AddWater(_ context.Context, _, dateKey string, ml float64) (float64, error) {
	f.water[dateKey] += ml
	return f.water[dateKey], nil
}

func (f *fakeStore) LogWeight(_ context.Context, _ string, kg float64, notes string) (*model.WeightEntry, error) {
	return &model.WeightEntry{ID: "w1", WeightKG: kg, Notes: notes}, nil
}

func (f *fakeStore) Weights(_ context.Context, _ string, _ int) ([]model.WeightEntry, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

var _ store.Store = (*fakeStore)(nil)
