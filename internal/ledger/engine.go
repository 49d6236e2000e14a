// Package ledger owns the calorie-bank and streak bookkeeping: per-day bank
// attribution when meals change, and catch-up reconciliation when the user
// returns after missed days. The Store is the owner of record; the engine's
// in-memory state is a cache that reconciles toward it, optimistically
// updated and rolled back when a remote write fails.
package ledger

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jsantoro/mealbank/internal/dateutil"
	"github.com/jsantoro/mealbank/internal/evaluator"
	"github.com/jsantoro/mealbank/internal/model"
	"github.com/jsantoro/mealbank/internal/notify"
	"github.com/jsantoro/mealbank/internal/store"
)

// Engine mutates the current day's ledger. All operations are serialized
// within one session; concurrent sessions race last-writer-wins at the Store.
type Engine struct {
	store  store.Store
	notify notify.Notifier
	userID string
	now    func() time.Time
	newID  func() string

	agg   *model.UserAggregate
	meals []model.Meal // today's meals, eaten-at ascending
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow overrides the engine clock. Tests pin this to a fixed instant.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides local meal ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// New creates an Engine for one user. Call Load before any operation.
func New(s store.Store, n notify.Notifier, userID string, opts ...Option) *Engine {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	e := &Engine{
		store:  s,
		notify: n,
		userID: userID,
		now:    time.Now,
		newID: func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the engine's current calendar-day key.
func (e *Engine) Today() string {
	return dateutil.DayKey(e.now())
}

// Aggregate returns the cached user aggregate. Valid after Load.
func (e *Engine) Aggregate() model.UserAggregate {
	return *e.agg
}

// Meals returns the cached meals for today, eaten-at ascending.
func (e *Engine) Meals() []model.Meal {
	out := make([]model.Meal, len(e.meals))
	copy(out, e.meals)
	return out
}

// Load fetches the user aggregate and today's meals, rolling the weekly bank
// forward when the stored week identifier is stale.
func (e *Engine) Load(ctx context.Context) error {
	agg, err := e.store.UserAggregate(ctx, e.userID)
	if err != nil {
		return transientErr("load user state", err)
	}
	if agg == nil {
		return validationErr("no user state found, run setup first")
	}
	e.agg = agg

	if err := e.rollWeek(ctx); err != nil {
		return err
	}

	meals, err := e.store.MealsForDay(ctx, e.userID, e.Today())
	if err != nil {
		return transientErr("load today's meals", err)
	}
	e.meals = meals
	return nil
}

// rollWeek resets the bank when the calendar has moved into a new ISO week.
// The reset is persisted immediately so every session agrees on the balance.
func (e *Engine) rollWeek(ctx context.Context) error {
	now := e.now()
	week := dateutil.WeekID(now)
	if e.agg.Bank.WeekID == week {
		return nil
	}

	start, end := dateutil.WeekBounds(now)
	zero := 0.0
	patch := store.AggregatePatch{
		BankWeekID:   &week,
		BankCalories: &zero,
		BankStart:    &start,
		BankEnd:      &end,
	}
	if err := e.store.UpdateUserAggregate(ctx, e.userID, patch); err != nil {
		return transientErr("roll weekly bank", err)
	}
	e.agg.Bank = model.WeeklyBank{WeekID: week, StartDate: start, EndDate: end}
	return nil
}

// MealInput describes a meal to log or the new values for an edit.
type MealInput struct {
	Name string
	Info model.NutritionalInfo
	At   time.Time // zero means now
}

// LogMeal records a new meal for today and redistributes bank coverage
// across the whole day.
func (e *Engine) LogMeal(ctx context.Context, in MealInput) (*model.Meal, error) {
	if in.Name == "" {
		return nil, validationErr("meal name is required")
	}
	at := in.At
	if at.IsZero() {
		at = e.now()
	}
	if dateutil.DayKey(at) != e.Today() {
		return nil, validationErr("meals can only be logged for the current day")
	}

	info := in.Info.Clamp()
	m := model.Meal{
		ID:        e.newID(), // local ID, confirmed by the store on commit
		UserID:    e.userID,
		Name:      in.Name,
		DateKey:   e.Today(),
		EatenAt:   at,
		Calories:  info.Calories,
		ProteinG:  info.ProteinG,
		CarbsG:    info.CarbsG,
		FatG:      info.FatG,
		CreatedAt: e.now().UTC(),
	}

	if err := e.mutateDay(ctx, "log meal", append(e.Meals(), m), nil); err != nil {
		return nil, err
	}
	return e.findMeal(m.ID), nil
}

// EditMeal replaces a meal's macros (and optionally name/time) in place and
// redistributes bank coverage.
func (e *Engine) EditMeal(ctx context.Context, id string, in MealInput) (*model.Meal, error) {
	next := e.Meals()
	idx := -1
	for i := range next {
		if next[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, validationErr("meal not found: " + id)
	}

	info := in.Info.Clamp()
	next[idx].Calories = info.Calories
	next[idx].ProteinG = info.ProteinG
	next[idx].CarbsG = info.CarbsG
	next[idx].FatG = info.FatG
	if in.Name != "" {
		next[idx].Name = in.Name
	}
	if !in.At.IsZero() {
		if dateutil.DayKey(in.At) != e.Today() {
			return nil, validationErr("meal time must stay within the current day")
		}
		next[idx].EatenAt = in.At
	}

	if err := e.mutateDay(ctx, "edit meal", next, nil); err != nil {
		return nil, err
	}
	return e.findMeal(id), nil
}

// DeleteMeal removes a meal. Coverage it held returns to the bank, and the
// remaining meals are re-attributed.
func (e *Engine) DeleteMeal(ctx context.Context, id string) error {
	next := e.Meals()
	found := false
	for i := range next {
		if next[i].ID == id {
			next = append(next[:i], next[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return validationErr("meal not found: " + id)
	}
	return e.mutateDay(ctx, "delete meal", next, []string{id})
}

// mutateDay is the shared optimistic transaction: recompute attribution over
// the proposed meal list, apply the result locally, commit the diff plus the
// bank patch in one batch, and restore the snapshot if the commit fails.
func (e *Engine) mutateDay(ctx context.Context, action string, next []model.Meal, deletedIDs []string) error {
	// Refund everything currently attributed before attributing anew.
	refund := coveredTotal(e.meals)
	available := e.agg.Bank.Calories + refund

	attributed, used := RecomputeAttribution(next, e.agg.Goals.Calories, available)
	newBalance := available - used

	var ops []store.WriteOp
	for _, m := range diffMeals(e.meals, attributed) {
		ops = append(ops, store.PutMeal(m))
	}
	for _, id := range deletedIDs {
		ops = append(ops, store.DeleteMeal(id))
	}
	if newBalance != e.agg.Bank.Calories {
		ops = append(ops, store.PatchAggregate(store.AggregatePatch{BankCalories: &newBalance}))
	}

	// Snapshot, apply locally, commit, roll back on failure.
	prevMeals, prevBank := e.meals, e.agg.Bank.Calories
	e.meals = attributed
	e.agg.Bank.Calories = newBalance

	if err := e.store.BatchWrite(ctx, e.userID, ops); err != nil {
		e.meals = prevMeals
		e.agg.Bank.Calories = prevBank
		notify.Errorf(e.notify, "could not %s, changes were not saved", action)
		return transientErr(action, err)
	}
	return nil
}

func (e *Engine) findMeal(id string) *model.Meal {
	for i := range e.meals {
		if e.meals[i].ID == id {
			m := e.meals[i]
			return &m
		}
	}
	return nil
}

// DayStatus is the provisional view of the current day.
type DayStatus struct {
	DateKey   string           `json:"date_key"`
	Meals     []model.Meal     `json:"meals"`
	WaterML   float64          `json:"water_ml"`
	Consumed  model.Goals      `json:"consumed"`
	Goals     model.Goals      `json:"goals"`
	Remaining model.Goals      `json:"remaining"`
	GoalType  model.GoalType   `json:"goal_type"`
	Bank      model.WeeklyBank `json:"bank"`
	Streak    int              `json:"streak"`
	OnTrack   bool             `json:"on_track"`
}

// Status evaluates today so far. Today is provisional: nothing here is
// persisted, the day is only finalized by reconciliation once it has passed.
func (e *Engine) Status(ctx context.Context) (*DayStatus, error) {
	water, err := e.store.WaterForDay(ctx, e.userID, e.Today())
	if err != nil {
		return nil, transientErr("load water", err)
	}

	res := evaluator.Evaluate(evaluator.Input{
		Meals:         e.meals,
		WaterML:       water,
		Goals:         e.agg.Goals,
		GoalType:      e.agg.GoalType,
		BankAvailable: e.agg.Bank.Calories,
	})

	st := &DayStatus{
		DateKey: e.Today(),
		Meals:   e.Meals(),
		WaterML: water,
		Consumed: model.Goals{
			Calories: res.ConsumedCalories,
			ProteinG: res.ConsumedProteinG,
			CarbsG:   res.ConsumedCarbsG,
			FatG:     res.ConsumedFatG,
			WaterML:  water,
		},
		Goals:    e.agg.Goals,
		GoalType: e.agg.GoalType,
		Bank:     e.agg.Bank,
		Streak:   e.agg.Streak.Current,
		OnTrack:  res.GoalMet,
	}
	st.Remaining = model.Goals{
		Calories: e.agg.Goals.Calories - res.EffectiveCalories,
		ProteinG: e.agg.Goals.ProteinG - res.ConsumedProteinG,
		CarbsG:   e.agg.Goals.CarbsG - res.ConsumedCarbsG,
		FatG:     e.agg.Goals.FatG - res.ConsumedFatG,
		WaterML:  e.agg.Goals.WaterML - water,
	}
	return st, nil
}
