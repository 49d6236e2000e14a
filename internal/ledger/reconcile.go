package ledger

import (
	"context"

	"github.com/jsantoro/mealbank/internal/dateutil"
	"github.com/jsantoro/mealbank/internal/evaluator"
	"github.com/jsantoro/mealbank/internal/model"
	"github.com/jsantoro/mealbank/internal/notify"
	"github.com/jsantoro/mealbank/internal/store"
)

// maxBackwardWalk bounds the defensive streak recount.
const maxBackwardWalk = 366

// Reconciler replays every missed calendar day between the last finalized
// day and today, rebuilding streak and bank state and writing finalized
// summaries. It is safe to re-run: the last-checked marker only advances
// with successfully persisted days.
type Reconciler struct {
	engine *Engine
}

// NewReconciler wraps an already-loaded Engine.
func NewReconciler(e *Engine) *Reconciler {
	return &Reconciler{engine: e}
}

// Report summarizes one reconciliation run.
type Report struct {
	DaysProcessed int     `json:"days_processed"`
	Streak        int     `json:"streak"`
	HighestStreak int     `json:"highest_streak"`
	BankCalories  float64 `json:"bank_calories"`
	TotalBanked   float64 `json:"total_banked"`
	LastDayMet    bool    `json:"last_day_met"`
	HealedDays    int     `json:"healed_days"`
}

// Run brings streak and bank state current. Every day strictly between the
// last-checked date and today is evaluated in chronological order; days
// already finalized by hand (binary origin) are trusted as-is. A mid-range
// failure commits the days completed so far and returns a partial error, so
// the next run resumes where this one stopped.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	e := r.engine
	today := e.Today()
	last := e.agg.Streak.LastDateChecked

	// First-ever run: nothing behind us to replay, just plant the marker so
	// tomorrow's run evaluates today.
	if last == "" {
		prev, err := dateutil.PrevDay(today)
		if err != nil {
			return nil, validationErr("invalid current date: " + today)
		}
		if err := e.store.UpdateUserAggregate(ctx, e.userID, store.AggregatePatch{LastDateChecked: &prev}); err != nil {
			return nil, transientErr("initialize last-checked marker", err)
		}
		e.agg.Streak.LastDateChecked = prev
		return &Report{Streak: e.agg.Streak.Current, HighestStreak: e.agg.Streak.Highest, BankCalories: e.agg.Bank.Calories}, nil
	}

	missed, err := dateutil.DaysBetween(last, today)
	if err != nil {
		return nil, validationErr("invalid reconciliation range " + last + ".." + today)
	}

	// Re-derive the streak from persisted summaries instead of trusting the
	// cached counter.
	baseStreak, ops, healed, err := r.baseStreak(ctx, last)
	if err != nil {
		return nil, err
	}

	rep := &Report{HealedDays: healed}
	accStreak := baseStreak
	accHighest := e.agg.Streak.Highest
	accBank := e.agg.Bank.Calories
	if accStreak > accHighest {
		accHighest = accStreak
	}

	prevDay := last
	committedThrough := last

	commit := func() error {
		patch := store.AggregatePatch{
			CurrentStreak:   &accStreak,
			HighestStreak:   &accHighest,
			BankCalories:    &accBank,
			LastDateChecked: &committedThrough,
		}
		if err := e.store.BatchWrite(ctx, e.userID, append(ops, store.PatchAggregate(patch))); err != nil {
			return transientErr("persist reconciliation", err)
		}
		e.agg.Streak.Current = accStreak
		e.agg.Streak.Highest = accHighest
		e.agg.Streak.LastDateChecked = committedThrough
		e.agg.Bank.Calories = accBank
		rep.Streak = accStreak
		rep.HighestStreak = accHighest
		rep.BankCalories = accBank
		return nil
	}

	for _, day := range missed {
		goalMet, banked, err := r.replayDay(ctx, day, prevDay, &accBank, &ops)
		if err != nil {
			// Keep what we finished; the next run picks up from here.
			if committedThrough != last || len(ops) > 0 {
				if cerr := commit(); cerr != nil {
					return rep, cerr
				}
			}
			return rep, partialErr(day, err)
		}

		if goalMet {
			accStreak++
		} else {
			accStreak = 0
		}
		if accStreak > accHighest {
			accHighest = accStreak
		}
		accBank += banked
		rep.TotalBanked += banked
		rep.LastDayMet = goalMet
		rep.DaysProcessed++

		// Stamp the streak after this day onto its fresh summary.
		if n := len(ops); n > 0 && ops[n-1].Kind == store.OpPutSummary && ops[n-1].Summary.DateKey == day {
			ops[n-1].Summary.StreakForDay = accStreak
		}

		prevDay = day
		committedThrough = day
	}

	if err := commit(); err != nil {
		return rep, err
	}

	if rep.DaysProcessed > 0 {
		if rep.LastDayMet {
			notify.Successf(e.notify, "you hit your goal yesterday, streak is now %d", rep.Streak)
		}
		if rep.TotalBanked > 0 {
			notify.Infof(e.notify, "%.0f kcal added to your weekly bank", rep.TotalBanked)
		}
	}
	return rep, nil
}

// replayDay evaluates one missed day, resetting the running bank at week
// boundaries and trusting binary-origin summaries as-is. Freshly evaluated
// days append a summary op; its streak field is stamped by the caller.
func (r *Reconciler) replayDay(ctx context.Context, day, prevDay string, accBank *float64, ops *[]store.WriteOp) (goalMet bool, banked float64, err error) {
	e := r.engine

	dayT, err := dateutil.ParseDayKey(day)
	if err != nil {
		return false, 0, err
	}
	prevT, err := dateutil.ParseDayKey(prevDay)
	if err != nil {
		return false, 0, err
	}
	// The bank never crosses a week boundary.
	if dateutil.WeekID(dayT) != dateutil.WeekID(prevT) {
		*accBank = 0
	}

	existing, err := e.store.DaySummary(ctx, e.userID, day)
	if err != nil {
		return false, 0, err
	}
	if existing != nil && existing.BinaryOrigin {
		// Manually finalized outcome is authoritative; only its verdict
		// feeds the streak.
		return existing.GoalMet, 0, nil
	}

	meals, err := e.store.MealsForDay(ctx, e.userID, day)
	if err != nil {
		return false, 0, err
	}
	water, err := e.store.WaterForDay(ctx, e.userID, day)
	if err != nil {
		return false, 0, err
	}

	res := evaluator.Evaluate(evaluator.Input{
		Meals:         meals,
		WaterML:       water,
		Goals:         e.agg.Goals,
		GoalType:      e.agg.GoalType,
		BankAvailable: *accBank,
	})

	waterMet := res.WaterGoalMet
	*ops = append(*ops, store.PutSummary(model.DaySummary{
		DateKey:          day,
		ConsumedCalories: res.ConsumedCalories,
		ConsumedProteinG: res.ConsumedProteinG,
		ConsumedCarbsG:   res.ConsumedCarbsG,
		ConsumedFatG:     res.ConsumedFatG,
		GoalCalories:     e.agg.Goals.Calories,
		GoalProteinG:     e.agg.Goals.ProteinG,
		GoalCarbsG:       e.agg.Goals.CarbsG,
		GoalFatG:         e.agg.Goals.FatG,
		GoalType:         e.agg.GoalType,
		GoalMet:          res.GoalMet,
		ProteinGoalMet:   res.ProteinGoalMet,
		WaterGoalMet:     &waterMet,
		BankedCalories:   res.Banked,
	}))

	return res.GoalMet, res.Banked, nil
}

// baseStreak recounts consecutive successful days by walking summaries
// backward from the last-checked date. Legacy summaries missing the water
// verdict are healed along the way.
func (r *Reconciler) baseStreak(ctx context.Context, last string) (streak int, ops []store.WriteOp, healed int, err error) {
	e := r.engine
	day := last
	for i := 0; i < maxBackwardWalk; i++ {
		sum, err := e.store.DaySummary(ctx, e.userID, day)
		if err != nil {
			return 0, nil, 0, transientErr("recount streak", err)
		}
		if sum == nil || !sum.GoalMet {
			break
		}
		if sum.WaterGoalMet == nil {
			f := false
			sum.WaterGoalMet = &f
			ops = append(ops, store.PutSummary(*sum))
			healed++
		}
		streak++
		day, err = dateutil.PrevDay(day)
		if err != nil {
			return 0, nil, 0, validationErr("invalid summary date " + day)
		}
	}
	return streak, ops, healed, nil
}
