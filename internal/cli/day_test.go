package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/jsantoro/mealbank/internal/ledger"
	"github.com/jsantoro/mealbank/internal/model"
)

func TestRenderDay(t *testing.T) {
	st := &ledger.DayStatus{
		DateKey:  "2026-08-28",
		GoalType: model.GoalLoseFat,
		Meals: []model.Meal{
			{
				Name:     "oatmeal",
				EatenAt:  time.Date(2026, 8, 28, 8, 30, 0, 0, time.Local),
				Calories: 420,
			},
			{
				Name:          "chicken burrito",
				EatenAt:       time.Date(2026, 8, 28, 13, 5, 0, 0, time.Local),
				Calories:      980,
				CoveredByBank: 150,
			},
		},
		WaterML:   1500,
		Consumed:  model.Goals{Calories: 1400, ProteinG: 80},
		Goals:     model.Goals{Calories: 2000, ProteinG: 150, WaterML: 2000},
		Remaining: model.Goals{Calories: 600, ProteinG: 70},
		Bank:      model.WeeklyBank{WeekID: "2026-W35", Calories: 250},
		Streak:    3,
		OnTrack:   true,
	}

	var buf bytes.Buffer
	renderDay(&buf, st)

	g := goldie.New(t)
	g.Assert(t, "day_render", buf.Bytes())
}

func TestRenderDayEmpty(t *testing.T) {
	st := &ledger.DayStatus{
		DateKey:   "2026-08-28",
		GoalType:  model.GoalMaintain,
		Goals:     model.Goals{Calories: 2000, ProteinG: 150, WaterML: 2000},
		Remaining: model.Goals{Calories: 2000, ProteinG: 150},
		Bank:      model.WeeklyBank{WeekID: "2026-W35"},
		OnTrack:   true,
	}

	var buf bytes.Buffer
	renderDay(&buf, st)

	g := goldie.New(t)
	g.Assert(t, "day_render_empty", buf.Bytes())
}
