package dateutil

import (
	"testing"
	"time"
)

func TestWeekIDMondayBoundary(t *testing.T) {
	// 2026-08-23 is a Sunday, 2026-08-24 a Monday.
	sunday := time.Date(2026, 8, 23, 12, 0, 0, 0, time.Local)
	monday := time.Date(2026, 8, 24, 12, 0, 0, 0, time.Local)

	if WeekID(sunday) == WeekID(monday) {
		t.Fatalf("expected different week ids across Sunday/Monday, got %s", WeekID(sunday))
	}
	if got := WeekID(monday); got != "2026-W35" {
		t.Errorf("expected 2026-W35, got %s", got)
	}
}

func TestWeekIDYearRollover(t *testing.T) {
	// 2026-01-01 is a Thursday, ISO week 1 of 2026.
	d := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	if got := WeekID(d); got != "2026-W01" {
		t.Errorf("expected 2026-W01, got %s", got)
	}
	// 2027-01-01 is a Friday, still ISO week 53 of 2026.
	d = time.Date(2027, 1, 1, 0, 0, 0, 0, time.Local)
	if got := WeekID(d); got != "2026-W53" {
		t.Errorf("expected 2026-W53, got %s", got)
	}
}

func TestWeekBounds(t *testing.T) {
	wednesday := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)
	start, end := WeekBounds(wednesday)
	if start != "2026-08-24" || end != "2026-08-30" {
		t.Errorf("expected 2026-08-24..2026-08-30, got %s..%s", start, end)
	}

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 8, 30, 9, 30, 0, 0, time.Local)
	start, end = WeekBounds(sunday)
	if start != "2026-08-24" || end != "2026-08-30" {
		t.Errorf("expected 2026-08-24..2026-08-30, got %s..%s", start, end)
	}
}

func TestDaysBetween(t *testing.T) {
	days, err := DaysBetween("2026-08-20", "2026-08-24")
	if err != nil {
		t.Fatalf("days between: %v", err)
	}
	want := []string{"2026-08-21", "2026-08-22", "2026-08-23"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d: %v", len(want), len(days), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: expected %s, got %s", i, want[i], days[i])
		}
	}
}

func TestDaysBetweenEmpty(t *testing.T) {
	days, err := DaysBetween("2026-08-23", "2026-08-24")
	if err != nil {
		t.Fatalf("days between: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("expected no days strictly between adjacent dates, got %v", days)
	}

	days, _ = DaysBetween("2026-08-24", "2026-08-20")
	if len(days) != 0 {
		t.Errorf("expected no days for inverted range, got %v", days)
	}
}

func TestPrevDayAcrossMonth(t *testing.T) {
	got, err := PrevDay("2026-09-01")
	if err != nil {
		t.Fatalf("prev day: %v", err)
	}
	if got != "2026-08-31" {
		t.Errorf("expected 2026-08-31, got %s", got)
	}
}

func TestParseDayKeyInvalid(t *testing.T) {
	if _, err := ParseDayKey("08/24/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
