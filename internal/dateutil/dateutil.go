// Package dateutil provides calendar-day keys and ISO week identifiers used
// by the ledger. Days are keyed "YYYY-MM-DD" in local time; weeks run
// Monday through Sunday and are keyed by ISO week numbering.
package dateutil

import (
	"fmt"
	"time"
)

// DayKeyLayout is the calendar-day key format.
const DayKeyLayout = "2006-01-02"

// DayKey returns the calendar-day key for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a "YYYY-MM-DD" key in local time.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", key)
	}
	return t, nil
}

// WeekID returns the ISO week identifier for t, e.g. "2026-W35".
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekBounds returns the Monday and Sunday day keys of t's ISO week.
func WeekBounds(t time.Time) (start, end string) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := t.AddDate(0, 0, 1-weekday)
	sunday := monday.AddDate(0, 0, 6)
	return DayKey(monday), DayKey(sunday)
}

// PrevDay returns the day key immediately before key.
func PrevDay(key string) (string, error) {
	t, err := ParseDayKey(key)
	if err != nil {
		return "", err
	}
	return DayKey(t.AddDate(0, 0, -1)), nil
}

// DaysBetween returns every day key strictly between after and before, in
// chronological order. Returns nil when the range is empty or inverted.
func DaysBetween(after, before string) ([]string, error) {
	from, err := ParseDayKey(after)
	if err != nil {
		return nil, err
	}
	to, err := ParseDayKey(before)
	if err != nil {
		return nil, err
	}

	var days []string
	for d := from.AddDate(0, 0, 1); d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, DayKey(d))
	}
	return days, nil
}
