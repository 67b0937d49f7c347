package core

import (
	"fmt"
	"time"
)

// MonthKey returns the YYYY-MM bucket key of t in its own location.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseMonthKey validates a YYYY-MM key and returns the first instant of that
// month in loc.
func ParseMonthKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01", key, loc)
	if err != nil || len(key) != 7 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonthKey, key)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Sunday midnight starting the week that contains t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// MonthRange returns the calendar month containing t.
func MonthRange(t time.Time) Range {
	start := StartOfMonth(t)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// PeriodRange returns the current window of p relative to now: the week
// starting on Sunday, the calendar month or the calendar year.
func PeriodRange(p Period, now time.Time) (Range, error) {
	switch p {
	case Weekly:
		start := StartOfWeek(now)
		return Range{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case Monthly:
		return MonthRange(now), nil
	case Yearly:
		start := StartOfYear(now)
		return Range{Start: start, End: start.AddDate(1, 0, 0)}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
}

// Advance moves t forward by one step of p. Month and year steps clamp to
// the last day of the target month, so Jan 31 advances to Feb 28 or 29.
func Advance(t time.Time, p Period) (time.Time, error) {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7), nil
	case Monthly:
		return addMonths(t, 1), nil
	case Yearly:
		return addMonths(t, 12), nil
	}
	return t, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	da := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
