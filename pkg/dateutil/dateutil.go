package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the date layout used for every cross-component date key
const ISOLayout = "2006-01-02"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// Noon pins the date to 12:00:00 UTC on its own calendar day.
// Lunar conversion and solar-term lookups must only ever see noon-pinned dates:
// midnight values can round across a day or term boundary.
func Noon(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
}

// Date builds a noon-pinned date from its parts
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// ISODate formats the date as YYYY-MM-DD using its own calendar day
func ISODate(date time.Time) string {
	return date.Format(ISOLayout)
}

// ParseISODate parses a YYYY-MM-DD string into a noon-pinned date
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Noon(t), nil
}

// AddDays shifts a date by n calendar days, keeping it noon-pinned
func AddDays(date time.Time, n int) time.Time {
	return Noon(date).AddDate(0, 0, n)
}

// StartOfWeek returns the first day of the week containing date.
// weekStart is the weekday the week begins on (time.Sunday or time.Monday).
func StartOfWeek(date time.Time, weekStart time.Weekday) time.Time {
	offset := (int(date.Weekday()) - int(weekStart) + 7) % 7
	return AddDays(date, -offset)
}

// StartOfMonth returns the first day of the month containing date
func StartOfMonth(date time.Time) time.Time {
	return Date(date.Year(), date.Month(), 1)
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// Before reports whether date1 falls on an earlier calendar day than date2
func Before(date1, date2 time.Time) bool {
	return Noon(date1).Before(Noon(date2))
}

// DaysBetween returns the number of calendar days from date1 to date2
func DaysBetween(date1, date2 time.Time) int {
	return int(Noon(date2).Sub(Noon(date1)).Hours() / 24)
}

// ParseClock parses an HH:MM time of day
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Today returns today's date in loc, noon-pinned
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return Noon(time.Now().In(loc))
}
