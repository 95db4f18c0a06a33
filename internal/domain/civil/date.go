// Package civil holds calendar-date helpers shared by billing and training.
// Dates are plain YYYY-MM-DD strings built from local year/month/day
// components so they never shift across a timezone boundary.
package civil

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the storage and wire format of a calendar date.
const Layout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Format renders t's local calendar date.
func Format(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Parse reads a YYYY-MM-DD string as local midnight in loc.
// PRE: loc is non-nil
// POST: Returns midnight of that date in loc, or ErrInvalidDate
func Parse(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OfMonth formats the given day of a month, e.g. OfMonth(2025, 3, 5) = "2025-03-05".
func OfMonth(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// Valid reports whether s is a well-formed calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Before reports whether date a is strictly before date b.
// Both must be in Layout; lexical order equals calendar order.
func Before(a, b string) bool {
	return a < b
}
