package civil_test

import (
	"testing"
	"time"

	"clubify/internal/domain/civil"
)

func TestFormat_UsesLocalComponents(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 00:30 local is still the previous day in UTC.
	ts := time.Date(2025, 3, 1, 0, 30, 0, 0, loc)
	if got := civil.Format(ts); got != "2025-03-01" {
		t.Errorf("Format() = %q, want 2025-03-01", got)
	}
	if got := ts.UTC().Format(civil.Layout); got != "2025-02-28" {
		t.Fatalf("sanity: UTC date = %q", got)
	}
}

func TestParse(t *testing.T) {
	got, err := civil.Parse("2025-06-01", time.UTC)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Day() != 1 || got.Month() != time.June {
		t.Errorf("Parse() = %v", got)
	}
	if _, err := civil.Parse("01/06/2025", time.UTC); err == nil {
		t.Error("expected error for bad format")
	}
}

func TestOfMonth(t *testing.T) {
	if got := civil.OfMonth(2025, 3, 5); got != "2025-03-05" {
		t.Errorf("OfMonth() = %q", got)
	}
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2025, 7, 9, 18, 45, 12, 99, time.Local)
	got := civil.StartOfDay(ts)
	if got.Hour() != 0 || got.Minute() != 0 || got.Day() != 9 {
		t.Errorf("StartOfDay() = %v", got)
	}
}
