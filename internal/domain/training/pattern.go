package training

import (
	"strings"
	"time"

	"clubify/internal/domain/civil"
)

// Pattern is a weekly training definition before it is stored.
type Pattern struct {
	TeamID          string
	DaysOfWeek      []int
	StartTime       string
	DurationMinutes int
	Location        string
	Notes           string
}

// Validate checks if the Pattern has valid data.
// PRE: Pattern struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Pattern) Validate() error {
	if strings.TrimSpace(p.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if len(p.DaysOfWeek) == 0 {
		return ErrNoDays
	}
	seen := make(map[int]bool, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		if d < Sunday || d > Saturday {
			return ErrInvalidDay
		}
		if seen[d] {
			return ErrDuplicateDay
		}
		seen[d] = true
	}
	if err := validateStartTime(p.StartTime); err != nil {
		return err
	}
	return validateDuration(p.DurationMinutes)
}

// Recurrences builds one row per weekday, in DaysOfWeek order.
// PRE: p is valid; newID returns unique ids
// POST: all rows share patternID and the pattern attributes
func (p *Pattern) Recurrences(patternID string, newID func() string, now time.Time) []Recurrence {
	rows := make([]Recurrence, 0, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		rows = append(rows, Recurrence{
			ID:              newID(),
			TeamID:          p.TeamID,
			PatternID:       patternID,
			DayOfWeek:       d,
			StartTime:       p.StartTime,
			DurationMinutes: p.DurationMinutes,
			Location:        p.Location,
			Notes:           p.Notes,
			CreatedAt:       now,
		})
	}
	return rows
}

// Expand emits a session for every date from..until (inclusive) whose weekday
// has a recurrence row. Each session links to its weekday's recurrence.
// PRE: from and until are local dates; rows have distinct DayOfWeek
// POST: sessions are in date order; dates are built from local components
// INVARIANT: no I/O; ids are left empty for the caller to assign
func Expand(rows []Recurrence, from, until time.Time) []Session {
	byDay := make(map[time.Weekday]Recurrence, len(rows))
	for _, r := range rows {
		byDay[time.Weekday(r.DayOfWeek)] = r
	}

	start := civil.StartOfDay(from)
	end := civil.StartOfDay(until)

	var sessions []Session
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		r, ok := byDay[d.Weekday()]
		if !ok {
			continue
		}
		sessions = append(sessions, Session{
			TeamID:          r.TeamID,
			SessionDate:     civil.Format(d),
			StartTime:       r.StartTime,
			DurationMinutes: r.DurationMinutes,
			Location:        r.Location,
			Notes:           r.Notes,
			RecurrenceID:    r.ID,
		})
	}
	return sessions
}

// SamePattern reports whether two recurrence rows belong to one weekly pattern.
// Rows with a PatternID compare by it; legacy rows without one fall back to
// matching team, start time, duration and location among themselves.
func SamePattern(a, b Recurrence) bool {
	if a.PatternID != "" || b.PatternID != "" {
		return a.PatternID == b.PatternID
	}
	return a.TeamID == b.TeamID &&
		a.StartTime == b.StartTime &&
		a.DurationMinutes == b.DurationMinutes &&
		a.Location == b.Location
}

// GroupOf returns the rows of candidates that share target's pattern,
// always including target itself.
func GroupOf(target Recurrence, candidates []Recurrence) []Recurrence {
	group := []Recurrence{target}
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		if SamePattern(target, c) {
			group = append(group, c)
		}
	}
	return group
}

// RecurrenceIDs returns the ids of rows in order.
func RecurrenceIDs(rows []Recurrence) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
