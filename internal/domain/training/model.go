package training

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clubify/internal/domain/civil"
)

// Day of week constants, matching time.Weekday.
const (
	Sunday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// MaxDurationMinutes caps a single session.
const MaxDurationMinutes = 24 * 60

// Domain errors
var (
	ErrEmptyTeamID       = errors.New("team ID cannot be empty")
	ErrNoDays            = errors.New("at least one day of week is required")
	ErrInvalidDay        = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrDuplicateDay      = errors.New("days of week must not repeat")
	ErrInvalidStartTime  = errors.New("start time must be HH:MM")
	ErrInvalidDuration   = errors.New("duration must be greater than zero minutes")
	ErrDurationTooLong   = errors.New("duration cannot exceed 24 hours")
	ErrInvalidDate       = errors.New("session date must be YYYY-MM-DD")
	ErrUntilBeforeToday  = errors.New("generate-until date cannot be in the past")
	ErrUntilTooFar       = errors.New("generate-until date cannot be more than one year ahead")
	ErrUnknownDeleteMode = errors.New("delete scope must be single or future")
)

// Recurrence is one weekday of a weekly training pattern. A pattern over
// Mon/Wed/Fri is stored as three rows sharing PatternID and attributes.
type Recurrence struct {
	ID              string
	TeamID          string
	PatternID       string // empty on rows created before pattern grouping existed
	DayOfWeek       int    // 0=Sunday .. 6=Saturday
	StartTime       string // HH:MM
	DurationMinutes int
	Location        string
	Notes           string
	CreatedAt       time.Time
}

// Session is a concrete dated training. RecurrenceID is empty for one-off sessions.
type Session struct {
	ID              string
	TeamID          string
	SessionDate     string // YYYY-MM-DD
	StartTime       string // HH:MM
	DurationMinutes int
	Location        string
	Notes           string
	RecurrenceID    string
	CreatedAt       time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if !civil.Valid(s.SessionDate) {
		return ErrInvalidDate
	}
	if err := validateStartTime(s.StartTime); err != nil {
		return err
	}
	return validateDuration(s.DurationMinutes)
}

// EndTime returns the HH:MM the session finishes, wrapping past midnight.
// PRE: StartTime is HH:MM
func (s *Session) EndTime() (string, error) {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return "", fmt.Errorf("invalid start time %q: %w", s.StartTime, err)
	}
	return start.Add(time.Duration(s.DurationMinutes) * time.Minute).Format("15:04"), nil
}

// IsRecurring reports whether the session was generated from a pattern.
func (s *Session) IsRecurring() bool {
	return s.RecurrenceID != ""
}

func validateStartTime(hhmm string) error {
	if len(hhmm) != 5 {
		return ErrInvalidStartTime
	}
	if _, err := time.Parse("15:04", hhmm); err != nil {
		return ErrInvalidStartTime
	}
	return nil
}

func validateDuration(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	if minutes > MaxDurationMinutes {
		return ErrDurationTooLong
	}
	return nil
}

// Delete scopes for removing a session.
const (
	DeleteSingle = "single"
	DeleteFuture = "future"
)

// ParseDeleteScope normalises a delete scope, defaulting to single.
func ParseDeleteScope(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", DeleteSingle:
		return DeleteSingle, nil
	case DeleteFuture, "all_future", "this_and_future":
		return DeleteFuture, nil
	default:
		return "", ErrUnknownDeleteMode
	}
}
