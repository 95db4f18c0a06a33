package training

import (
	"context"

	domain "clubify/internal/domain/training"
)

// Store persists recurrence patterns and dated training sessions.
type Store interface {
	// CreatePattern writes the recurrence rows and their expanded sessions
	// in one transaction.
	CreatePattern(ctx context.Context, recurrences []domain.Recurrence, sessions []domain.Session) error
	GetRecurrence(ctx context.Context, id string) (domain.Recurrence, error)
	ListRecurrencesByTeam(ctx context.Context, teamID string) ([]domain.Recurrence, error)

	InsertSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]domain.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// DeletePatternFrom removes every session of the given recurrences dated
	// on or after fromDate, then the recurrence rows themselves. Earlier
	// sessions are kept and detached. Returns the number of sessions removed.
	DeletePatternFrom(ctx context.Context, recurrenceIDs []string, fromDate string) (int, error)
}

// SessionFilter narrows ListSessions. Empty fields mean "any".
type SessionFilter struct {
	TeamIDs []string
	From    string // session_date >= From
	To      string // session_date <= To
	Limit   int    // 0 means no limit
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
