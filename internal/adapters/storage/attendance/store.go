package attendance

import (
	"context"

	domain "clubify/internal/domain/attendance"
)

// Store persists attendance marks.
type Store interface {
	// Upsert writes marks, overwriting any existing mark for the same
	// (session, player).
	Upsert(ctx context.Context, marks []domain.Attendance) error
	ListBySessions(ctx context.Context, sessionIDs []string) ([]domain.Attendance, error)
	// ListByPlayer returns a player's marks for sessions dated within [from, to].
	ListByPlayer(ctx context.Context, playerID, from, to string) ([]domain.Attendance, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
