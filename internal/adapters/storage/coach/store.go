package coach

import (
	"context"

	domain "clubify/internal/domain/coach"
)

// Store persists coach-to-team assignments.
type Store interface {
	// Save inserts or updates the assignment for (team, account).
	Save(ctx context.Context, a domain.Assignment) error
	Delete(ctx context.Context, teamID, accountID string) error
	ListByTeam(ctx context.Context, teamID string) ([]domain.Assignment, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Assignment, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
