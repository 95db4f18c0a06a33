package team

import (
	"context"

	domain "clubify/internal/domain/team"
)

// Store persists teams.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Team, error)
	Save(ctx context.Context, t domain.Team) error
	// ListByClub returns all teams of a club, active or not, ordered by name.
	ListByClub(ctx context.Context, clubID string) ([]domain.Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Team, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
