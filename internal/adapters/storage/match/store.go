package match

import (
	"context"

	domain "clubify/internal/domain/match"
)

// Store persists fixtures.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Match, error)
	Save(ctx context.Context, m domain.Match) error
	Delete(ctx context.Context, id string) error
	// ListByTeams returns fixtures of the given teams within [from, to]; empty
	// bounds are open.
	ListByTeams(ctx context.Context, teamIDs []string, from, to string) ([]domain.Match, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
