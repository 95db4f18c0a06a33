package club

import (
	"context"

	domain "clubify/internal/domain/club"
)

// Store persists clubs.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Club, error)
	Save(ctx context.Context, c domain.Club) error
	List(ctx context.Context) ([]domain.Club, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Club, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
