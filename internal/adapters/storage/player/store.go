package player

import (
	"context"

	domain "clubify/internal/domain/player"
)

// Store persists players and their parent links.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Player, error)
	Save(ctx context.Context, p domain.Player) error
	List(ctx context.Context, filter ListFilter) ([]domain.Player, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Player, error)

	// LinkParent connects a parent account to a player. Returns false when
	// the link already exists.
	LinkParent(ctx context.Context, link domain.ParentLink) (bool, error)
	UnlinkParent(ctx context.Context, link domain.ParentLink) error
	// ListParentLinks returns the parent links for the given players.
	ListParentLinks(ctx context.Context, playerIDs []string) ([]domain.ParentLink, error)
	// ListChildren returns the players linked to a parent account.
	ListChildren(ctx context.Context, accountID string) ([]domain.Player, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClubID string
	TeamID string // only players currently on this team
	Search string // matches first or last name
	Limit  int
	Offset int
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
