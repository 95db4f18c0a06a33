package grant

import (
	"context"

	"clubify/internal/domain/access"
)

// Store persists role grants.
type Store interface {
	// GetByID retrieves one grant.
	// PRE: id is non-empty
	// POST: Returns the grant or an error wrapping sql.ErrNoRows
	GetByID(ctx context.Context, id string) (access.Grant, error)

	// ListByAccount returns every grant an account holds.
	ListByAccount(ctx context.Context, accountID string) ([]access.Grant, error)

	// ListByClub returns the grants scoped to a club, ordered by role then account.
	ListByClub(ctx context.Context, clubID string) ([]access.Grant, error)

	// Insert stores a grant. Returns false when an identical
	// (account, role, club) grant already exists.
	Insert(ctx context.Context, g access.Grant) (bool, error)

	// Delete removes a grant.
	Delete(ctx context.Context, id string) error
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
