package roster

import (
	"context"

	"clubify/internal/domain/player"
)

// Store persists team roster assignments (team_player rows).
type Store interface {
	// Assign inserts an assignment. Returns false when the player is already
	// active on the team.
	Assign(ctx context.Context, a player.Assignment) (bool, error)
	// GetActive returns the open assignment of a player on a team.
	GetActive(ctx context.Context, teamID, playerID string) (player.Assignment, error)
	// Save updates an assignment (used to set LeftAt).
	Save(ctx context.Context, a player.Assignment) error
	// ListActiveByTeams returns open assignments across the given teams.
	ListActiveByTeams(ctx context.Context, teamIDs []string) ([]player.Assignment, error)
	// ListByPlayer returns a player's full roster history, newest first.
	ListByPlayer(ctx context.Context, playerID string) ([]player.Assignment, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
