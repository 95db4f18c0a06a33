package fee

import (
	"context"

	domain "clubify/internal/domain/fee"
)

// Store persists subscription fee history. Rows are append-only.
type Store interface {
	Insert(ctx context.Context, f domain.SubscriptionFee) error
	// ListByTeam returns a team's fee history, newest effective date first.
	ListByTeam(ctx context.Context, teamID string) ([]domain.SubscriptionFee, error)
	// ListEffectiveOnOrBefore returns fee rows for the given teams whose
	// EffectiveFrom is on or before date, newest first within a team.
	ListEffectiveOnOrBefore(ctx context.Context, teamIDs []string, date string) ([]domain.SubscriptionFee, error)
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
