package fee

import (
	"errors"
	"sort"
	"strings"
	"time"

	"clubify/internal/domain/civil"
)

// Domain errors
var (
	ErrEmptyTeamID          = errors.New("team ID cannot be empty")
	ErrNonPositiveAmount    = errors.New("fee amount must be greater than zero")
	ErrInvalidEffectiveFrom = errors.New("effective_from must be YYYY-MM-DD")
)

// SubscriptionFee is one version of a team's monthly fee, in whole denars.
// Rows are append-only: a new fee supersedes older ones from EffectiveFrom onwards.
type SubscriptionFee struct {
	ID            string
	TeamID        string
	Amount        int64
	EffectiveFrom string // YYYY-MM-DD
	CreatedAt     time.Time
}

// Validate checks if the SubscriptionFee has valid data.
// PRE: SubscriptionFee struct is populated
// POST: Returns nil if valid, error otherwise
func (f *SubscriptionFee) Validate() error {
	if strings.TrimSpace(f.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if f.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if !civil.Valid(f.EffectiveFrom) {
		return ErrInvalidEffectiveFrom
	}
	return nil
}

// SortNewestFirst orders fees by EffectiveFrom descending. The sort is stable,
// so rows sharing a date keep their incoming order.
func SortNewestFirst(fees []SubscriptionFee) {
	sort.SliceStable(fees, func(i, j int) bool {
		return fees[i].EffectiveFrom > fees[j].EffectiveFrom
	})
}

// EffectiveByTeam picks each team's fee in force on target.
// PRE: fees are ordered newest first (see SortNewestFirst)
// POST: For each team, the first row with EffectiveFrom <= target wins
// INVARIANT: rows dated after target are ignored
func EffectiveByTeam(fees []SubscriptionFee, target string) map[string]SubscriptionFee {
	out := make(map[string]SubscriptionFee)
	for _, f := range fees {
		if f.EffectiveFrom > target {
			continue
		}
		if _, seen := out[f.TeamID]; seen {
			continue
		}
		out[f.TeamID] = f
	}
	return out
}

// Effective returns the fee in force on target for a single team's history.
func Effective(fees []SubscriptionFee, target string) (SubscriptionFee, bool) {
	sorted := append([]SubscriptionFee(nil), fees...)
	SortNewestFirst(sorted)
	for _, f := range sorted {
		if f.EffectiveFrom <= target {
			return f, true
		}
	}
	return SubscriptionFee{}, false
}
