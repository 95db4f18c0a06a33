package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/audit"
	"clubify/internal/domain/club"
	"clubify/internal/domain/fee"
	"clubify/internal/domain/payment"
	"clubify/internal/domain/player"
	"clubify/internal/domain/team"
)

// ClubReader loads a club.
type ClubReader interface {
	GetByID(ctx context.Context, id string) (club.Club, error)
}

// TeamLister lists a club's teams.
type TeamLister interface {
	ListByClub(ctx context.Context, clubID string) ([]team.Team, error)
}

// ActiveRosterLister lists open team-player assignments.
type ActiveRosterLister interface {
	ListActiveByTeams(ctx context.Context, teamIDs []string) ([]player.Assignment, error)
}

// EffectiveFeeLister lists fee rows in force on or before a date, newest first.
type EffectiveFeeLister interface {
	ListEffectiveOnOrBefore(ctx context.Context, teamIDs []string, date string) ([]fee.SubscriptionFee, error)
}

// PaymentInserter writes payment records, skipping existing periods.
type PaymentInserter interface {
	InsertIgnoreDuplicates(ctx context.Context, records []payment.Record) (int, error)
}

// GeneratePaymentsInput carries input for the payment generator.
type GeneratePaymentsInput struct {
	ClubID     string
	Month      int
	Year       int
	ActorID    string // empty for scheduled runs
	ActorEmail string
}

// GeneratePaymentsResult summarises one generation run.
type GeneratePaymentsResult struct {
	Inserted         int      `json:"inserted"`
	Skipped          int      `json:"skipped"`
	TeamsWithoutFees []string `json:"teamsWithoutFees"`
}

// GeneratePaymentsDeps holds dependencies for GeneratePayments.
type GeneratePaymentsDeps struct {
	Clubs     ClubReader
	Teams     TeamLister
	Rosters   ActiveRosterLister
	Fees      EffectiveFeeLister
	Payments  PaymentInserter
	Discounts payment.DiscountPolicy // nil means payment.NoDiscount
	Audit     AuditRecorder          // optional

	GenerateID func() string
	Now        func() time.Time
}

// ExecuteGeneratePayments creates one unpaid record per active player-in-team
// for the club's month, priced at the team's effective fee.
// PRE: ClubID non-empty
// POST: Every active assignment whose team has a fee has a record for the period
// INVARIANT: Existing records for a player/period are never overwritten; re-running is a no-op
func ExecuteGeneratePayments(ctx context.Context, input GeneratePaymentsInput, deps GeneratePaymentsDeps) (GeneratePaymentsResult, error) {
	if err := payment.ValidatePeriod(input.Month, input.Year); err != nil {
		return GeneratePaymentsResult{}, apperr.Invalid(err)
	}

	c, err := deps.Clubs.GetByID(ctx, input.ClubID)
	if err != nil {
		return GeneratePaymentsResult{}, lookupErr(err, "club", "get club")
	}

	teams, err := deps.Teams.ListByClub(ctx, c.ID)
	if err != nil {
		return GeneratePaymentsResult{}, apperr.Store("list teams", err)
	}
	if len(teams) == 0 {
		return GeneratePaymentsResult{}, apperr.Validation("no teams found for club")
	}
	teamIDs := team.IDs(teams)
	teamNames := team.NamesByID(teams)

	assignments, err := deps.Rosters.ListActiveByTeams(ctx, teamIDs)
	if err != nil {
		return GeneratePaymentsResult{}, apperr.Store("list active assignments", err)
	}
	if len(assignments) == 0 {
		return GeneratePaymentsResult{}, apperr.Validation("no active players found")
	}

	target := payment.PeriodStart(input.Year, input.Month)
	fees, err := deps.Fees.ListEffectiveOnOrBefore(ctx, teamIDs, target)
	if err != nil {
		return GeneratePaymentsResult{}, apperr.Store("list fees", err)
	}
	effective := fee.EffectiveByTeam(fees, target)
	dueDate := payment.DueDate(input.Year, input.Month)

	discounts := deps.Discounts
	if discounts == nil {
		discounts = payment.NoDiscount{}
	}
	newID := idFunc(deps.GenerateID)
	now := nowOr(deps.Now)

	result := GeneratePaymentsResult{TeamsWithoutFees: []string{}}
	reported := make(map[string]bool)
	var records []payment.Record
	for _, a := range assignments {
		f, ok := effective[a.TeamID]
		if !ok {
			if !reported[a.TeamID] {
				reported[a.TeamID] = true
				result.TeamsWithoutFees = append(result.TeamsWithoutFees, teamNames[a.TeamID])
			}
			continue
		}

		discount, err := discounts.Discount(ctx, payment.Candidate{
			ClubID:    c.ID,
			PlayerID:  a.PlayerID,
			TeamID:    a.TeamID,
			Month:     input.Month,
			Year:      input.Year,
			FeeAmount: f.Amount,
		})
		if err != nil {
			return GeneratePaymentsResult{}, fmt.Errorf("discount for player %s: %w", a.PlayerID, err)
		}
		due, err := payment.AmountDue(f.Amount, discount)
		if err != nil {
			return GeneratePaymentsResult{}, apperr.Invalid(err)
		}

		records = append(records, payment.Record{
			ID:              newID(),
			PlayerID:        a.PlayerID,
			TeamID:          a.TeamID,
			PeriodMonth:     input.Month,
			PeriodYear:      input.Year,
			AmountDue:       due,
			DiscountApplied: discount,
			Status:          payment.StatusUnpaid,
			DueDate:         dueDate,
			CreatedAt:       now,
		})
	}

	if len(records) > 0 {
		inserted, err := deps.Payments.InsertIgnoreDuplicates(ctx, records)
		if err != nil {
			slog.Error("payment_event", "event", "generate_failed",
				"club_id", c.ID, "month", input.Month, "year", input.Year,
				"candidates", len(records), "error", err)
			return GeneratePaymentsResult{}, apperr.Store("insert payment records", err)
		}
		result.Inserted = inserted
		result.Skipped = len(records) - inserted
	}

	slog.Info("payment_event", "event", "generated",
		"club_id", c.ID, "month", input.Month, "year", input.Year,
		"inserted", result.Inserted, "skipped", result.Skipped,
		"teams_without_fees", len(result.TeamsWithoutFees))

	if input.ActorID != "" {
		recordAudit(ctx, deps.Audit,
			audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryBilling, audit.ActionGenerate, now).
				InClub(c.ID).
				WithDescription(fmt.Sprintf("generated %d payment records for %02d/%d (%d skipped)",
					result.Inserted, input.Month, input.Year, result.Skipped)))
	}

	return result, nil
}
