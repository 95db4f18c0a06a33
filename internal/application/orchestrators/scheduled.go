package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/club"
)

// ClubLister lists every club.
type ClubLister interface {
	List(ctx context.Context) ([]club.Club, error)
}

// ScheduledRunResult counts the clubs a scheduled run touched.
type ScheduledRunResult struct {
	Clubs   int
	Skipped int // clubs with nothing to do (no teams, no players)
	Failed  int
}

// ExecuteScheduledBilling generates the current month's bills for every
// active club. A club that fails does not stop the others.
// PRE: deps.Now is the scheduler clock
// POST: every active club with billable players has records for the month
func ExecuteScheduledBilling(ctx context.Context, clubs ClubLister, deps GeneratePaymentsDeps) (ScheduledRunResult, error) {
	now := nowOr(deps.Now)
	return forEachActiveClub(ctx, clubs, "billing", func(c club.Club) error {
		_, err := ExecuteGeneratePayments(ctx, GeneratePaymentsInput{
			ClubID: c.ID,
			Month:  int(now.Month()),
			Year:   now.Year(),
		}, deps)
		return err
	})
}

// ExecuteScheduledReminders emails parents about overdue bills in every active club.
func ExecuteScheduledReminders(ctx context.Context, clubs ClubLister, deps SendPaymentRemindersDeps) (ScheduledRunResult, error) {
	return forEachActiveClub(ctx, clubs, "reminders", func(c club.Club) error {
		_, err := ExecuteSendPaymentReminders(ctx, SendPaymentRemindersInput{ClubID: c.ID}, deps)
		return err
	})
}

// forEachActiveClub runs fn per active club. Validation failures count as
// skipped; anything else is logged, counted and joined into the returned error.
func forEachActiveClub(ctx context.Context, clubs ClubLister, job string, fn func(club.Club) error) (ScheduledRunResult, error) {
	all, err := clubs.List(ctx)
	if err != nil {
		return ScheduledRunResult{}, apperr.Store("list clubs", err)
	}
	var res ScheduledRunResult
	var errs []error
	for _, c := range all {
		if !c.Active {
			continue
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res.Clubs++
		err := fn(c)
		switch {
		case err == nil:
		case errors.Is(err, apperr.ErrValidation):
			res.Skipped++
			slog.Debug("scheduler_event", "event", "club_skipped", "job", job, "club_id", c.ID, "reason", err.Error())
		default:
			res.Failed++
			slog.Error("scheduler_event", "event", "club_failed", "job", job, "club_id", c.ID, "error", err)
			errs = append(errs, err)
		}
	}
	slog.Info("scheduler_event", "event", "run_complete", "job", job,
		"clubs", res.Clubs, "skipped", res.Skipped, "failed", res.Failed)
	return res, errors.Join(errs...)
}
