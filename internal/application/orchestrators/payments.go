package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubify/internal/adapters/email"
	paymentStore "clubify/internal/adapters/storage/payment"
	"clubify/internal/application/apperr"
	"clubify/internal/domain/account"
	"clubify/internal/domain/audit"
	"clubify/internal/domain/civil"
	"clubify/internal/domain/payment"
	"clubify/internal/domain/player"
	"clubify/internal/domain/reminder"
	"clubify/internal/domain/team"
)

// PaymentRecordStore applies money received to single payment records.
type PaymentRecordStore interface {
	AddPayment(ctx context.Context, id string, amount int64, notes string, at time.Time) (payment.Record, error)
}

// RecordPaymentInput carries input for RecordPayment.
type RecordPaymentInput struct {
	PaymentID  string
	Amount     int64
	Notes      string
	ActorID    string
	ActorEmail string
}

// RecordPaymentDeps holds dependencies for RecordPayment.
type RecordPaymentDeps struct {
	Payments PaymentRecordStore
	Teams    TeamReader
	Audit    AuditRecorder
	Now      func() time.Time
}

// ExecuteRecordPayment applies money received to a bill.
// PRE: Amount > 0
// POST: AmountPaid increased by the store, status re-derived, PaidAt set once fully paid
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps RecordPaymentDeps) (payment.Record, error) {
	if input.Amount <= 0 {
		return payment.Record{}, apperr.Invalid(payment.ErrNonPositivePaid)
	}
	now := nowOr(deps.Now)
	r, err := deps.Payments.AddPayment(ctx, input.PaymentID, input.Amount, strings.TrimSpace(input.Notes), now)
	if err != nil {
		return payment.Record{}, lookupErr(err, "payment", "record payment")
	}

	slog.Info("payment_event", "event", "payment_recorded",
		"payment_id", r.ID, "player_id", r.PlayerID, "amount", input.Amount, "status", r.Status)

	clubID := ""
	if deps.Teams != nil {
		if t, err := deps.Teams.GetByID(ctx, r.TeamID); err == nil {
			clubID = t.ClubID
		}
	}
	recordAudit(ctx, deps.Audit,
		audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryBilling, audit.ActionPay, now).
			InClub(clubID).
			WithResource("payment", r.ID).
			WithDescription(fmt.Sprintf("recorded %d MKD for %02d/%d", input.Amount, r.PeriodMonth, r.PeriodYear)))

	return r, nil
}

// --- Reminders ---

// OverduePaymentLister lists payment records by filter.
type OverduePaymentLister interface {
	List(ctx context.Context, filter paymentStore.ListFilter) ([]payment.Record, error)
}

// ParentDirectory resolves players and their parents.
type ParentDirectory interface {
	ListByIDs(ctx context.Context, ids []string) ([]player.Player, error)
	ListParentLinks(ctx context.Context, playerIDs []string) ([]player.ParentLink, error)
}

// AccountBatchReader loads accounts by id.
type AccountBatchReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]account.Account, error)
}

// SendPaymentRemindersInput carries input for SendPaymentReminders.
type SendPaymentRemindersInput struct {
	ClubID     string
	ActorID    string // empty for scheduled runs
	ActorEmail string
}

// SendPaymentRemindersResult summarises one reminder run.
type SendPaymentRemindersResult struct {
	OverdueRecords int `json:"overdueRecords"`
	Parents        int `json:"parents"`
	Sent           int `json:"sent"`
	Queued         int `json:"queued"`
	Unreachable    int `json:"unreachable"` // overdue players with no linked parent
}

// SendPaymentRemindersDeps holds dependencies for SendPaymentReminders.
type SendPaymentRemindersDeps struct {
	Clubs    ClubReader
	Teams    TeamLister
	Payments OverduePaymentLister
	Players  ParentDirectory
	Accounts AccountBatchReader
	Sender   email.Sender
	Outbox   OutboxWriter
	Audit    AuditRecorder
	From     string

	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSendPaymentReminders emails each linked parent one summary of their
// children's overdue bills in a club. Emails the provider rejects are queued
// in the outbox for retry.
// PRE: club exists
// POST: every reachable parent was sent or queued exactly one reminder
// INVARIANT: payment records are not modified
func ExecuteSendPaymentReminders(ctx context.Context, input SendPaymentRemindersInput, deps SendPaymentRemindersDeps) (SendPaymentRemindersResult, error) {
	var res SendPaymentRemindersResult

	c, err := deps.Clubs.GetByID(ctx, input.ClubID)
	if err != nil {
		return res, lookupErr(err, "club", "get club")
	}
	now := nowOr(deps.Now)
	today := civil.Format(now)

	records, err := deps.Payments.List(ctx, paymentStore.ListFilter{
		ClubID:    c.ID,
		Statuses:  []string{payment.StatusUnpaid},
		DueBefore: today,
	})
	if err != nil {
		return res, apperr.Store("list overdue payments", err)
	}
	var overdue []payment.Record
	for _, r := range records {
		if r.EffectiveStatus(today) == payment.StatusOverdue {
			overdue = append(overdue, r)
		}
	}
	res.OverdueRecords = len(overdue)
	if len(overdue) == 0 {
		return res, nil
	}

	teams, err := deps.Teams.ListByClub(ctx, c.ID)
	if err != nil {
		return res, apperr.Store("list teams", err)
	}
	teamNames := team.NamesByID(teams)

	playerIDs := distinct(overdue, func(r payment.Record) string { return r.PlayerID })
	players, err := deps.Players.ListByIDs(ctx, playerIDs)
	if err != nil {
		return res, apperr.Store("list players", err)
	}
	playerNames := make(map[string]string, len(players))
	for _, p := range players {
		playerNames[p.ID] = p.FullName()
	}

	links, err := deps.Players.ListParentLinks(ctx, playerIDs)
	if err != nil {
		return res, apperr.Store("list parent links", err)
	}
	parentsOf := make(map[string][]string)
	for _, l := range links {
		parentsOf[l.PlayerID] = append(parentsOf[l.PlayerID], l.AccountID)
	}

	itemsByParent := make(map[string][]reminder.Item)
	var parentOrder []string
	for _, r := range overdue {
		parents := parentsOf[r.PlayerID]
		if len(parents) == 0 {
			res.Unreachable++
			continue
		}
		item := reminder.Item{
			PlayerName:  playerNames[r.PlayerID],
			TeamName:    teamNames[r.TeamID],
			PeriodMonth: r.PeriodMonth,
			PeriodYear:  r.PeriodYear,
			Outstanding: r.Outstanding(),
			DueDate:     r.DueDate,
		}
		for _, accountID := range parents {
			if _, seen := itemsByParent[accountID]; !seen {
				parentOrder = append(parentOrder, accountID)
			}
			itemsByParent[accountID] = append(itemsByParent[accountID], item)
		}
	}
	if len(parentOrder) == 0 {
		return res, nil
	}

	accounts, err := deps.Accounts.ListByIDs(ctx, parentOrder)
	if err != nil {
		return res, apperr.Store("list parent accounts", err)
	}
	emails := make(map[string]string, len(accounts))
	for _, a := range accounts {
		emails[a.ID] = a.Email
	}

	var reqs []email.SendRequest
	for _, accountID := range parentOrder {
		to := emails[accountID]
		if to == "" {
			continue
		}
		msg, err := reminder.Compose(to, c.Name, itemsByParent[accountID])
		if err != nil {
			return res, fmt.Errorf("compose reminder: %w", err)
		}
		html, err := email.RenderMarkdown(msg.Markdown)
		if err != nil {
			return res, err
		}
		reqs = append(reqs, email.SendRequest{
			To:      []string{msg.To},
			From:    deps.From,
			Subject: msg.Subject,
			HTML:    html,
			Tags:    map[string]string{"kind": "payment_reminder", "club": c.ID},
		})
	}
	res.Parents = len(reqs)

	sent, sendErr := deps.Sender.SendBatch(ctx, reqs)
	res.Sent = len(sent)
	if sendErr != nil {
		newID := idFunc(deps.GenerateID)
		for _, req := range reqs[len(sent):] {
			if err := enqueueEmail(ctx, deps.Outbox, req, sendErr, newID(), now); err != nil {
				slog.Error("payment_event", "event", "reminder_enqueue_failed", "club_id", c.ID, "error", err)
				return res, apperr.Store("enqueue reminder", err)
			}
			res.Queued++
		}
	}

	slog.Info("payment_event", "event", "reminders_sent",
		"club_id", c.ID, "overdue", res.OverdueRecords, "parents", res.Parents,
		"sent", res.Sent, "queued", res.Queued, "unreachable", res.Unreachable)

	if input.ActorID != "" {
		recordAudit(ctx, deps.Audit,
			audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryBilling, audit.ActionRemind, now).
				InClub(c.ID).
				WithDescription(fmt.Sprintf("reminded %d parents about %d overdue records", res.Parents, res.OverdueRecords)))
	}
	return res, nil
}

// distinct returns the unique keys of items in first-seen order.
func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		k := key(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
