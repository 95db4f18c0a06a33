package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	paymentStore "clubify/internal/adapters/storage/payment"
	"clubify/internal/application/apperr"
	"clubify/internal/domain/account"
	"clubify/internal/domain/audit"
	"clubify/internal/domain/club"
	"clubify/internal/domain/payment"
	"clubify/internal/domain/player"
	"clubify/internal/domain/team"
)

type mockPaymentRecords struct {
	records map[string]payment.Record
}

func (m *mockPaymentRecords) GetByID(_ context.Context, id string) (payment.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return payment.Record{}, fmt.Errorf("payment not found: %w", sql.ErrNoRows)
	}
	return r, nil
}

func (m *mockPaymentRecords) AddPayment(_ context.Context, id string, amount int64, notes string, at time.Time) (payment.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return payment.Record{}, fmt.Errorf("payment not found: %w", sql.ErrNoRows)
	}
	if err := r.ApplyPayment(amount, at); err != nil {
		return payment.Record{}, err
	}
	if notes != "" {
		r.Notes = notes
	}
	m.records[id] = r
	return r, nil
}

// List honours the filter fields used by the reminder run.
func (m *mockPaymentRecords) List(_ context.Context, f paymentStore.ListFilter) ([]payment.Record, error) {
	var out []payment.Record
	for _, r := range m.records {
		if len(f.Statuses) > 0 && !containsString(f.Statuses, r.Status) {
			continue
		}
		if f.DueBefore != "" && r.DueDate >= f.DueBefore {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestExecuteRecordPayment(t *testing.T) {
	store := &mockPaymentRecords{records: map[string]payment.Record{
		"pay-1": {ID: "pay-1", PlayerID: "p1", TeamID: "team-1", PeriodMonth: 3, PeriodYear: 2025, AmountDue: 3000, Status: payment.StatusUnpaid, DueDate: "2025-03-05"},
	}}
	rec := &mockAudit{}
	deps := RecordPaymentDeps{
		Payments: store,
		Teams:    &mockTeams{teams: []team.Team{{ID: "team-1", ClubID: "club-1"}}},
		Audit:    rec,
		Now:      func() time.Time { return billingNow },
	}

	r, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{PaymentID: "pay-1", Amount: 1000, ActorID: "acc-admin"}, deps)
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if r.Status != payment.StatusPartial || r.AmountPaid != 1000 || !r.PaidAt.IsZero() {
		t.Errorf("after partial = %+v", r)
	}

	r, err = ExecuteRecordPayment(context.Background(), RecordPaymentInput{PaymentID: "pay-1", Amount: 2000, Notes: "cash", ActorID: "acc-admin"}, deps)
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if r.Status != payment.StatusPaid || !r.PaidAt.Equal(billingNow) || r.Notes != "cash" {
		t.Errorf("after full = %+v", r)
	}
	if len(rec.events) != 2 || rec.events[0].ClubID != "club-1" || rec.events[0].Action != audit.ActionPay {
		t.Errorf("audit events = %+v", rec.events)
	}

	if _, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{PaymentID: "pay-1", Amount: 0}, deps); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero amount error = %v, want validation", err)
	}
	if _, err := ExecuteRecordPayment(context.Background(), RecordPaymentInput{PaymentID: "nope", Amount: 10}, deps); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing record error = %v, want not found", err)
	}
}

type reminderFixture struct {
	payments *mockPaymentRecords
	players  *mockPlayers
	accounts *mockAccounts
	sender   *scriptedSender
	outbox   *mockOutbox
}

func newReminderFixture() *reminderFixture {
	f := &reminderFixture{
		payments: &mockPaymentRecords{records: map[string]payment.Record{}},
		players:  newMockPlayers(),
		accounts: newMockAccounts(),
		sender:   &scriptedSender{},
		outbox:   newMockOutbox(),
	}
	f.players.players["p1"] = player.Player{ID: "p1", ClubID: "club-1", FirstName: "Ana", LastName: "Petrova"}
	f.players.players["p2"] = player.Player{ID: "p2", ClubID: "club-1", FirstName: "Luka", LastName: "Petrov"}
	f.players.players["p3"] = player.Player{ID: "p3", ClubID: "club-1", FirstName: "Orphan", LastName: "Record"}
	f.players.links = []player.ParentLink{
		{PlayerID: "p1", AccountID: "acc-mum"},
		{PlayerID: "p2", AccountID: "acc-mum"},
	}
	f.accounts.byEmail["mum@example.mk"] = account.Account{ID: "acc-mum", Email: "mum@example.mk"}

	add := func(id, playerID, status, due string, paid int64) {
		f.payments.records[id] = payment.Record{
			ID: id, PlayerID: playerID, TeamID: "team-1", PeriodMonth: 3, PeriodYear: 2025,
			AmountDue: 3000, AmountPaid: paid, Status: status, DueDate: due,
		}
	}
	add("r1", "p1", payment.StatusUnpaid, "2025-03-05", 0)
	add("r2", "p2", payment.StatusUnpaid, "2025-03-05", 0)
	add("r3", "p3", payment.StatusUnpaid, "2025-03-05", 0)
	add("r4", "p1", payment.StatusPartial, "2025-03-05", 1000) // not overdue: partial stays partial
	add("r5", "p2", payment.StatusUnpaid, "2025-04-05", 0)     // not yet due
	return f
}

func (f *reminderFixture) deps() SendPaymentRemindersDeps {
	n := 0
	return SendPaymentRemindersDeps{
		Clubs:    &mockClubs{clubs: map[string]club.Club{"club-1": {ID: "club-1", Name: "FK Vardar Youth"}}},
		Teams:    &mockTeams{teams: []team.Team{{ID: "team-1", ClubID: "club-1", Name: "U12 Lions"}}},
		Payments: f.payments,
		Players:  f.players,
		Accounts: f.accounts,
		Sender:   f.sender,
		Outbox:   f.outbox,
		GenerateID: func() string {
			n++
			return fmt.Sprintf("ob-%d", n)
		},
		Now: func() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) },
	}
}

func TestExecuteSendPaymentReminders_OneEmailPerParent(t *testing.T) {
	f := newReminderFixture()
	res, err := ExecuteSendPaymentReminders(context.Background(), SendPaymentRemindersInput{ClubID: "club-1"}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := SendPaymentRemindersResult{OverdueRecords: 3, Parents: 1, Sent: 1, Unreachable: 1}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.sender.sent))
	}
	msg := f.sender.sent[0]
	if msg.To[0] != "mum@example.mk" {
		t.Errorf("to = %v", msg.To)
	}
	for _, want := range []string{"Ana Petrova", "Luka Petrov", "<strong>6000 MKD</strong>"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("body missing %q:\n%s", want, msg.HTML)
		}
	}
	if strings.Contains(msg.HTML, "Orphan") {
		t.Error("reminder mentions another family's player")
	}
	if f.payments.records["r1"].Status != payment.StatusUnpaid {
		t.Error("reminder run rewrote a stored status")
	}
}

func TestExecuteSendPaymentReminders_FailedSendIsQueued(t *testing.T) {
	f := newReminderFixture()
	f.sender.failuresLeft = 1

	res, err := ExecuteSendPaymentReminders(context.Background(), SendPaymentRemindersInput{ClubID: "club-1"}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 0 || res.Queued != 1 {
		t.Errorf("result = %+v, want one queued", res)
	}
	if len(f.outbox.entries) != 1 {
		t.Fatalf("outbox entries = %d, want 1", len(f.outbox.entries))
	}
	for _, e := range f.outbox.entries {
		if e.ErrorMessage != "provider unavailable" || e.Attempts != 1 {
			t.Errorf("entry = %+v", e)
		}
	}
}

func TestExecuteSendPaymentReminders_NothingOverdue(t *testing.T) {
	f := newReminderFixture()
	f.payments.records = map[string]payment.Record{}
	res, err := ExecuteSendPaymentReminders(context.Background(), SendPaymentRemindersInput{ClubID: "club-1"}, f.deps())
	if err != nil || res.OverdueRecords != 0 || len(f.sender.sent) != 0 {
		t.Errorf("result = %+v, err = %v", res, err)
	}

	if _, err := ExecuteSendPaymentReminders(context.Background(), SendPaymentRemindersInput{ClubID: "nope"}, f.deps()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown club error = %v", err)
	}
}
