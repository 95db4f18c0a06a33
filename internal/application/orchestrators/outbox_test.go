package orchestrators

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"clubify/internal/adapters/email"
	"clubify/internal/application/apperr"
	"clubify/internal/domain/outbox"
)

type mockOutbox struct {
	entries map[string]outbox.Entry
}

func newMockOutbox() *mockOutbox {
	return &mockOutbox{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, fmt.Errorf("outbox entry not found: %w", sql.ErrNoRows)
	}
	return e, nil
}

func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// scriptedSender fails while failuresLeft > 0, then succeeds.
type scriptedSender struct {
	failuresLeft int
	sent         []email.SendRequest
}

func (s *scriptedSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return email.SendResult{}, errors.New("provider unavailable")
	}
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("msg-%d", len(s.sent)), SentAt: time.Now()}, nil
}

func (s *scriptedSender) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	var out []email.SendResult
	for _, r := range reqs {
		res, err := s.Send(ctx, r)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func newTestProcessor(store *mockOutbox, sender email.Sender, now *time.Time) *OutboxProcessor {
	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		outbox.ActionTypeEmail: &EmailExecutor{Sender: sender},
	})
	p.now = func() time.Time { return *now }
	return p
}

func queueTestEmail(t *testing.T, store *mockOutbox, id string, now time.Time) {
	t.Helper()
	err := enqueueEmail(context.Background(), store, email.SendRequest{
		To: []string{"parent@example.mk"}, Subject: "Overdue fees", HTML: "<p>hi</p>",
	}, nil, id, now)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
}

func TestOutboxProcessor_DeliversPending(t *testing.T) {
	store := newMockOutbox()
	now := authNow
	queueTestEmail(t, store, "e1", now)
	sender := &scriptedSender{}

	res, err := newTestProcessor(store, sender, &now).ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	e := store.entries["e1"]
	if e.Status != outbox.StatusDone || e.ExternalID != "msg-1" || e.Attempts != 1 {
		t.Errorf("entry = %+v", e)
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "parent@example.mk" {
		t.Errorf("sent = %+v", sender.sent)
	}
}

func TestOutboxProcessor_BackoffThenExhaustion(t *testing.T) {
	store := newMockOutbox()
	now := authNow
	queueTestEmail(t, store, "e1", now)
	sender := &scriptedSender{failuresLeft: 100}
	p := newTestProcessor(store, sender, &now)

	if _, err := p.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	e := store.entries["e1"]
	if e.Status != outbox.StatusRetrying || e.Attempts != 1 || e.ErrorMessage == "" {
		t.Fatalf("after first failure entry = %+v", e)
	}

	// Backoff after one attempt is 2 * base; retrying sooner is deferred.
	now = now.Add(DefaultOutboxBaseDelay)
	res, _ := p.ProcessPending(context.Background())
	if res.Deferred != 1 || store.entries["e1"].Attempts != 1 {
		t.Errorf("expected deferral, got %+v", res)
	}

	for i := 0; i < outbox.DefaultMaxAttempts; i++ {
		now = now.Add(DefaultOutboxMaxDelay)
		if _, err := p.ProcessPending(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	e = store.entries["e1"]
	if e.Status != outbox.StatusFailed || e.Attempts != outbox.DefaultMaxAttempts {
		t.Errorf("exhausted entry = %+v", e)
	}
}

func TestOutboxProcessor_ManualRetryAndAbandon(t *testing.T) {
	store := newMockOutbox()
	now := authNow
	queueTestEmail(t, store, "failed", now)
	e := store.entries["failed"]
	e.Attempts = e.MaxAttempts
	e.Status = outbox.StatusFailed
	store.entries["failed"] = e
	queueTestEmail(t, store, "stale", now)

	p := newTestProcessor(store, &scriptedSender{}, &now)
	got, err := p.ProcessSingle(context.Background(), "failed")
	if err != nil {
		t.Fatalf("ProcessSingle: %v", err)
	}
	if got.Status != outbox.StatusDone {
		t.Errorf("manual retry status = %s, want done", got.Status)
	}
	if _, err := p.ProcessSingle(context.Background(), "failed"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("retrying a done entry: error = %v, want conflict", err)
	}

	abandoned, err := p.AbandonEntry(context.Background(), "stale")
	if err != nil || abandoned.Status != outbox.StatusAbandoned {
		t.Fatalf("AbandonEntry = %+v, %v", abandoned, err)
	}
	if _, err := p.ProcessSingle(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing entry error = %v, want not found", err)
	}
}

func TestEnqueueEmail_RecordsFirstFailure(t *testing.T) {
	store := newMockOutbox()
	err := enqueueEmail(context.Background(), store, email.SendRequest{
		To: []string{"x@example.mk"}, Subject: "s", HTML: "h", Tags: map[string]string{"kind": "payment_reminder"},
	}, errors.New("timeout"), "q1", authNow)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	e := store.entries["q1"]
	if e.Attempts != 1 || e.ErrorMessage != "timeout" || e.Status != outbox.StatusRetrying {
		t.Errorf("entry = %+v", e)
	}
	var payload EmailPayload
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Tags["kind"] != "payment_reminder" {
		t.Errorf("payload = %+v", payload)
	}
}
