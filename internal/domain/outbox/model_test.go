package outbox_test

import (
	"errors"
	"testing"
	"time"

	"clubify/internal/domain/outbox"
)

func TestEntry_Validate(t *testing.T) {
	e := outbox.Entry{ActionType: outbox.ActionTypeEmail, Payload: "{}", CreatedAt: time.Now()}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if e.MaxAttempts != outbox.DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want default", e.MaxAttempts)
	}
	if err := (&outbox.Entry{Payload: "{}", CreatedAt: time.Now()}).Validate(); err != outbox.ErrEmptyActionType {
		t.Errorf("missing action = %v", err)
	}
}

func TestEntry_Lifecycle(t *testing.T) {
	now := time.Date(2025, 3, 6, 7, 0, 0, 0, time.UTC)
	e := outbox.Entry{Status: outbox.StatusPending, MaxAttempts: 2}

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("smtp down"))
	if e.Status != outbox.StatusRetrying || !e.CanRetry() {
		t.Fatalf("after first failure: %+v", e)
	}
	e.MarkAttempt(now)
	e.MarkFailed(errors.New("smtp down"))
	if e.Status != outbox.StatusFailed || e.CanRetry() || !e.IsTerminal() {
		t.Fatalf("after exhausting attempts: %+v", e)
	}

	ok := outbox.Entry{Status: outbox.StatusPending, MaxAttempts: 3}
	ok.MarkAttempt(now)
	ok.MarkSuccess("msg-1")
	if !ok.IsTerminal() || ok.ExternalID != "msg-1" {
		t.Errorf("after success: %+v", ok)
	}
}

func TestEntry_Backoff(t *testing.T) {
	base, maxDelay := time.Minute, time.Hour
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Minute},
		{1, 2 * time.Minute},
		{3, 8 * time.Minute},
		{10, time.Hour},
		{64, time.Hour},
	}
	for _, tt := range tests {
		e := outbox.Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(base, maxDelay); got != tt.want {
			t.Errorf("NextRetryDelay(attempts=%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}

	last := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	e := outbox.Entry{Attempts: 1, LastAttemptedAt: last}
	if e.DueForRetry(last.Add(time.Minute), base, maxDelay) {
		t.Error("should wait for backoff")
	}
	if !e.DueForRetry(last.Add(2*time.Minute), base, maxDelay) {
		t.Error("backoff elapsed, should be due")
	}
}
