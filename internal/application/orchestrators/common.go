package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/audit"

	"github.com/google/uuid"
)

// AuditRecorder appends audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// lookupErr maps a failed store read: a missing row becomes a NotFound
// error naming what, anything else a StoreError for op.
func lookupErr(err error, what, op string) error {
	if isNoRows(err) {
		return apperr.NotFound(what)
	}
	return apperr.Store(op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// recordAudit saves ev when a recorder is configured. A failed write is
// logged and otherwise ignored; the audited operation has already happened.
func recordAudit(ctx context.Context, rec AuditRecorder, ev audit.Event) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, ev); err != nil {
		slog.Error("audit_event", "event", "save_failed",
			"category", ev.Category, "action", ev.Action, "club_id", ev.ClubID, "error", err)
	}
}

func nowOr(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

func idFunc(f func() string) func() string {
	if f == nil {
		return func() string { return uuid.New().String() }
	}
	return f
}
