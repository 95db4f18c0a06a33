package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubify/internal/adapters/email"
	"clubify/internal/application/apperr"
	"clubify/internal/domain/outbox"
)

// OutboxStore defines the outbox persistence used by the processor.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's id for the delivered action.
	Execute(ctx context.Context, payload string) (string, error)
}

// Backoff defaults for outbox retries.
const (
	DefaultOutboxBaseDelay = 30 * time.Second
	DefaultOutboxMaxDelay  = time.Hour
	DefaultOutboxBatchSize = 50
)

// OutboxProcessor retries queued external actions with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: DefaultOutboxBaseDelay,
		maxDelay:  DefaultOutboxMaxDelay,
		batchSize: DefaultOutboxBatchSize,
		now:       time.Now,
	}
}

// OutboxRunResult counts what one pass did.
type OutboxRunResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Deferred  int `json:"deferred"`
}

// ProcessPending attempts every pending entry whose backoff has elapsed.
// PRE: Context is valid
// POST: Attempted entries are saved as done, retrying or failed
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (OutboxRunResult, error) {
	var res OutboxRunResult
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return res, apperr.Store("list pending outbox entries", err)
	}

	for _, entry := range entries {
		if !entry.DueForRetry(p.now(), p.baseDelay, p.maxDelay) {
			res.Deferred++
			continue
		}
		res.Processed++
		ok, err := p.attempt(ctx, &entry)
		if err != nil {
			slog.Error("outbox_event", "event", "save_failed", "entry_id", entry.ID, "error", err)
		}
		if ok {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}

	if res.Processed > 0 {
		slog.Info("outbox_event", "event", "run_complete",
			"processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed, "deferred", res.Deferred)
	}
	return res, nil
}

// attempt runs one entry and saves the outcome. Reports whether delivery succeeded.
func (p *OutboxProcessor) attempt(ctx context.Context, entry *outbox.Entry) (bool, error) {
	entry.MarkAttempt(p.now())

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return false, p.store.Save(ctx, *entry)
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_event", "event", "action_failed",
			"entry_id", entry.ID, "action_type", entry.ActionType, "attempt", entry.Attempts, "error", err)
		return false, p.store.Save(ctx, *entry)
	}

	entry.MarkSuccess(externalID)
	slog.Info("outbox_event", "event", "action_succeeded",
		"entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	return true, p.store.Save(ctx, *entry)
}

// ProcessSingle retries one entry now, ignoring backoff (admin retry).
// PRE: entryID is non-empty
// POST: Entry attempted and saved
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (outbox.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return outbox.Entry{}, lookupErr(err, "outbox entry", "get outbox entry")
	}
	if entry.Status == outbox.StatusDone || entry.Status == outbox.StatusAbandoned {
		return outbox.Entry{}, apperr.Conflict(fmt.Errorf("entry is %s: %w", entry.Status, outbox.ErrNotRetryable))
	}
	// An operator retry grants one more attempt to an exhausted entry.
	if entry.Attempts >= entry.MaxAttempts {
		entry.MaxAttempts = entry.Attempts + 1
	}
	if _, err := p.attempt(ctx, &entry); err != nil {
		return outbox.Entry{}, apperr.Store("save outbox entry", err)
	}
	return entry, nil
}

// AbandonEntry marks an entry as abandoned by an operator.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) (outbox.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return outbox.Entry{}, lookupErr(err, "outbox entry", "get outbox entry")
	}
	if entry.Status == outbox.StatusDone {
		return outbox.Entry{}, apperr.Conflict(fmt.Errorf("entry is done: %w", outbox.ErrNotRetryable))
	}
	entry.MarkAbandoned()
	if err := p.store.Save(ctx, entry); err != nil {
		return outbox.Entry{}, apperr.Store("save outbox entry", err)
	}
	slog.Info("outbox_event", "event", "abandoned", "entry_id", entry.ID)
	return entry, nil
}

// --- Email ---

// EmailPayload is the JSON stored in an email outbox entry.
type EmailPayload struct {
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// EmailExecutor replays queued emails through a Sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching EmailPayload
// POST: email accepted by the provider; returns its message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if len(p.To) == 0 {
		return "", errors.New("email payload has no recipients")
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{To: p.To, Subject: p.Subject, HTML: p.HTML, Tags: p.Tags})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// OutboxWriter stores new outbox entries.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// enqueueEmail queues req for later delivery. cause is recorded as the
// first failure when the email was already tried once.
func enqueueEmail(ctx context.Context, w OutboxWriter, req email.SendRequest, cause error, id string, now time.Time) error {
	body, err := json.Marshal(EmailPayload{To: req.To, Subject: req.Subject, HTML: req.HTML, Tags: req.Tags})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}
	entry := outbox.Entry{
		ID:         id,
		ActionType: outbox.ActionTypeEmail,
		Payload:    string(body),
		Status:     outbox.StatusPending,
		CreatedAt:  now,
	}
	if cause != nil {
		entry.MarkAttempt(now)
		entry.ErrorMessage = cause.Error()
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return w.Save(ctx, entry)
}

// --- Scheduled runs ---

// OutboxRetryDeps provides the dependencies for a scheduled outbox pass.
type OutboxRetryDeps struct {
	Processor *OutboxProcessor
}

// ExecuteOutboxRetry runs one pass of the processor.
// PRE: Deps are valid and store is connected
// POST: All eligible entries are processed, results logged
func ExecuteOutboxRetry(ctx context.Context, deps OutboxRetryDeps) error {
	_, err := deps.Processor.ProcessPending(ctx)
	return err
}
