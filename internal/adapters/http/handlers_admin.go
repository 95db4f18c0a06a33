package web

import (
	"net/http"
	"time"

	auditStore "clubify/internal/adapters/storage/audit"
	"clubify/internal/application/orchestrators"
	"clubify/internal/domain/access"
	auditDomain "clubify/internal/domain/audit"
	"clubify/internal/domain/outbox"
)

// handleHealthz reports liveness and database reachability (GET /healthz).
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if stores.Ping != nil {
		if err := stores.Ping(); err != nil {
			internalError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleClubAudit lists a club's audit trail, newest first
// (GET /api/clubs/{clubID}/audit).
// PRE: caller is club_admin of the club
// POST: at most limit events, filtered by category, action, actor_id, from and to
func handleClubAudit(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleClubAdmin, clubID); !ok {
		return
	}

	q := r.URL.Query()
	filter := auditStore.Filter{ClubID: &clubID}
	if category := q.Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := q.Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if actorID := q.Get("actor_id"); actorID != "" {
		filter.ActorID = &actorID
	}
	if from := q.Get("from"); from != "" {
		filter.FromDate = &from
	}
	if to := q.Get("to"); to != "" {
		filter.ToDate = &to
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleAdminPerf returns a latency snapshot (GET /api/admin/perf?minutes=&top=).
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSuperAdmin(w, r); !ok {
		return
	}
	minutes, err := queryInt(r, "minutes")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if minutes <= 0 {
		minutes = 60
	}
	top, err := queryInt(r, "top")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if top <= 0 {
		top = 10
	}
	if perfCollector == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "performance collection disabled")
		return
	}
	since := clock().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}

// --- Outbox ---

type outboxEntryDTO struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"actionType"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"maxAttempts"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExternalID      string     `json:"externalId,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
}

func toOutboxEntryDTO(e outbox.Entry) outboxEntryDTO {
	d := outboxEntryDTO{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ExternalID:   e.ExternalID,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		at := e.LastAttemptedAt
		d.LastAttemptedAt = &at
	}
	return d
}

func outboxProcessor() *orchestrators.OutboxProcessor {
	return orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: emailSender},
	})
}

// handleAdminOutbox lists failed entries, or with status=all everything still
// queued (GET /api/admin/outbox?status=failed|all&limit=).
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSuperAdmin(w, r); !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var entries []outbox.Entry
	switch r.URL.Query().Get("status") {
	case "", outbox.StatusFailed:
		entries, err = stores.OutboxStore.ListFailed(r.Context(), limit)
	case "all":
		entries, err = stores.OutboxStore.ListPending(r.Context(), limit)
	default:
		writeErrorMessage(w, http.StatusBadRequest, "status must be failed or all")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]outboxEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toOutboxEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAdminOutboxAction retries or abandons one entry
// (POST /api/admin/outbox/{entryID}/{retry|abandon}).
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSuperAdmin(w, r); !ok {
		return
	}
	processor := outboxProcessor()
	entryID := r.PathValue("entryID")

	var (
		entry outbox.Entry
		err   error
	)
	switch r.PathValue("action") {
	case "retry":
		entry, err = processor.ProcessSingle(r.Context(), entryID)
	case "abandon":
		entry, err = processor.AbandonEntry(r.Context(), entryID)
	default:
		notFound(w, "outbox action")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxEntryDTO(entry))
}
