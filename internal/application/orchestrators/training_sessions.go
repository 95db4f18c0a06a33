package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/civil"
	"clubify/internal/domain/team"
	"clubify/internal/domain/training"

	"github.com/google/uuid"
)

// TeamReader loads a team.
type TeamReader interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
}

// TrainingStore defines the training persistence used by the session orchestrators.
type TrainingStore interface {
	CreatePattern(ctx context.Context, recurrences []training.Recurrence, sessions []training.Session) error
	GetRecurrence(ctx context.Context, id string) (training.Recurrence, error)
	ListRecurrencesByTeam(ctx context.Context, teamID string) ([]training.Recurrence, error)
	InsertSession(ctx context.Context, s training.Session) error
	GetSession(ctx context.Context, id string) (training.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeletePatternFrom(ctx context.Context, recurrenceIDs []string, fromDate string) (int, error)
}

// TrainingDeps holds dependencies for the training session orchestrators.
type TrainingDeps struct {
	Teams    TeamReader
	Training TrainingStore

	GenerateID func() string
	Now        func() time.Time
}

// CreateSessionInput carries input for a one-off session.
type CreateSessionInput struct {
	TeamID          string
	SessionDate     string
	StartTime       string
	DurationMinutes int
	Location        string
	Notes           string
}

// ExecuteCreateSession stores a single session with no recurrence.
// PRE: team exists
// POST: Session persisted with an empty RecurrenceID
func ExecuteCreateSession(ctx context.Context, input CreateSessionInput, deps TrainingDeps) (training.Session, error) {
	if _, err := deps.Teams.GetByID(ctx, input.TeamID); err != nil {
		return training.Session{}, lookupErr(err, "team", "get team")
	}

	s := training.Session{
		ID:              idFunc(deps.GenerateID)(),
		TeamID:          input.TeamID,
		SessionDate:     input.SessionDate,
		StartTime:       input.StartTime,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		Notes:           input.Notes,
		CreatedAt:       nowOr(deps.Now),
	}
	if err := s.Validate(); err != nil {
		return training.Session{}, apperr.Invalid(err)
	}
	if err := deps.Training.InsertSession(ctx, s); err != nil {
		return training.Session{}, apperr.Store("insert session", err)
	}

	slog.Info("training_event", "event", "session_created", "team_id", s.TeamID, "session_id", s.ID, "date", s.SessionDate)
	return s, nil
}

// CreateRecurringSessionsInput carries a weekly pattern and the last date to expand to.
type CreateRecurringSessionsInput struct {
	TeamID          string
	DaysOfWeek      []int
	StartTime       string
	DurationMinutes int
	Location        string
	Notes           string
	GenerateUntil   string // YYYY-MM-DD, inclusive
}

// CreateRecurringSessionsResult describes what was materialised.
type CreateRecurringSessionsResult struct {
	PatternID     string             `json:"patternId"`
	RecurrenceIDs []string           `json:"recurrenceIds"`
	Sessions      []training.Session `json:"-"`
	SessionCount  int                `json:"sessionCount"`
}

// ExecuteCreateRecurringSessions stores one recurrence per weekday and a
// session for every matching date from today through GenerateUntil, which may
// lie at most one year ahead.
// PRE: team exists
// POST: recurrences share a fresh pattern id and are returned in DaysOfWeek order
// INVARIANT: session dates are built from local calendar components
func ExecuteCreateRecurringSessions(ctx context.Context, input CreateRecurringSessionsInput, deps TrainingDeps) (CreateRecurringSessionsResult, error) {
	p := training.Pattern{
		TeamID:          input.TeamID,
		DaysOfWeek:      input.DaysOfWeek,
		StartTime:       input.StartTime,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		Notes:           input.Notes,
	}
	if err := p.Validate(); err != nil {
		return CreateRecurringSessionsResult{}, apperr.Invalid(err)
	}

	now := nowOr(deps.Now)
	today := civil.StartOfDay(now)
	until, err := civil.Parse(input.GenerateUntil, now.Location())
	if err != nil {
		return CreateRecurringSessionsResult{}, apperr.Invalid(err)
	}
	if until.Before(today) {
		return CreateRecurringSessionsResult{}, apperr.Invalid(training.ErrUntilBeforeToday)
	}
	if until.After(today.AddDate(1, 0, 0)) {
		return CreateRecurringSessionsResult{}, apperr.Invalid(training.ErrUntilTooFar)
	}

	if _, err := deps.Teams.GetByID(ctx, input.TeamID); err != nil {
		return CreateRecurringSessionsResult{}, lookupErr(err, "team", "get team")
	}

	newID := idFunc(deps.GenerateID)
	patternID := uuid.New().String()
	rows := p.Recurrences(patternID, newID, now)
	sessions := training.Expand(rows, today, until)
	for i := range sessions {
		sessions[i].ID = newID()
		sessions[i].CreatedAt = now
	}

	if err := deps.Training.CreatePattern(ctx, rows, sessions); err != nil {
		slog.Error("training_event", "event", "pattern_create_failed",
			"team_id", input.TeamID, "sessions", len(sessions), "error", err)
		return CreateRecurringSessionsResult{}, apperr.Store("create training pattern", err)
	}

	slog.Info("training_event", "event", "pattern_created",
		"team_id", input.TeamID, "pattern_id", patternID,
		"days", len(rows), "sessions", len(sessions), "until", civil.Format(until))

	return CreateRecurringSessionsResult{
		PatternID:     patternID,
		RecurrenceIDs: training.RecurrenceIDs(rows),
		Sessions:      sessions,
		SessionCount:  len(sessions),
	}, nil
}

// DeleteTrainingSessionInput names the session and how far the delete reaches.
type DeleteTrainingSessionInput struct {
	SessionID string
	Scope     string // single (default) or future
}

// DeleteTrainingSessionResult reports how many sessions were removed.
type DeleteTrainingSessionResult struct {
	Scope              string `json:"scope"`
	SessionsDeleted    int    `json:"sessionsDeleted"`
	RecurrencesDeleted int    `json:"recurrencesDeleted"`
}

// ExecuteDeleteTrainingSession removes one session, or that session and every
// later session of its weekly pattern together with the pattern itself.
// PRE: session exists
// POST: scope=future removes sessions dated on or after the target across all
// weekdays of the pattern; earlier sessions remain
func ExecuteDeleteTrainingSession(ctx context.Context, input DeleteTrainingSessionInput, deps TrainingDeps) (DeleteTrainingSessionResult, error) {
	scope, err := training.ParseDeleteScope(input.Scope)
	if err != nil {
		return DeleteTrainingSessionResult{}, apperr.Invalid(err)
	}

	s, err := deps.Training.GetSession(ctx, input.SessionID)
	if err != nil {
		return DeleteTrainingSessionResult{}, lookupErr(err, "session", "get session")
	}

	if scope == training.DeleteSingle || !s.IsRecurring() {
		if err := deps.Training.DeleteSession(ctx, s.ID); err != nil {
			return DeleteTrainingSessionResult{}, apperr.Store("delete session", err)
		}
		slog.Info("training_event", "event", "session_deleted", "team_id", s.TeamID, "session_id", s.ID)
		return DeleteTrainingSessionResult{Scope: scope, SessionsDeleted: 1}, nil
	}

	rec, err := deps.Training.GetRecurrence(ctx, s.RecurrenceID)
	if err != nil {
		if !isNoRows(err) {
			return DeleteTrainingSessionResult{}, apperr.Store("get recurrence", err)
		}
		// The recurrence row is gone; the session is effectively one-off.
		if err := deps.Training.DeleteSession(ctx, s.ID); err != nil {
			return DeleteTrainingSessionResult{}, apperr.Store("delete session", err)
		}
		return DeleteTrainingSessionResult{Scope: scope, SessionsDeleted: 1}, nil
	}

	candidates, err := deps.Training.ListRecurrencesByTeam(ctx, rec.TeamID)
	if err != nil {
		return DeleteTrainingSessionResult{}, apperr.Store("list recurrences", err)
	}
	group := training.GroupOf(rec, candidates)
	ids := training.RecurrenceIDs(group)

	deleted, err := deps.Training.DeletePatternFrom(ctx, ids, s.SessionDate)
	if err != nil {
		slog.Error("training_event", "event", "pattern_delete_failed",
			"team_id", rec.TeamID, "pattern_id", rec.PatternID, "from", s.SessionDate, "error", err)
		return DeleteTrainingSessionResult{}, apperr.Store("delete training pattern", err)
	}

	slog.Info("training_event", "event", "pattern_deleted",
		"team_id", rec.TeamID, "pattern_id", rec.PatternID, "from", s.SessionDate,
		"recurrences", len(ids), "sessions", deleted)

	return DeleteTrainingSessionResult{
		Scope:              scope,
		SessionsDeleted:    deleted,
		RecurrencesDeleted: len(ids),
	}, nil
}
