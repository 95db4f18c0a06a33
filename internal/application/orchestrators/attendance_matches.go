package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/attendance"
	"clubify/internal/domain/match"
	"clubify/internal/domain/training"
)

// SessionReader loads a single training session.
type SessionReader interface {
	GetSession(ctx context.Context, id string) (training.Session, error)
}

// AttendanceWriter upserts attendance marks.
type AttendanceWriter interface {
	Upsert(ctx context.Context, marks []attendance.Attendance) error
}

// AttendanceMark is one player's status in a bulk record request.
type AttendanceMark struct {
	PlayerID string `json:"playerId" validate:"required"`
	Status   string `json:"status" validate:"required"`
	Notes    string `json:"notes"`
}

// RecordAttendanceInput carries input for RecordAttendance.
type RecordAttendanceInput struct {
	SessionID  string
	Marks      []AttendanceMark
	RecordedBy string
}

// RecordAttendanceDeps holds dependencies for RecordAttendance.
type RecordAttendanceDeps struct {
	Sessions   SessionReader
	Rosters    ActiveRosterLister
	Attendance AttendanceWriter
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteRecordAttendance stores marks for a session, overwriting any
// earlier mark for the same player.
// PRE: every PlayerID is on the session's team roster
// POST: one row per (session, player) holds the latest status
func ExecuteRecordAttendance(ctx context.Context, input RecordAttendanceInput, deps RecordAttendanceDeps) ([]attendance.Attendance, error) {
	if len(input.Marks) == 0 {
		return nil, apperr.Validation("at least one attendance mark is required")
	}
	sess, err := deps.Sessions.GetSession(ctx, input.SessionID)
	if err != nil {
		return nil, lookupErr(err, "session", "get session")
	}

	active, err := deps.Rosters.ListActiveByTeams(ctx, []string{sess.TeamID})
	if err != nil {
		return nil, apperr.Store("list roster", err)
	}
	onTeam := make(map[string]bool, len(active))
	for _, a := range active {
		onTeam[a.PlayerID] = true
	}

	now := nowOr(deps.Now)
	newID := idFunc(deps.GenerateID)
	seen := make(map[string]int, len(input.Marks))
	var marks []attendance.Attendance
	for _, m := range input.Marks {
		a := attendance.Attendance{
			ID:         newID(),
			SessionID:  sess.ID,
			PlayerID:   m.PlayerID,
			Status:     strings.ToLower(strings.TrimSpace(m.Status)),
			Notes:      strings.TrimSpace(m.Notes),
			RecordedBy: input.RecordedBy,
			RecordedAt: now,
		}
		if err := a.Validate(); err != nil {
			return nil, apperr.Invalid(err)
		}
		if !onTeam[a.PlayerID] {
			return nil, apperr.Validation(fmt.Sprintf("player %s is not on this team", a.PlayerID))
		}
		// Last mark for a player in one request wins.
		if i, dup := seen[a.PlayerID]; dup {
			marks[i] = a
			continue
		}
		seen[a.PlayerID] = len(marks)
		marks = append(marks, a)
	}

	if err := deps.Attendance.Upsert(ctx, marks); err != nil {
		return nil, apperr.Store("save attendance", err)
	}
	slog.Info("training_event", "event", "attendance_recorded",
		"session_id", sess.ID, "team_id", sess.TeamID, "marks", len(marks))
	return marks, nil
}

// --- Matches ---

// MatchStore persists matches.
type MatchStore interface {
	GetByID(ctx context.Context, id string) (match.Match, error)
	Save(ctx context.Context, m match.Match) error
}

// CreateMatchInput carries input for CreateMatch.
type CreateMatchInput struct {
	TeamID      string
	Opponent    string
	MatchDate   string
	KickoffTime string
	Location    string
	IsHome      bool
	Competition string
}

// MatchDeps holds dependencies for the match orchestrators.
type MatchDeps struct {
	Teams      TeamReader
	Matches    MatchStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateMatch schedules a fixture for a team.
func ExecuteCreateMatch(ctx context.Context, input CreateMatchInput, deps MatchDeps) (match.Match, error) {
	if _, err := deps.Teams.GetByID(ctx, input.TeamID); err != nil {
		return match.Match{}, lookupErr(err, "team", "get team")
	}
	m := match.Match{
		ID:          idFunc(deps.GenerateID)(),
		TeamID:      input.TeamID,
		Opponent:    strings.TrimSpace(input.Opponent),
		MatchDate:   input.MatchDate,
		KickoffTime: input.KickoffTime,
		Location:    strings.TrimSpace(input.Location),
		IsHome:      input.IsHome,
		Competition: strings.TrimSpace(input.Competition),
		CreatedAt:   nowOr(deps.Now),
	}
	if err := m.Validate(); err != nil {
		return match.Match{}, apperr.Invalid(err)
	}
	if err := deps.Matches.Save(ctx, m); err != nil {
		return match.Match{}, apperr.Store("save match", err)
	}
	slog.Info("match_event", "event", "match_created", "match_id", m.ID, "team_id", m.TeamID, "date", m.MatchDate)
	return m, nil
}

// RecordMatchResultInput carries input for RecordMatchResult.
type RecordMatchResultInput struct {
	MatchID      string
	GoalsFor     int
	GoalsAgainst int
}

// ExecuteRecordMatchResult sets the final score.
// POST: the match is completed; a second call corrects the score
func ExecuteRecordMatchResult(ctx context.Context, input RecordMatchResultInput, deps MatchDeps) (match.Match, error) {
	m, err := deps.Matches.GetByID(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, lookupErr(err, "match", "get match")
	}
	if err := m.RecordResult(input.GoalsFor, input.GoalsAgainst); err != nil {
		return match.Match{}, apperr.Invalid(err)
	}
	if err := deps.Matches.Save(ctx, m); err != nil {
		return match.Match{}, apperr.Store("save match", err)
	}
	slog.Info("match_event", "event", "result_recorded",
		"match_id", m.ID, "team_id", m.TeamID, "goals_for", m.GoalsFor, "goals_against", m.GoalsAgainst)
	return m, nil
}
