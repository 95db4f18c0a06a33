package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"clubify/internal/application/apperr"
	"clubify/internal/application/orchestrators"
	"clubify/internal/application/projections"
	trainingStore "clubify/internal/adapters/storage/training"
	"clubify/internal/domain/access"
	"clubify/internal/domain/attendance"
	"clubify/internal/domain/civil"
)

func trainingDeps() orchestrators.TrainingDeps {
	return orchestrators.TrainingDeps{
		Teams:      stores.TeamStore,
		Training:   stores.TrainingStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	}
}

// dateRange reads optional from/to query dates.
func dateRange(r *http.Request) (string, string, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from != "" && !civil.Valid(from) {
		return "", "", apperr.Validation("from must be a date (YYYY-MM-DD)")
	}
	if to != "" && !civil.Valid(to) {
		return "", "", apperr.Validation("to must be a date (YYYY-MM-DD)")
	}
	return from, to, nil
}

// --- Sessions ---

// handleListSessions lists a team's sessions in date order
// (GET /api/teams/{teamID}/sessions?from=&to=).
func handleListSessions(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sessions, err := stores.TrainingStore.ListSessions(r.Context(), trainingStore.SessionFilter{
		TeamIDs: []string{t.ID},
		From:    from,
		To:      to,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]sessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type createSessionRequest struct {
	SessionDate     string `json:"sessionDate" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"startTime" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"durationMinutes" validate:"gt=0"`
	Location        string `json:"location"`
	Notes           string `json:"notes"`
}

// handleCreateSession schedules a one-off session (POST /api/teams/{teamID}/sessions).
func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := orchestrators.ExecuteCreateSession(r.Context(), orchestrators.CreateSessionInput{
		TeamID:          t.ID,
		SessionDate:     req.SessionDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Notes:           req.Notes,
	}, trainingDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(s))
}

type createRecurringRequest struct {
	DaysOfWeek      []int  `json:"daysOfWeek" validate:"required,min=1,dive,gte=0,lte=6"`
	StartTime       string `json:"startTime" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"durationMinutes" validate:"gt=0"`
	Location        string `json:"location"`
	Notes           string `json:"notes"`
	GenerateUntil   string `json:"generateUntil" validate:"required,datetime=2006-01-02"`
}

type recurringResponse struct {
	orchestrators.CreateRecurringSessionsResult
	Sessions []sessionDTO `json:"sessions"`
}

// handleCreateRecurringSessions expands a weekly pattern into sessions
// (POST /api/teams/{teamID}/sessions/recurring).
func handleCreateRecurringSessions(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	var req createRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := orchestrators.ExecuteCreateRecurringSessions(r.Context(), orchestrators.CreateRecurringSessionsInput{
		TeamID:          t.ID,
		DaysOfWeek:      req.DaysOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Notes:           req.Notes,
		GenerateUntil:   req.GenerateUntil,
	}, trainingDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := recurringResponse{CreateRecurringSessionsResult: res, Sessions: make([]sessionDTO, 0, len(res.Sessions))}
	for _, s := range res.Sessions {
		resp.Sessions = append(resp.Sessions, toSessionDTO(s))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleDeleteSession removes a session, or with scope=future the rest of its
// weekly pattern (DELETE /api/sessions/{sessionID}?scope=single|future).
func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s, _, ok := requireSessionRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	res, err := orchestrators.ExecuteDeleteTrainingSession(r.Context(), orchestrators.DeleteTrainingSessionInput{
		SessionID: s.ID,
		Scope:     r.URL.Query().Get("scope"),
	}, trainingDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Attendance ---

type recordAttendanceRequest struct {
	Marks []orchestrators.AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

type attendanceDTO struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	PlayerID   string    `json:"playerId"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	RecordedBy string    `json:"recordedBy"`
	RecordedAt time.Time `json:"recordedAt"`
}

func toAttendanceDTO(a attendance.Attendance) attendanceDTO {
	return attendanceDTO{
		ID:         a.ID,
		SessionID:  a.SessionID,
		PlayerID:   a.PlayerID,
		Status:     a.Status,
		Notes:      a.Notes,
		RecordedBy: a.RecordedBy,
		RecordedAt: a.RecordedAt,
	}
}

// handleRecordAttendance stores marks for a session, replacing earlier ones
// (PUT /api/sessions/{sessionID}/attendance).
func handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	s, c, ok := requireSessionRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	var req recordAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	marks, err := orchestrators.ExecuteRecordAttendance(r.Context(), orchestrators.RecordAttendanceInput{
		SessionID:  s.ID,
		Marks:      req.Marks,
		RecordedBy: c.AccountID,
	}, orchestrators.RecordAttendanceDeps{
		Sessions:   stores.TrainingStore,
		Rosters:    stores.RosterStore,
		Attendance: stores.AttendanceStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]attendanceDTO, 0, len(marks))
	for _, a := range marks {
		out = append(out, toAttendanceDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAttendanceStats tallies a team's attendance
// (GET /api/teams/{teamID}/attendance/stats?from=&to=).
func handleAttendanceStats(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := projections.QueryGetAttendanceStats(r.Context(), projections.GetAttendanceStatsQuery{
		TeamID: t.ID,
		From:   from,
		To:     to,
	}, projections.GetAttendanceStatsDeps{
		SessionStore:    stores.TrainingStore,
		AttendanceStore: stores.AttendanceStore,
		PlayerStore:     stores.PlayerStore,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Matches ---

func matchDeps() orchestrators.MatchDeps {
	return orchestrators.MatchDeps{
		Teams:      stores.TeamStore,
		Matches:    stores.MatchStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	}
}

// handleListMatches lists a team's fixtures (GET /api/teams/{teamID}/matches?from=&to=).
func handleListMatches(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RolePlayer)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	matches, err := stores.MatchStore.ListByTeams(r.Context(), []string{t.ID}, from, to)
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}

type createMatchRequest struct {
	Opponent    string `json:"opponent" validate:"required"`
	MatchDate   string `json:"matchDate" validate:"required,datetime=2006-01-02"`
	KickoffTime string `json:"kickoffTime" validate:"omitempty,datetime=15:04"`
	Location    string `json:"location"`
	IsHome      bool   `json:"isHome"`
	Competition string `json:"competition"`
}

// handleCreateMatch schedules a fixture (POST /api/teams/{teamID}/matches).
func handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	var req createMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := orchestrators.ExecuteCreateMatch(r.Context(), orchestrators.CreateMatchInput{
		TeamID:      t.ID,
		Opponent:    req.Opponent,
		MatchDate:   req.MatchDate,
		KickoffTime: req.KickoffTime,
		Location:    req.Location,
		IsHome:      req.IsHome,
		Competition: req.Competition,
	}, matchDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatchDTO(m))
}

type matchResultRequest struct {
	GoalsFor     *int `json:"goalsFor" validate:"required,gte=0"`
	GoalsAgainst *int `json:"goalsAgainst" validate:"required,gte=0"`
}

// handleRecordMatchResult sets the final score (PUT /api/matches/{matchID}/result).
func handleRecordMatchResult(w http.ResponseWriter, r *http.Request) {
	m, _, ok := requireMatchRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	var req matchResultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := orchestrators.ExecuteRecordMatchResult(r.Context(), orchestrators.RecordMatchResultInput{
		MatchID:      m.ID,
		GoalsFor:     *req.GoalsFor,
		GoalsAgainst: *req.GoalsAgainst,
	}, matchDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(updated))
}

// handleMatchStats summarises completed matches
// (GET /api/teams/{teamID}/matches/stats?from=&to=).
func handleMatchStats(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RolePlayer)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := projections.QueryGetMatchStats(r.Context(), projections.GetMatchStatsQuery{
		TeamID: t.ID,
		From:   from,
		To:     to,
	}, projections.GetMatchStatsDeps{MatchStore: stores.MatchStore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
