package projections

import (
	"context"

	"clubify/internal/adapters/storage/training"
	domainAttendance "clubify/internal/domain/attendance"
	domainMatch "clubify/internal/domain/match"
)

// GetAttendanceStatsQuery carries query parameters. From/To are optional YYYY-MM-DD bounds.
type GetAttendanceStatsQuery struct {
	TeamID string
	From   string
	To     string
}

// PlayerAttendance is one player's tally with their display name.
type PlayerAttendance struct {
	domainAttendance.PlayerStats
	Name string `json:"name"`
}

// GetAttendanceStatsResult carries the query result.
type GetAttendanceStatsResult struct {
	Sessions   int                `json:"sessions"`
	Recorded   int                `json:"recorded"`
	Attended   int                `json:"attended"`
	Percentage float64            `json:"percentage"`
	Players    []PlayerAttendance `json:"players"`
}

// GetAttendanceStatsDeps holds dependencies for GetAttendanceStats.
type GetAttendanceStatsDeps struct {
	SessionStore    SessionStore
	AttendanceStore AttendanceStore
	PlayerStore     PlayerStore
}

// QueryGetAttendanceStats tallies attendance over a team's sessions in a date range.
// POST: percentages count present and late over recorded marks; 0 when nothing recorded
func QueryGetAttendanceStats(ctx context.Context, query GetAttendanceStatsQuery, deps GetAttendanceStatsDeps) (GetAttendanceStatsResult, error) {
	sessions, err := deps.SessionStore.ListSessions(ctx, training.SessionFilter{
		TeamIDs: []string{query.TeamID},
		From:    query.From,
		To:      query.To,
	})
	if err != nil {
		return GetAttendanceStatsResult{}, err
	}
	res := GetAttendanceStatsResult{Sessions: len(sessions), Players: []PlayerAttendance{}}
	if len(sessions) == 0 {
		return res, nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	marks, err := deps.AttendanceStore.ListBySessions(ctx, ids)
	if err != nil {
		return GetAttendanceStatsResult{}, err
	}
	summary := domainAttendance.Summarize(len(sessions), marks)
	res.Recorded = summary.Recorded
	res.Attended = summary.Attended
	res.Percentage = summary.Percentage
	if len(summary.Players) == 0 {
		return res, nil
	}

	playerIDs := make([]string, len(summary.Players))
	for i, ps := range summary.Players {
		playerIDs[i] = ps.PlayerID
	}
	players, err := deps.PlayerStore.ListByIDs(ctx, playerIDs)
	if err != nil {
		return GetAttendanceStatsResult{}, err
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.FullName()
	}
	for _, ps := range summary.Players {
		res.Players = append(res.Players, PlayerAttendance{PlayerStats: ps, Name: names[ps.PlayerID]})
	}
	return res, nil
}

// GetMatchStatsQuery carries query parameters. From/To are optional YYYY-MM-DD bounds.
type GetMatchStatsQuery struct {
	TeamID string
	From   string
	To     string
}

// GetMatchStatsDeps holds dependencies for GetMatchStats.
type GetMatchStatsDeps struct {
	MatchStore MatchStore
}

// QueryGetMatchStats summarises a team's completed matches.
func QueryGetMatchStats(ctx context.Context, query GetMatchStatsQuery, deps GetMatchStatsDeps) (domainMatch.Stats, error) {
	matches, err := deps.MatchStore.ListByTeams(ctx, []string{query.TeamID}, query.From, query.To)
	if err != nil {
		return domainMatch.Stats{}, err
	}
	return domainMatch.Summarize(matches), nil
}
