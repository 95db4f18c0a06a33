package projections

import (
	"context"
	"sort"
	"strings"

	playerStore "clubify/internal/adapters/storage/player"
	"clubify/internal/application/listutil"
	domainPlayer "clubify/internal/domain/player"
)

// PlayerRow is a player as listed to clients.
type PlayerRow struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Position     string `json:"position,omitempty"`
	JerseyNumber int    `json:"jerseyNumber,omitempty"`
}

func playerRow(p domainPlayer.Player) PlayerRow {
	return PlayerRow{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		DateOfBirth:  p.DateOfBirth,
		Position:     p.Position,
		JerseyNumber: p.JerseyNumber,
	}
}

// GetPlayerListQuery carries query parameters.
type GetPlayerListQuery struct {
	ClubID string
	TeamID string
	Search string
	Page   listutil.PageParams
}

// GetPlayerListResult carries the query result.
type GetPlayerListResult struct {
	Players []PlayerRow       `json:"players"`
	Page    listutil.PageInfo `json:"page"`
}

// GetPlayerListDeps holds dependencies for GetPlayerList.
type GetPlayerListDeps struct {
	PlayerStore PlayerStore
}

// QueryGetPlayerList pages through a club's players.
// PRE: ClubID is non-empty
func QueryGetPlayerList(ctx context.Context, query GetPlayerListQuery, deps GetPlayerListDeps) (GetPlayerListResult, error) {
	filter := playerStore.ListFilter{
		ClubID: query.ClubID,
		TeamID: query.TeamID,
		Search: strings.TrimSpace(query.Search),
	}
	total, err := deps.PlayerStore.Count(ctx, filter)
	if err != nil {
		return GetPlayerListResult{}, err
	}
	page := query.Page
	if page.PerPage == 0 {
		page = listutil.PageParams{Page: 1, PerPage: listutil.DefaultPerPage}
	}
	info := listutil.NewPageInfo(page.Page, page.PerPage, total)
	filter.Limit = info.PerPage
	filter.Offset = (info.Page - 1) * info.PerPage

	players, err := deps.PlayerStore.List(ctx, filter)
	if err != nil {
		return GetPlayerListResult{}, err
	}
	rows := make([]PlayerRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, playerRow(p))
	}
	return GetPlayerListResult{Players: rows, Page: info}, nil
}

// RosterEntry is a player currently on a team.
type RosterEntry struct {
	PlayerRow
	AssignmentID string `json:"assignmentId"`
	JoinedAt     string `json:"joinedAt"`
}

// GetTeamRosterDeps holds dependencies for GetTeamRoster.
type GetTeamRosterDeps struct {
	RosterStore RosterStore
	PlayerStore PlayerStore
}

// QueryGetTeamRoster lists a team's active players ordered by last then first name.
func QueryGetTeamRoster(ctx context.Context, teamID string, deps GetTeamRosterDeps) ([]RosterEntry, error) {
	assignments, err := deps.RosterStore.ListActiveByTeams(ctx, []string{teamID})
	if err != nil {
		return nil, err
	}
	out := make([]RosterEntry, 0, len(assignments))
	if len(assignments) == 0 {
		return out, nil
	}
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.PlayerID
	}
	players, err := deps.PlayerStore.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domainPlayer.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, a := range assignments {
		p, ok := byID[a.PlayerID]
		if !ok {
			continue
		}
		out = append(out, RosterEntry{
			PlayerRow:    playerRow(p),
			AssignmentID: a.ID,
			JoinedAt:     a.JoinedAt.Format("2006-01-02"),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}
