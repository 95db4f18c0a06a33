package orchestrators

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	playerStore "clubify/internal/adapters/storage/player"
	"clubify/internal/application/apperr"
	"clubify/internal/domain/audit"
	"clubify/internal/domain/player"
)

// importExistingLimit bounds the lookup of a club's current players for duplicate detection.
const importExistingLimit = 10000

// ImportPlayersInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row; ClubID is the caller's club.
// POST: Returns aggregate counts and per-row errors; nothing is written when DryRun=true.
// INVARIANT: Existing players are never modified.
type ImportPlayersInput struct {
	ClubID     string
	Reader     io.Reader
	DryRun     bool
	ActorID    string
	ActorEmail string
}

// ImportPlayersResult holds aggregate counts and per-row errors from an import run.
type ImportPlayersResult struct {
	Total    int                  `json:"total"`
	Created  int                  `json:"created"`
	Assigned int                  `json:"assigned"`
	Skipped  int                  `json:"skipped"`
	Errors   []ImportPlayerRowErr `json:"errors"`
	DryRun   bool                 `json:"dryRun"`
	Unknown  []string             `json:"unknownColumns,omitempty"`
}

// ImportPlayerRowErr describes a problem with a single CSV row. Row counts the header as row 1.
type ImportPlayerRowErr struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportPlayerDirectory lists and saves a club's players.
type ImportPlayerDirectory interface {
	List(ctx context.Context, filter playerStore.ListFilter) ([]player.Player, error)
	Save(ctx context.Context, p player.Player) error
}

// ImportPlayersDeps holds external dependencies for the import orchestrator.
type ImportPlayersDeps struct {
	Teams   TeamLister
	Players ImportPlayerDirectory
	Rosters RosterStore
	Audit   AuditRecorder

	GenerateID func() string
	Now        func() time.Time
}

var importColumns = map[string]bool{
	"FIRST_NAME": true, "LAST_NAME": true, "DATE_OF_BIRTH": true,
	"POSITION": true, "JERSEY": true, "TEAM": true,
}

// ExecuteImportPlayers parses a CSV of players and registers them in a club.
// A TEAM cell names one of the club's teams (case-insensitive); the new player
// is put on that team's roster. Rows matching an existing player by name and
// date of birth are skipped.
// PRE: the CSV has at least FIRST_NAME and LAST_NAME columns
// POST: valid, new rows are persisted unless DryRun; invalid rows are reported, not fatal
func ExecuteImportPlayers(ctx context.Context, input ImportPlayersInput, deps ImportPlayersDeps) (ImportPlayersResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportPlayersResult{}, apperr.Validation("CSV has no header row")
	}
	colIdx := make(map[string]int, len(header))
	var unknown []string
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(h))
		colIdx[name] = i
		if !importColumns[name] {
			unknown = append(unknown, h)
		}
	}
	for _, required := range []string{"FIRST_NAME", "LAST_NAME"} {
		if _, ok := colIdx[required]; !ok {
			return ImportPlayersResult{}, apperr.Validation("CSV missing required column: " + required)
		}
	}

	teams, err := deps.Teams.ListByClub(ctx, input.ClubID)
	if err != nil {
		return ImportPlayersResult{}, apperr.Store("list teams", err)
	}
	teamByName := make(map[string]string, len(teams))
	for _, t := range teams {
		teamByName[strings.ToLower(strings.TrimSpace(t.Name))] = t.ID
	}

	existing, err := deps.Players.List(ctx, playerStore.ListFilter{ClubID: input.ClubID, Limit: importExistingLimit})
	if err != nil {
		return ImportPlayersResult{}, apperr.Store("list players", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[playerKey(p)] = true
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	now := nowOr(deps.Now)
	newID := idFunc(deps.GenerateID)
	roster := ClubSetupDeps{Rosters: deps.Rosters, GenerateID: newID, Now: deps.Now}
	result := ImportPlayersResult{DryRun: input.DryRun, Unknown: unknown, Errors: []ImportPlayerRowErr{}}
	rowNum := 1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportPlayerRowErr{Row: rowNum, Message: "malformed row"})
			continue
		}
		result.Total++
		fail := func(msg string) {
			result.Errors = append(result.Errors, ImportPlayerRowErr{Row: rowNum, Message: msg})
		}

		jersey := 0
		if raw := getCol(row, "JERSEY"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil {
				fail("jersey must be a number: " + raw)
				continue
			}
			jersey = n
		}

		teamID := ""
		if name := getCol(row, "TEAM"); name != "" {
			id, ok := teamByName[strings.ToLower(name)]
			if !ok {
				fail("unknown team: " + name)
				continue
			}
			teamID = id
		}

		p := player.Player{
			ID:           newID(),
			ClubID:       input.ClubID,
			FirstName:    getCol(row, "FIRST_NAME"),
			LastName:     getCol(row, "LAST_NAME"),
			DateOfBirth:  getCol(row, "DATE_OF_BIRTH"),
			Position:     strings.ToLower(getCol(row, "POSITION")),
			JerseyNumber: jersey,
			CreatedAt:    now,
		}
		if err := p.Validate(); err != nil {
			fail(err.Error())
			continue
		}

		key := playerKey(p)
		if known[key] {
			result.Skipped++
			continue
		}
		known[key] = true

		if input.DryRun {
			result.Created++
			if teamID != "" {
				result.Assigned++
			}
			continue
		}

		if err := deps.Players.Save(ctx, p); err != nil {
			slog.Error("players_import_save_failed", "row", rowNum, "club_id", input.ClubID, "err", err)
			fail("save failed (see server log)")
			continue
		}
		result.Created++
		if teamID != "" {
			if _, err := assign(ctx, roster, teamID, p.ID, now); err != nil {
				slog.Error("players_import_assign_failed", "row", rowNum, "team_id", teamID, "err", err)
				fail("player saved but not assigned to team")
				continue
			}
			result.Assigned++
		}
	}

	slog.Info("players_import",
		"club_id", input.ClubID,
		"actor", input.ActorID,
		"dry_run", input.DryRun,
		"total", result.Total,
		"created", result.Created,
		"assigned", result.Assigned,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	if !input.DryRun && input.ActorID != "" && result.Created > 0 {
		recordAudit(ctx, deps.Audit,
			audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryRoster, audit.ActionImport, now).
				InClub(input.ClubID).
				WithDescription(fmt.Sprintf("imported %d players (%d skipped, %d errors)", result.Created, result.Skipped, len(result.Errors))))
	}
	return result, nil
}

func playerKey(p player.Player) string {
	return strings.ToLower(p.FirstName) + "|" + strings.ToLower(p.LastName) + "|" + p.DateOfBirth
}
