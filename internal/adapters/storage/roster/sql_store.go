package roster

import (
	"context"
	"database/sql"
	"fmt"

	"clubify/internal/adapters/storage"
	"clubify/internal/domain/player"
)

const assignmentColumns = "id, team_id, player_id, joined_at, left_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new roster store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Assign inserts an assignment unless one is already active.
// PRE: a has been validated and is active
// POST: Returns true when a row was written
// INVARIANT: at most one active row per (team, player)
func (s *SQLStore) Assign(ctx context.Context, a player.Assignment) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO team_player ("+assignmentColumns+") VALUES (?, ?, ?, ?, NULL) ON CONFLICT DO NOTHING",
		a.ID, a.TeamID, a.PlayerID, storage.FormatTime(a.JoinedAt))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetActive returns the open assignment of a player on a team.
// POST: Returns an error wrapping sql.ErrNoRows when none is open
func (s *SQLStore) GetActive(ctx context.Context, teamID, playerID string) (player.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM team_player WHERE team_id = ? AND player_id = ? AND left_at IS NULL",
		teamID, playerID)
	a, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return player.Assignment{}, fmt.Errorf("roster assignment not found: %w", err)
	}
	return a, err
}

// Save updates an existing assignment's LeftAt.
func (s *SQLStore) Save(ctx context.Context, a player.Assignment) error {
	var leftAt any
	if !a.LeftAt.IsZero() {
		leftAt = storage.FormatTime(a.LeftAt)
	}
	_, err := s.db.ExecContext(ctx, "UPDATE team_player SET left_at = ? WHERE id = ?", leftAt, a.ID)
	return err
}

// ListActiveByTeams returns open assignments for the given teams.
// PRE: teamIDs may be empty
// POST: Ordered by team then player
func (s *SQLStore) ListActiveByTeams(ctx context.Context, teamIDs []string) ([]player.Assignment, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM team_player WHERE left_at IS NULL AND team_id IN ("+storage.Placeholders(len(teamIDs))+") ORDER BY team_id, player_id",
		storage.StringArgs(teamIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// ListByPlayer returns a player's roster history, newest first.
func (s *SQLStore) ListByPlayer(ctx context.Context, playerID string) ([]player.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM team_player WHERE player_id = ? ORDER BY joined_at DESC", playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]player.Assignment, error) {
	var out []player.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(scan func(dest ...any) error) (player.Assignment, error) {
	var a player.Assignment
	var joinedAt string
	var leftAt sql.NullString
	if err := scan(&a.ID, &a.TeamID, &a.PlayerID, &joinedAt, &leftAt); err != nil {
		return player.Assignment{}, err
	}
	a.JoinedAt = storage.ParseTime(joinedAt)
	if leftAt.Valid {
		a.LeftAt = storage.ParseTime(leftAt.String)
	}
	return a, nil
}
