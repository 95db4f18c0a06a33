package match

import (
	"context"
	"database/sql"
	"fmt"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/match"
)

const matchColumns = "id, team_id, opponent, match_date, kickoff_time, location, is_home, competition, status, goals_for, goals_against, created_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new fixture store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a fixture.
// POST: Returns the fixture or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Match, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+matchColumns+" FROM fixture WHERE id = ?", id)
	m, err := scanMatch(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Match{}, fmt.Errorf("match not found: %w", err)
	}
	return m, err
}

// Save inserts or updates a fixture.
// PRE: m has been validated
func (s *SQLStore) Save(ctx context.Context, m domain.Match) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fixture (`+matchColumns+`) VALUES (`+storage.Placeholders(12)+`)
		 ON CONFLICT(id) DO UPDATE SET
		   opponent=excluded.opponent, match_date=excluded.match_date, kickoff_time=excluded.kickoff_time,
		   location=excluded.location, is_home=excluded.is_home, competition=excluded.competition,
		   status=excluded.status, goals_for=excluded.goals_for, goals_against=excluded.goals_against`,
		m.ID, m.TeamID, m.Opponent, m.MatchDate, m.KickoffTime, m.Location, storage.BoolToInt(m.IsHome),
		m.Competition, m.Status, m.GoalsFor, m.GoalsAgainst, storage.FormatTime(m.CreatedAt))
	return err
}

// Delete removes a fixture.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM fixture WHERE id = ?", id)
	return err
}

// ListByTeams returns fixtures ordered by date and kickoff.
func (s *SQLStore) ListByTeams(ctx context.Context, teamIDs []string, from, to string) ([]domain.Match, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	query := "SELECT " + matchColumns + " FROM fixture WHERE team_id IN (" + storage.Placeholders(len(teamIDs)) + ")"
	args := storage.StringArgs(teamIDs)
	if from != "" {
		query += " AND match_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND match_date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY match_date, kickoff_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMatch(scan func(dest ...any) error) (domain.Match, error) {
	var m domain.Match
	var isHome int
	var createdAt string
	err := scan(&m.ID, &m.TeamID, &m.Opponent, &m.MatchDate, &m.KickoffTime, &m.Location, &isHome,
		&m.Competition, &m.Status, &m.GoalsFor, &m.GoalsAgainst, &createdAt)
	if err != nil {
		return domain.Match{}, err
	}
	m.IsHome = isHome == 1
	m.CreatedAt = storage.ParseTime(createdAt)
	return m, nil
}
