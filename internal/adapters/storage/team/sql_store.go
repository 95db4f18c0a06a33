package team

import (
	"context"
	"database/sql"
	"fmt"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/team"
)

const teamColumns = "id, club_id, name, age_group, active, created_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new team store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a team.
// PRE: id is non-empty
// POST: Returns the team or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM team WHERE id = ?", id)
	t, err := scanTeam(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Team{}, fmt.Errorf("team not found: %w", err)
	}
	return t, err
}

// Save inserts or updates a team.
func (s *SQLStore) Save(ctx context.Context, t domain.Team) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team (`+teamColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, age_group=excluded.age_group, active=excluded.active`,
		t.ID, t.ClubID, t.Name, t.AgeGroup, storage.BoolToInt(t.Active), storage.FormatTime(t.CreatedAt))
	return err
}

// ListByClub returns all teams of a club ordered by name.
// PRE: clubID is non-empty
// POST: Inactive teams are included
func (s *SQLStore) ListByClub(ctx context.Context, clubID string) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+teamColumns+" FROM team WHERE club_id = ? ORDER BY name", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

// ListByIDs returns the teams with the given ids.
func (s *SQLStore) ListByIDs(ctx context.Context, ids []string) ([]domain.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+teamColumns+" FROM team WHERE id IN ("+storage.Placeholders(len(ids))+") ORDER BY name",
		storage.StringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

func scanTeams(rows *sql.Rows) ([]domain.Team, error) {
	var out []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTeam(scan func(dest ...any) error) (domain.Team, error) {
	var t domain.Team
	var active int
	var createdAt string
	if err := scan(&t.ID, &t.ClubID, &t.Name, &t.AgeGroup, &active, &createdAt); err != nil {
		return domain.Team{}, err
	}
	t.Active = active == 1
	t.CreatedAt = storage.ParseTime(createdAt)
	return t, nil
}
