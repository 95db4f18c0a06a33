package coach

import (
	"context"
	"database/sql"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/coach"
)

const coachColumns = "id, team_id, account_id, role, assigned_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new coach assignment store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save inserts an assignment or changes the role of an existing one.
// PRE: a has been validated
// POST: one row per (team, account)
func (s *SQLStore) Save(ctx context.Context, a domain.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coach_assignment (`+coachColumns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (team_id, account_id) DO UPDATE SET role=excluded.role`,
		a.ID, a.TeamID, a.AccountID, a.Role, storage.FormatTime(a.AssignedAt))
	return err
}

// Delete removes a coach from a team.
func (s *SQLStore) Delete(ctx context.Context, teamID, accountID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coach_assignment WHERE team_id = ? AND account_id = ?", teamID, accountID)
	return err
}

// ListByTeam returns a team's coaches, head coaches first.
func (s *SQLStore) ListByTeam(ctx context.Context, teamID string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+coachColumns+" FROM coach_assignment WHERE team_id = ? ORDER BY CASE role WHEN 'head' THEN 0 ELSE 1 END, assigned_at",
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// ListByAccount returns the teams an account coaches.
func (s *SQLStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+coachColumns+" FROM coach_assignment WHERE account_id = ? ORDER BY assigned_at", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		var assignedAt string
		if err := rows.Scan(&a.ID, &a.TeamID, &a.AccountID, &a.Role, &assignedAt); err != nil {
			return nil, err
		}
		a.AssignedAt = storage.ParseTime(assignedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
