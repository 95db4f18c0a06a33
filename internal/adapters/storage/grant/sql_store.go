package grant

import (
	"context"
	"database/sql"
	"fmt"

	"clubify/internal/adapters/storage"
	"clubify/internal/domain/access"
)

const grantColumns = "id, account_id, role, club_id, created_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new grant store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves one grant.
func (s *SQLStore) GetByID(ctx context.Context, id string) (access.Grant, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+grantColumns+" FROM role_grant WHERE id = ?", id)
	g, err := scanGrant(row.Scan)
	if err == sql.ErrNoRows {
		return access.Grant{}, fmt.Errorf("grant not found: %w", err)
	}
	return g, err
}

// ListByAccount returns every grant an account holds.
// PRE: accountID is non-empty
// POST: Returns grants ordered by club then role
func (s *SQLStore) ListByAccount(ctx context.Context, accountID string) ([]access.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+grantColumns+" FROM role_grant WHERE account_id = ? ORDER BY club_id, role", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// ListByClub returns the grants scoped to a club.
func (s *SQLStore) ListByClub(ctx context.Context, clubID string) ([]access.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+grantColumns+" FROM role_grant WHERE club_id = ? ORDER BY role, account_id", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// Insert stores a grant unless the same grant already exists.
// PRE: g has been validated
// POST: Returns true when a row was written
func (s *SQLStore) Insert(ctx context.Context, g access.Grant) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO role_grant ("+grantColumns+") VALUES (?, ?, ?, ?, ?) ON CONFLICT (account_id, role, club_id) DO NOTHING",
		g.ID, g.AccountID, string(g.Role), g.ClubID, storage.FormatTime(g.CreatedAt))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a grant.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM role_grant WHERE id = ?", id)
	return err
}

func scanGrants(rows *sql.Rows) ([]access.Grant, error) {
	var out []access.Grant
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGrant(scan func(dest ...any) error) (access.Grant, error) {
	var g access.Grant
	var role, createdAt string
	if err := scan(&g.ID, &g.AccountID, &role, &g.ClubID, &createdAt); err != nil {
		return access.Grant{}, err
	}
	g.Role = access.Role(role)
	g.CreatedAt = storage.ParseTime(createdAt)
	return g, nil
}
