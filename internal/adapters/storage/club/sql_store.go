package club

import (
	"context"
	"database/sql"
	"fmt"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/club"
)

const clubColumns = "id, name, city, active, created_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new club store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a club.
// PRE: id is non-empty
// POST: Returns the club or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Club, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clubColumns+" FROM club WHERE id = ?", id)
	c, err := scanClub(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Club{}, fmt.Errorf("club not found: %w", err)
	}
	return c, err
}

// Save inserts or updates a club.
func (s *SQLStore) Save(ctx context.Context, c domain.Club) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO club (`+clubColumns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, city=excluded.city, active=excluded.active`,
		c.ID, c.Name, c.City, storage.BoolToInt(c.Active), storage.FormatTime(c.CreatedAt))
	return err
}

// List returns every club ordered by name.
func (s *SQLStore) List(ctx context.Context) ([]domain.Club, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+clubColumns+" FROM club ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClubs(rows)
}

// ListByIDs returns the clubs with the given ids ordered by name.
func (s *SQLStore) ListByIDs(ctx context.Context, ids []string) ([]domain.Club, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clubColumns+" FROM club WHERE id IN ("+storage.Placeholders(len(ids))+") ORDER BY name",
		storage.StringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClubs(rows)
}

func scanClubs(rows *sql.Rows) ([]domain.Club, error) {
	var out []domain.Club
	for rows.Next() {
		c, err := scanClub(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClub(scan func(dest ...any) error) (domain.Club, error) {
	var c domain.Club
	var active int
	var createdAt string
	if err := scan(&c.ID, &c.Name, &c.City, &active, &createdAt); err != nil {
		return domain.Club{}, err
	}
	c.Active = active == 1
	c.CreatedAt = storage.ParseTime(createdAt)
	return c, nil
}
