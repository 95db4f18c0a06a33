package player

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/player"
)

const playerColumns = "p.id, p.club_id, p.first_name, p.last_name, p.date_of_birth, p.position, p.jersey_number, p.created_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new player store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a player.
// PRE: id is non-empty
// POST: Returns the player or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Player, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM player p WHERE p.id = ?", id)
	p, err := scanPlayer(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Player{}, fmt.Errorf("player not found: %w", err)
	}
	return p, err
}

// Save inserts or updates a player.
// PRE: p has been validated
// POST: Player is persisted; club_id never changes on update
func (s *SQLStore) Save(ctx context.Context, p domain.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player (id, club_id, first_name, last_name, date_of_birth, position, jersey_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   first_name=excluded.first_name, last_name=excluded.last_name, date_of_birth=excluded.date_of_birth,
		   position=excluded.position, jersey_number=excluded.jersey_number`,
		p.ID, p.ClubID, p.FirstName, p.LastName, p.DateOfBirth, p.Position, p.JerseyNumber, storage.FormatTime(p.CreatedAt))
	return err
}

// where builds the WHERE clause shared by List and Count.
func (f ListFilter) where() (string, []any) {
	var b strings.Builder
	var args []any
	b.WriteString(" WHERE p.club_id = ?")
	args = append(args, f.ClubID)
	if f.TeamID != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM team_player tp WHERE tp.player_id = p.id AND tp.team_id = ? AND tp.left_at IS NULL)")
		args = append(args, f.TeamID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		b.WriteString(" AND (LOWER(p.first_name) LIKE ? OR LOWER(p.last_name) LIKE ?)")
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}
	return b.String(), args
}

// List returns a club's players ordered by last then first name.
// PRE: filter.ClubID is non-empty, filter.Limit > 0
// POST: Returns at most Limit players
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Player, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM player p"+where+" ORDER BY p.last_name, p.first_name, p.id LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayers(rows)
}

// Count returns the number of players matching the filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM player p"+where, args...).Scan(&n)
	return n, err
}

// ListByIDs returns the players with the given ids.
func (s *SQLStore) ListByIDs(ctx context.Context, ids []string) ([]domain.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM player p WHERE p.id IN ("+storage.Placeholders(len(ids))+") ORDER BY p.last_name, p.first_name",
		storage.StringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayers(rows)
}

// LinkParent connects a parent account to a player.
// POST: Returns false when the link already existed
func (s *SQLStore) LinkParent(ctx context.Context, link domain.ParentLink) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO player_parent (player_id, account_id) VALUES (?, ?) ON CONFLICT (player_id, account_id) DO NOTHING",
		link.PlayerID, link.AccountID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UnlinkParent removes a parent link.
func (s *SQLStore) UnlinkParent(ctx context.Context, link domain.ParentLink) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM player_parent WHERE player_id = ? AND account_id = ?", link.PlayerID, link.AccountID)
	return err
}

// ListParentLinks returns the parent links of the given players.
func (s *SQLStore) ListParentLinks(ctx context.Context, playerIDs []string) ([]domain.ParentLink, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT player_id, account_id FROM player_parent WHERE player_id IN ("+storage.Placeholders(len(playerIDs))+") ORDER BY player_id, account_id",
		storage.StringArgs(playerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.ParentLink
	for rows.Next() {
		var l domain.ParentLink
		if err := rows.Scan(&l.PlayerID, &l.AccountID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ListChildren returns the players linked to a parent account.
func (s *SQLStore) ListChildren(ctx context.Context, accountID string) ([]domain.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM player p JOIN player_parent pp ON pp.player_id = p.id WHERE pp.account_id = ? ORDER BY p.first_name",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]domain.Player, error) {
	var out []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlayer(scan func(dest ...any) error) (domain.Player, error) {
	var p domain.Player
	var createdAt string
	err := scan(&p.ID, &p.ClubID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Position, &p.JerseyNumber, &createdAt)
	if err != nil {
		return domain.Player{}, err
	}
	p.CreatedAt = storage.ParseTime(createdAt)
	return p, nil
}
