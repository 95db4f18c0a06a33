package fee

import (
	"context"
	"database/sql"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/fee"
)

const feeColumns = "id, team_id, amount, effective_from, created_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new fee store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Insert appends a fee version.
// PRE: f has been validated
func (s *SQLStore) Insert(ctx context.Context, f domain.SubscriptionFee) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO subscription_fee ("+feeColumns+") VALUES (?, ?, ?, ?, ?)",
		f.ID, f.TeamID, f.Amount, f.EffectiveFrom, storage.FormatTime(f.CreatedAt))
	return err
}

// ListByTeam returns a team's fee history, newest first.
func (s *SQLStore) ListByTeam(ctx context.Context, teamID string) ([]domain.SubscriptionFee, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+feeColumns+" FROM subscription_fee WHERE team_id = ? ORDER BY effective_from DESC, created_at DESC",
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFees(rows)
}

// ListEffectiveOnOrBefore returns candidate fee rows for a billing date.
// PRE: date is YYYY-MM-DD
// POST: Ordered by team, then effective_from desc, then created_at desc
func (s *SQLStore) ListEffectiveOnOrBefore(ctx context.Context, teamIDs []string, date string) ([]domain.SubscriptionFee, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	args := append(storage.StringArgs(teamIDs), date)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+feeColumns+" FROM subscription_fee WHERE team_id IN ("+storage.Placeholders(len(teamIDs))+") AND effective_from <= ?"+
			" ORDER BY team_id, effective_from DESC, created_at DESC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFees(rows)
}

func scanFees(rows *sql.Rows) ([]domain.SubscriptionFee, error) {
	var out []domain.SubscriptionFee
	for rows.Next() {
		var f domain.SubscriptionFee
		var createdAt string
		if err := rows.Scan(&f.ID, &f.TeamID, &f.Amount, &f.EffectiveFrom, &createdAt); err != nil {
			return nil, err
		}
		f.CreatedAt = storage.ParseTime(createdAt)
		out = append(out, f)
	}
	return out, rows.Err()
}
