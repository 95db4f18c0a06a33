package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/payment"
)

const recordColumns = "pr.id, pr.player_id, pr.team_id, pr.period_month, pr.period_year, pr.amount_due, pr.amount_paid, pr.discount_applied, pr.status, pr.due_date, pr.paid_at, pr.notes, pr.created_at"

// insertChunk bounds the rows per INSERT statement to stay under driver
// placeholder limits.
const insertChunk = 200

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new payment store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// InsertIgnoreDuplicates writes records with ON CONFLICT DO NOTHING.
// PRE: records have been validated
// POST: Returns the number of rows actually inserted
// INVARIANT: existing records are never modified
func (s *SQLStore) InsertIgnoreDuplicates(ctx context.Context, records []domain.Record) (int, error) {
	inserted := 0
	for start := 0; start < len(records); start += insertChunk {
		end := min(start+insertChunk, len(records))
		n, err := s.insertBatch(ctx, records[start:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (s *SQLStore) insertBatch(ctx context.Context, batch []domain.Record) (int, error) {
	var b strings.Builder
	b.WriteString(`INSERT INTO payment_record (id, player_id, team_id, period_month, period_year, amount_due, amount_paid, discount_applied, status, due_date, paid_at, notes, created_at) VALUES `)
	args := make([]any, 0, len(batch)*13)
	for i, r := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(" + storage.Placeholders(13) + ")")
		args = append(args,
			r.ID, r.PlayerID, r.TeamID, r.PeriodMonth, r.PeriodYear,
			r.AmountDue, r.AmountPaid, r.DiscountApplied, r.Status, r.DueDate,
			storage.FormatTime(r.PaidAt), r.Notes, storage.FormatTime(r.CreatedAt))
	}
	b.WriteString(" ON CONFLICT (player_id, period_month, period_year) DO NOTHING")

	res, err := s.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetByID retrieves a payment record.
// PRE: id is non-empty
// POST: Returns the record or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM payment_record pr WHERE pr.id = ?", id)
	r, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("payment record not found: %w", err)
	}
	return r, err
}

// AddPayment adds amount to a record's paid total, re-derives its status and
// optionally replaces its notes, all in one transaction. The database applies
// the increment, so concurrent payments against one record all count.
// PRE: amount > 0
// POST: Returns the updated record or an error wrapping sql.ErrNoRows
func (s *SQLStore) AddPayment(ctx context.Context, id string, amount int64, notes string, at time.Time) (domain.Record, error) {
	dialect := storage.DialectOf(s.db)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Record{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, storage.Rebind(dialect,
		"UPDATE payment_record SET amount_paid = amount_paid + ? WHERE id = ?"), amount, id)
	if err != nil {
		return domain.Record{}, fmt.Errorf("add amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Record{}, fmt.Errorf("payment record not found: %w", sql.ErrNoRows)
	}

	row := tx.QueryRowContext(ctx, storage.Rebind(dialect,
		"SELECT "+recordColumns+" FROM payment_record pr WHERE pr.id = ?"), id)
	r, err := scanRecord(row.Scan)
	if err != nil {
		return domain.Record{}, fmt.Errorf("reload record: %w", err)
	}
	r.Settle(at)
	if notes != "" {
		r.Notes = notes
	}
	_, err = tx.ExecContext(ctx, storage.Rebind(dialect,
		"UPDATE payment_record SET status = ?, paid_at = ?, notes = ? WHERE id = ?"),
		r.Status, storage.FormatTime(r.PaidAt), r.Notes, r.ID)
	if err != nil {
		return domain.Record{}, fmt.Errorf("settle record: %w", err)
	}
	return r, tx.Commit()
}

func (f ListFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.ClubID != "" {
		conds = append(conds, "t.club_id = ?")
		args = append(args, f.ClubID)
	}
	if f.TeamID != "" {
		conds = append(conds, "pr.team_id = ?")
		args = append(args, f.TeamID)
	}
	if len(f.PlayerIDs) > 0 {
		conds = append(conds, "pr.player_id IN ("+storage.Placeholders(len(f.PlayerIDs))+")")
		args = append(args, storage.StringArgs(f.PlayerIDs)...)
	}
	if f.Month > 0 {
		conds = append(conds, "pr.period_month = ?")
		args = append(args, f.Month)
	}
	if f.Year > 0 {
		conds = append(conds, "pr.period_year = ?")
		args = append(args, f.Year)
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, "pr.status IN ("+storage.Placeholders(len(f.Statuses))+")")
		args = append(args, storage.StringArgs(f.Statuses)...)
	}
	if f.DueBefore != "" {
		conds = append(conds, "pr.due_date < ?")
		args = append(args, f.DueBefore)
	}
	if f.DueOnOrAfter != "" {
		conds = append(conds, "pr.due_date >= ?")
		args = append(args, f.DueOnOrAfter)
	}
	clause := " FROM payment_record pr JOIN team t ON t.id = pr.team_id"
	if len(conds) > 0 {
		clause += " WHERE " + strings.Join(conds, " AND ")
	}
	return clause, args
}

// List returns records newest period first, then by player.
// PRE: filter fields are optional
// POST: Returns matching records
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Record, error) {
	from, args := filter.where()
	query := "SELECT " + recordColumns + from + " ORDER BY pr.period_year DESC, pr.period_month DESC, pr.player_id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of matching records.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	from, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&n)
	return n, err
}

func scanRecord(scan func(dest ...any) error) (domain.Record, error) {
	var r domain.Record
	var paidAt, createdAt string
	err := scan(&r.ID, &r.PlayerID, &r.TeamID, &r.PeriodMonth, &r.PeriodYear,
		&r.AmountDue, &r.AmountPaid, &r.DiscountApplied, &r.Status, &r.DueDate,
		&paidAt, &r.Notes, &createdAt)
	if err != nil {
		return domain.Record{}, err
	}
	r.PaidAt = storage.ParseTime(paidAt)
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}
