package training

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/training"
)

const (
	recurrenceColumns = "id, team_id, pattern_id, day_of_week, start_time, duration_minutes, location, notes, created_at"
	sessionColumns    = "id, team_id, session_date, start_time, duration_minutes, location, notes, recurrence_id, created_at"
)

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new training store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// execer is satisfied by *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreatePattern writes recurrences and sessions atomically.
// PRE: rows have been validated; every session's RecurrenceID is in recurrences
// POST: all rows are written or none are
func (s *SQLStore) CreatePattern(ctx context.Context, recurrences []domain.Recurrence, sessions []domain.Session) error {
	dialect := storage.DialectOf(s.db)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range recurrences {
		_, err := tx.ExecContext(ctx, storage.Rebind(dialect,
			"INSERT INTO training_recurrence ("+recurrenceColumns+") VALUES ("+storage.Placeholders(9)+")"),
			r.ID, r.TeamID, r.PatternID, r.DayOfWeek, r.StartTime, r.DurationMinutes, r.Location, r.Notes,
			storage.FormatTime(r.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert recurrence: %w", err)
		}
	}
	for _, sess := range sessions {
		if err := insertSession(ctx, tx, dialect, sess); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}
	return tx.Commit()
}

func insertSession(ctx context.Context, db execer, dialect storage.Dialect, sess domain.Session) error {
	var recurrenceID any
	if sess.RecurrenceID != "" {
		recurrenceID = sess.RecurrenceID
	}
	_, err := db.ExecContext(ctx, storage.Rebind(dialect,
		"INSERT INTO training_session ("+sessionColumns+") VALUES ("+storage.Placeholders(9)+")"),
		sess.ID, sess.TeamID, sess.SessionDate, sess.StartTime, sess.DurationMinutes, sess.Location, sess.Notes,
		recurrenceID, storage.FormatTime(sess.CreatedAt))
	return err
}

// GetRecurrence retrieves one recurrence row.
// POST: Returns the row or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetRecurrence(ctx context.Context, id string) (domain.Recurrence, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recurrenceColumns+" FROM training_recurrence WHERE id = ?", id)
	r, err := scanRecurrence(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Recurrence{}, fmt.Errorf("recurrence not found: %w", err)
	}
	return r, err
}

// ListRecurrencesByTeam returns a team's recurrence rows by weekday.
func (s *SQLStore) ListRecurrencesByTeam(ctx context.Context, teamID string) ([]domain.Recurrence, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recurrenceColumns+" FROM training_recurrence WHERE team_id = ? ORDER BY day_of_week, start_time", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Recurrence
	for rows.Next() {
		r, err := scanRecurrence(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertSession writes a single session. s.db rebinds on its own, so the
// statement is passed through unchanged.
func (s *SQLStore) InsertSession(ctx context.Context, sess domain.Session) error {
	return insertSession(ctx, s.db, storage.DialectSQLite, sess)
}

// GetSession retrieves one session.
// POST: Returns the session or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM training_session WHERE id = ?", id)
	sess, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("training session not found: %w", err)
	}
	return sess, err
}

// ListSessions returns sessions ordered by date then start time.
func (s *SQLStore) ListSessions(ctx context.Context, filter SessionFilter) ([]domain.Session, error) {
	var conds []string
	var args []any
	if len(filter.TeamIDs) > 0 {
		conds = append(conds, "team_id IN ("+storage.Placeholders(len(filter.TeamIDs))+")")
		args = append(args, storage.StringArgs(filter.TeamIDs)...)
	}
	if filter.From != "" {
		conds = append(conds, "session_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "session_date <= ?")
		args = append(args, filter.To)
	}
	query := "SELECT " + sessionColumns + " FROM training_session"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY session_date, start_time, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes one session; its attendance rows cascade.
func (s *SQLStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM training_session WHERE id = ?", id)
	return err
}

// DeletePatternFrom removes a pattern's sessions from fromDate on, then the pattern.
// PRE: recurrenceIDs is non-empty, fromDate is YYYY-MM-DD
// POST: no session of the pattern remains on or after fromDate; recurrence rows are gone
// INVARIANT: sessions before fromDate survive with recurrence_id cleared
func (s *SQLStore) DeletePatternFrom(ctx context.Context, recurrenceIDs []string, fromDate string) (int, error) {
	if len(recurrenceIDs) == 0 {
		return 0, nil
	}
	dialect := storage.DialectOf(s.db)
	in := "(" + storage.Placeholders(len(recurrenceIDs)) + ")"
	ids := storage.StringArgs(recurrenceIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, storage.Rebind(dialect,
		"DELETE FROM training_session WHERE recurrence_id IN "+in+" AND session_date >= ?"),
		append(ids, fromDate)...)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, storage.Rebind(dialect,
		"UPDATE training_session SET recurrence_id = NULL WHERE recurrence_id IN "+in), ids...); err != nil {
		return 0, fmt.Errorf("detach past sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, storage.Rebind(dialect,
		"DELETE FROM training_recurrence WHERE id IN "+in), ids...); err != nil {
		return 0, fmt.Errorf("delete recurrences: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func scanRecurrence(scan func(dest ...any) error) (domain.Recurrence, error) {
	var r domain.Recurrence
	var createdAt string
	err := scan(&r.ID, &r.TeamID, &r.PatternID, &r.DayOfWeek, &r.StartTime, &r.DurationMinutes, &r.Location, &r.Notes, &createdAt)
	if err != nil {
		return domain.Recurrence{}, err
	}
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var sess domain.Session
	var recurrenceID sql.NullString
	var createdAt string
	err := scan(&sess.ID, &sess.TeamID, &sess.SessionDate, &sess.StartTime, &sess.DurationMinutes, &sess.Location, &sess.Notes, &recurrenceID, &createdAt)
	if err != nil {
		return domain.Session{}, err
	}
	sess.RecurrenceID = recurrenceID.String
	sess.CreatedAt = storage.ParseTime(createdAt)
	return sess, nil
}
