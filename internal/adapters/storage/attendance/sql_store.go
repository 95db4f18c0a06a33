package attendance

import (
	"context"
	"database/sql"
	"fmt"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/attendance"
)

const attendanceColumns = "a.id, a.session_id, a.player_id, a.status, a.notes, a.recorded_by, a.recorded_at"

// SQLStore implements Store on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new attendance store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Upsert writes all marks in one transaction.
// PRE: marks have been validated
// POST: exactly one row per (session, player); the latest mark wins
func (s *SQLStore) Upsert(ctx context.Context, marks []domain.Attendance) error {
	if len(marks) == 0 {
		return nil
	}
	query := storage.Rebind(storage.DialectOf(s.db),
		`INSERT INTO attendance (id, session_id, player_id, status, notes, recorded_by, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, player_id) DO UPDATE SET
		   status=excluded.status, notes=excluded.notes,
		   recorded_by=excluded.recorded_by, recorded_at=excluded.recorded_at`)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range marks {
		if _, err := tx.ExecContext(ctx, query,
			m.ID, m.SessionID, m.PlayerID, m.Status, m.Notes, m.RecordedBy, storage.FormatTime(m.RecordedAt)); err != nil {
			return fmt.Errorf("upsert attendance %s/%s: %w", m.SessionID, m.PlayerID, err)
		}
	}
	return tx.Commit()
}

// ListBySessions returns the marks of the given sessions.
func (s *SQLStore) ListBySessions(ctx context.Context, sessionIDs []string) ([]domain.Attendance, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance a WHERE a.session_id IN ("+storage.Placeholders(len(sessionIDs))+") ORDER BY a.session_id, a.player_id",
		storage.StringArgs(sessionIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMarks(rows)
}

// ListByPlayer returns a player's marks for sessions in a date range.
// PRE: from and to are YYYY-MM-DD
func (s *SQLStore) ListByPlayer(ctx context.Context, playerID, from, to string) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance a JOIN training_session ts ON ts.id = a.session_id"+
			" WHERE a.player_id = ? AND ts.session_date >= ? AND ts.session_date <= ? ORDER BY ts.session_date",
		playerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMarks(rows)
}

func scanMarks(rows *sql.Rows) ([]domain.Attendance, error) {
	var out []domain.Attendance
	for rows.Next() {
		var m domain.Attendance
		var recordedAt string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.PlayerID, &m.Status, &m.Notes, &m.RecordedBy, &recordedAt); err != nil {
			return nil, err
		}
		m.RecordedAt = storage.ParseTime(recordedAt)
		out = append(out, m)
	}
	return out, rows.Err()
}
