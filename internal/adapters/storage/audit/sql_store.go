package audit

import (
	"context"
	"database/sql"

	"clubify/internal/adapters/storage"
	domain "clubify/internal/domain/audit"
)

const eventColumns = "id, timestamp, category, action, actor_id, actor_email, club_id, resource_type, resource_id, description, metadata"

// SQLStore implements the audit Store interface on any SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new audit event store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save persists an audit event.
// PRE: event is valid
// POST: Event is persisted
func (s *SQLStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (`+eventColumns+`) VALUES (`+storage.Placeholders(11)+`)`,
		event.ID, storage.FormatTime(event.Timestamp), string(event.Category), string(event.Action),
		event.ActorID, event.ActorEmail, event.ClubID, event.ResourceType, event.ResourceID,
		event.Description, event.Metadata)
	return err
}

// List returns audit events with optional filtering.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *SQLStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_event WHERE 1=1`
	args := []any{}

	if filter.ClubID != nil {
		query += " AND club_id = ?"
		args = append(args, *filter.ClubID)
	}
	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, string(*filter.Category))
	}
	if filter.Action != nil {
		query += " AND action = ?"
		args = append(args, string(*filter.Action))
	}
	if filter.ActorID != nil {
		query += " AND actor_id = ?"
		args = append(args, *filter.ActorID)
	}
	if filter.FromDate != nil {
		query += " AND timestamp >= ?"
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		query += " AND timestamp <= ?"
		args = append(args, *filter.ToDate)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// scanEvents scans multiple rows into a slice of Events.
func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var timestamp string
		err := rows.Scan(&e.ID, &timestamp, &e.Category, &e.Action, &e.ActorID, &e.ActorEmail, &e.ClubID,
			&e.ResourceType, &e.ResourceID, &e.Description, &e.Metadata)
		if err != nil {
			return nil, err
		}
		e.Timestamp = storage.ParseTime(timestamp)
		events = append(events, e)
	}
	return events, rows.Err()
}
