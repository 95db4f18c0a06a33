// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"clubify/internal/adapters/storage"
)

// Stamp is the created_at value used by seed rows.
const Stamp = "2025-01-01T00:00:00Z"

// OpenDB returns a migrated in-memory SQLite database closed at test end.
// One connection keeps every statement on the same in-memory database.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, storage.DialectSQLite); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Exec runs a statement or fails the test.
func Exec(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// SeedClub inserts a club row.
func SeedClub(t testing.TB, db *sql.DB, id string) {
	t.Helper()
	Exec(t, db, `INSERT INTO club (id, name, city, active, created_at) VALUES (?, ?, 'Skopje', 1, ?)`, id, "Club "+id, Stamp)
}

// SeedTeam inserts a team row in clubID.
func SeedTeam(t testing.TB, db *sql.DB, id, clubID string) {
	t.Helper()
	Exec(t, db, `INSERT INTO team (id, club_id, name, age_group, active, created_at) VALUES (?, ?, ?, 'U12', 1, ?)`, id, clubID, "Team "+id, Stamp)
}

// SeedPlayer inserts a player row in clubID.
func SeedPlayer(t testing.TB, db *sql.DB, id, clubID string) {
	t.Helper()
	Exec(t, db, `INSERT INTO player (id, club_id, first_name, last_name, created_at) VALUES (?, ?, 'Player', ?, ?)`, id, clubID, id, Stamp)
}

// SeedAccount inserts an account row.
func SeedAccount(t testing.TB, db *sql.DB, id, email string) {
	t.Helper()
	Exec(t, db, `INSERT INTO account (id, email, full_name, created_at) VALUES (?, ?, '', ?)`, id, email, Stamp)
}

// SeedSession inserts a one-off training session row.
func SeedSession(t testing.TB, db *sql.DB, id, teamID, date string) {
	t.Helper()
	Exec(t, db, `INSERT INTO training_session (id, team_id, session_date, start_time, duration_minutes, created_at) VALUES (?, ?, ?, '17:00', 90, ?)`, id, teamID, date, Stamp)
}
