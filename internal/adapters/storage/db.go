package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Dialect selects SQL flavour differences between the supported databases.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// ParseDialect maps a config value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

// Open opens and pings a database for the dialect. The caller registers the
// driver with a blank import (modernc.org/sqlite or pgx/v5/stdlib).
// PRE: dsn is non-empty
// POST: Returns a live connection pool
func Open(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if d == DialectSQLite {
		// WAL allows concurrent readers alongside the single writer.
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return db, nil
}

// SQLiteDSN builds a modernc DSN with the pragmas the app relies on.
func SQLiteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// migration is one schema step. Steps are append-only; never edit a shipped one.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{1, "baseline", []string{
		`CREATE TABLE IF NOT EXISTS account (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS club (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS role_grant (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			club_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE (account_id, role, club_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_role_grant_club ON role_grant(club_id)`,
		`CREATE TABLE IF NOT EXISTS team (
			id TEXT PRIMARY KEY,
			club_id TEXT NOT NULL REFERENCES club(id),
			name TEXT NOT NULL,
			age_group TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_team_club ON team(club_id)`,
		`CREATE TABLE IF NOT EXISTS player (
			id TEXT PRIMARY KEY,
			club_id TEXT NOT NULL REFERENCES club(id),
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			jersey_number INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_player_club ON player(club_id)`,
		`CREATE TABLE IF NOT EXISTS team_player (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL REFERENCES team(id),
			player_id TEXT NOT NULL REFERENCES player(id),
			joined_at TEXT NOT NULL,
			left_at TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_team_player_active ON team_player(team_id, player_id) WHERE left_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS player_parent (
			player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
			account_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			PRIMARY KEY (player_id, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS coach_assignment (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL REFERENCES team(id),
			account_id TEXT NOT NULL REFERENCES account(id),
			role TEXT NOT NULL,
			assigned_at TEXT NOT NULL,
			UNIQUE (team_id, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS subscription_fee (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL REFERENCES team(id),
			amount BIGINT NOT NULL,
			effective_from TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fee_team_effective ON subscription_fee(team_id, effective_from)`,
		`CREATE TABLE IF NOT EXISTS payment_record (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL REFERENCES player(id),
			team_id TEXT NOT NULL REFERENCES team(id),
			period_month INTEGER NOT NULL,
			period_year INTEGER NOT NULL,
			amount_due BIGINT NOT NULL,
			amount_paid BIGINT NOT NULL DEFAULT 0,
			discount_applied BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			due_date TEXT NOT NULL,
			paid_at TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE (player_id, period_month, period_year)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_team_period ON payment_record(team_id, period_year, period_month)`,
		`CREATE TABLE IF NOT EXISTS training_recurrence (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL REFERENCES team(id),
			day_of_week INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS training_session (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL REFERENCES team(id),
			session_date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			recurrence_id TEXT REFERENCES training_recurrence(id) ON DELETE SET NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_team_date ON training_session(team_id, session_date)`,
		`CREATE INDEX IF NOT EXISTS idx_session_recurrence ON training_session(recurrence_id)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES training_session(id) ON DELETE CASCADE,
			player_id TEXT NOT NULL REFERENCES player(id),
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			recorded_by TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL,
			UNIQUE (session_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fixture (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL REFERENCES team(id),
			opponent TEXT NOT NULL,
			match_date TEXT NOT NULL,
			kickoff_time TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			is_home INTEGER NOT NULL DEFAULT 1,
			competition TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			goals_for INTEGER NOT NULL DEFAULT 0,
			goals_against INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fixture_team_date ON fixture(team_id, match_date)`,
		`CREATE TABLE IF NOT EXISTS audit_event (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			category TEXT NOT NULL,
			action TEXT NOT NULL,
			actor_id TEXT NOT NULL DEFAULT '',
			actor_email TEXT NOT NULL DEFAULT '',
			club_id TEXT NOT NULL DEFAULT '',
			resource_type TEXT NOT NULL DEFAULT '',
			resource_id TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_club_time ON audit_event(club_id, timestamp)`,
		`CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempted_at TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at)`,
	}},
	{2, "training_pattern_id", []string{
		`ALTER TABLE training_recurrence ADD COLUMN pattern_id TEXT NOT NULL DEFAULT ''`,
		`CREATE INDEX IF NOT EXISTS idx_recurrence_pattern ON training_recurrence(team_id, pattern_id)`,
	}},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for an empty database.
// PRE: db is a valid connection
// POST: Returns the highest applied version
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every migration newer than the current schema version,
// each in its own transaction.
// PRE: db is a valid connection for dialect d
// POST: schema is at LatestSchemaVersion
// INVARIANT: re-running is a no-op
func MigrateDB(db *sql.DB, d Dialect) error {
	if d == DialectSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec(Rebind(d, `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`),
			m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name, "dialect", string(d))
	}
	return nil
}
