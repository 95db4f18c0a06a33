package storage

import (
	"database/sql"
	"sort"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
// A single connection keeps every statement on the same in-memory database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getTableSQL returns sorted CREATE TABLE statements from sqlite_master.
func getTableSQL(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT sql FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND sql IS NOT NULL ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var sqls []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("failed to scan sql: %v", err)
		}
		sqls = append(sqls, strings.Join(strings.Fields(s), " "))
	}
	sort.Strings(sqls)
	return sqls
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"account",
	"attendance",
	"audit_event",
	"club",
	"coach_assignment",
	"fixture",
	"outbox",
	"payment_record",
	"player",
	"player_parent",
	"role_grant",
	"schema_version",
	"subscription_fee",
	"team",
	"team_player",
	"training_recurrence",
	"training_session",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Errorf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if i >= len(tables) {
			t.Errorf("missing table: %s", want)
			continue
		}
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice produces no errors
// and the version remains the same.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	version1, _ := SchemaVersion(db)

	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	version2, _ := SchemaVersion(db)
	if version1 != version2 {
		t.Errorf("version changed after idempotent run: %d -> %d", version1, version2)
	}
}

// TestMigrateDB_SchemaDrift verifies two fresh databases end up with identical schemas.
func TestMigrateDB_SchemaDrift(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	golden := getTableSQL(t, db)

	db2 := openTestDB(t)
	if err := MigrateDB(db2, DialectSQLite); err != nil {
		t.Fatalf("MigrateDB (second) failed: %v", err)
	}
	actual := getTableSQL(t, db2)

	if len(golden) != len(actual) {
		t.Fatalf("schema drift: golden has %d tables, actual has %d", len(golden), len(actual))
	}
	for i := range golden {
		if golden[i] != actual[i] {
			t.Errorf("schema drift at table %d:\ngolden: %s\nactual: %s", i, golden[i], actual[i])
		}
	}
}

// TestMigrateDB_VersionProgression verifies that SchemaVersion reports 0 before
// migration and the latest version after.
func TestMigrateDB_VersionProgression(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != 0 {
		t.Errorf("initial version = %d, want 0", v)
	}

	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	v, err = SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != LatestSchemaVersion() {
		t.Errorf("post-migration version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_LegacyRecurrences verifies rows written before pattern_id existed
// survive the upgrade with an empty pattern_id.
func TestMigrateDB_LegacyRecurrences(t *testing.T) {
	db := openTestDB(t)

	// Apply only the baseline.
	if _, err := SchemaVersion(db); err != nil {
		t.Fatal(err)
	}
	tx, _ := db.Begin()
	for _, stmt := range migrations[0].stmts {
		if _, err := tx.Exec(stmt); err != nil {
			t.Fatalf("baseline stmt: %v", err)
		}
	}
	tx.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (1, '2025-01-01T00:00:00Z')`)
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	mustExec(t, db, `INSERT INTO club (id, name, created_at) VALUES ('c1', 'FK Vardar', '2025-01-01T00:00:00Z')`)
	mustExec(t, db, `INSERT INTO team (id, club_id, name, age_group, created_at) VALUES ('t1', 'c1', 'U12', 'U12', '2025-01-01T00:00:00Z')`)
	mustExec(t, db, `INSERT INTO training_recurrence (id, team_id, day_of_week, start_time, duration_minutes, created_at) VALUES ('r1', 't1', 1, '17:00', 90, '2025-01-01T00:00:00Z')`)

	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	var patternID string
	if err := db.QueryRow(`SELECT pattern_id FROM training_recurrence WHERE id = 'r1'`).Scan(&patternID); err != nil {
		t.Fatalf("legacy recurrence lost: %v", err)
	}
	if patternID != "" {
		t.Errorf("pattern_id = %q, want empty", patternID)
	}
}

// TestMigrateDB_PaymentUniqueness verifies one payment row per player and period.
func TestMigrateDB_PaymentUniqueness(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, DialectSQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	mustExec(t, db, `INSERT INTO club (id, name, created_at) VALUES ('c1', 'FK Vardar', '2025-01-01T00:00:00Z')`)
	mustExec(t, db, `INSERT INTO team (id, club_id, name, age_group, created_at) VALUES ('t1', 'c1', 'U12', 'U12', '2025-01-01T00:00:00Z')`)
	mustExec(t, db, `INSERT INTO player (id, club_id, first_name, last_name, created_at) VALUES ('p1', 'c1', 'Ana', 'Petrova', '2025-01-01T00:00:00Z')`)

	insert := `INSERT INTO payment_record (id, player_id, team_id, period_month, period_year, amount_due, status, due_date, created_at)
		VALUES (?, 'p1', 't1', 3, 2025, 1500, 'unpaid', '2025-03-05', '2025-03-01T00:00:00Z') ON CONFLICT DO NOTHING`
	r1, err := db.Exec(insert, "pay1")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	r2, err := db.Exec(insert, "pay2")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	n1, _ := r1.RowsAffected()
	n2, _ := r2.RowsAffected()
	if n1 != 1 || n2 != 0 {
		t.Errorf("rows affected = %d, %d; want 1, 0", n1, n2)
	}
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	if _, err := db.Exec(q, args...); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}
