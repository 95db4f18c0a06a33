package training_test

import (
	"context"
	"testing"
	"time"

	"clubify/internal/adapters/storage/storagetest"
	"clubify/internal/adapters/storage/training"
	domain "clubify/internal/domain/training"
)

var created = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func rec(id, pattern string, day int) domain.Recurrence {
	return domain.Recurrence{ID: id, TeamID: "t1", PatternID: pattern, DayOfWeek: day, StartTime: "17:00", DurationMinutes: 90, Location: "Field A", CreatedAt: created}
}

func sess(id, recID, date string) domain.Session {
	return domain.Session{ID: id, TeamID: "t1", SessionDate: date, StartTime: "17:00", DurationMinutes: 90, Location: "Field A", RecurrenceID: recID, CreatedAt: created}
}

func TestSQLStore_CreateAndDeletePatternFrom(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.SeedClub(t, db, "c1")
	storagetest.SeedTeam(t, db, "t1", "c1")
	storagetest.SeedPlayer(t, db, "p1", "c1")
	store := training.NewSQLStore(db)
	ctx := context.Background()

	recs := []domain.Recurrence{rec("r-mon", "pat1", 1), rec("r-wed", "pat1", 3), rec("r-fri", "pat1", 5)}
	sessions := []domain.Session{
		sess("s1", "r-mon", "2025-03-03"),
		sess("s2", "r-wed", "2025-03-05"),
		sess("s3", "r-fri", "2025-03-07"),
		sess("s4", "r-mon", "2025-03-10"),
		sess("s5", "r-wed", "2025-03-12"),
		sess("s6", "r-fri", "2025-03-14"),
	}
	if err := store.CreatePattern(ctx, recs, sessions); err != nil {
		t.Fatalf("CreatePattern: %v", err)
	}
	if err := store.InsertSession(ctx, sess("one-off", "", "2025-03-20")); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	storagetest.Exec(t, db, `INSERT INTO attendance (id, session_id, player_id, status, recorded_at) VALUES ('att1', 's5', 'p1', 'present', ?)`, storagetest.Stamp)

	team, err := store.ListRecurrencesByTeam(ctx, "t1")
	if err != nil || len(team) != 3 {
		t.Fatalf("ListRecurrencesByTeam = %d, %v", len(team), err)
	}

	// Delete "this and future" from the Wednesday of week one.
	n, err := store.DeletePatternFrom(ctx, []string{"r-mon", "r-wed", "r-fri"}, "2025-03-05")
	if err != nil {
		t.Fatalf("DeletePatternFrom: %v", err)
	}
	if n != 5 {
		t.Errorf("deleted = %d, want 5", n)
	}

	left, err := store.ListSessions(ctx, training.SessionFilter{TeamIDs: []string{"t1"}})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(left) != 2 || left[0].ID != "s1" || left[1].ID != "one-off" {
		t.Fatalf("remaining sessions = %+v", left)
	}
	if left[0].RecurrenceID != "" {
		t.Errorf("past session still linked to %q", left[0].RecurrenceID)
	}
	if _, err := store.GetRecurrence(ctx, "r-fri"); err == nil {
		t.Error("recurrence rows should be gone")
	}

	var attendanceRows int
	db.QueryRow(`SELECT COUNT(*) FROM attendance`).Scan(&attendanceRows)
	if attendanceRows != 0 {
		t.Errorf("attendance of deleted session survived: %d", attendanceRows)
	}
}

func TestSQLStore_CreatePatternIsAtomic(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.SeedClub(t, db, "c1")
	storagetest.SeedTeam(t, db, "t1", "c1")
	store := training.NewSQLStore(db)
	ctx := context.Background()

	// Duplicate session ids make the second insert fail.
	err := store.CreatePattern(ctx,
		[]domain.Recurrence{rec("r1", "pat", 1)},
		[]domain.Session{sess("dup", "r1", "2025-03-03"), sess("dup", "r1", "2025-03-10")})
	if err == nil {
		t.Fatal("expected error for duplicate session id")
	}
	if recs, _ := store.ListRecurrencesByTeam(ctx, "t1"); len(recs) != 0 {
		t.Errorf("recurrence written despite rollback: %+v", recs)
	}
}

func TestSQLStore_ListSessionsRange(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.SeedClub(t, db, "c1")
	storagetest.SeedTeam(t, db, "t1", "c1")
	storagetest.SeedSession(t, db, "a", "t1", "2025-03-01")
	storagetest.SeedSession(t, db, "b", "t1", "2025-03-15")
	storagetest.SeedSession(t, db, "c", "t1", "2025-04-01")
	store := training.NewSQLStore(db)

	got, err := store.ListSessions(context.Background(), training.SessionFilter{From: "2025-03-01", To: "2025-03-31"})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("ListSessions = %+v", got)
	}
	s, err := store.GetSession(context.Background(), "b")
	if err != nil || s.IsRecurring() {
		t.Errorf("GetSession = %+v, %v", s, err)
	}
}
