package orchestrators

import (
	"context"
	"errors"
	"sort"
	"testing"

	"clubify/internal/domain/club"
)

func (m *mockClubs) List(_ context.Context) ([]club.Club, error) {
	out := make([]club.Club, 0, len(m.clubs))
	for _, c := range m.clubs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func TestExecuteScheduledBilling(t *testing.T) {
	f := newBillingFixture()
	f.clubs.clubs["club-2"] = club.Club{ID: "club-2", Name: "Empty FC", Active: true}
	f.clubs.clubs["club-3"] = club.Club{ID: "club-3", Name: "Folded FC", Active: false}
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1", "p2")
	f.addFee("team-1", 3000, "2025-01-01")

	res, err := ExecuteScheduledBilling(context.Background(), f.clubs, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Clubs != 2 || res.Skipped != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want 2 clubs with 1 skipped", res)
	}
	if len(f.payments.records) != 2 {
		t.Errorf("got %d records, want 2", len(f.payments.records))
	}
	for _, r := range f.payments.records {
		if r.PeriodMonth != 3 || r.PeriodYear != 2025 {
			t.Errorf("record period = %d/%d, want the clock's month", r.PeriodMonth, r.PeriodYear)
		}
	}

	// A rerun in the same month adds nothing.
	if _, err := ExecuteScheduledBilling(context.Background(), f.clubs, f.deps()); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(f.payments.records) != 2 {
		t.Errorf("rerun produced %d records, want 2", len(f.payments.records))
	}
}

func TestExecuteScheduledBilling_StoreFailureContinues(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1")
	f.addFee("team-1", 3000, "2025-01-01")
	f.payments.err = errors.New("disk full")

	res, err := ExecuteScheduledBilling(context.Background(), f.clubs, f.deps())
	if err == nil {
		t.Fatal("expected the store failure to be reported")
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
}
