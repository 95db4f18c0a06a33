package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/club"
	"clubify/internal/domain/fee"
	"clubify/internal/domain/payment"
	"clubify/internal/domain/player"
	"clubify/internal/domain/team"
)

var billingNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type mockClubs struct {
	clubs map[string]club.Club
}

func (m *mockClubs) GetByID(_ context.Context, id string) (club.Club, error) {
	c, ok := m.clubs[id]
	if !ok {
		return club.Club{}, fmt.Errorf("club not found: %w", sql.ErrNoRows)
	}
	return c, nil
}

type mockTeams struct {
	teams []team.Team
	err   error
}

func (m *mockTeams) ListByClub(_ context.Context, clubID string) ([]team.Team, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []team.Team
	for _, t := range m.teams {
		if t.ClubID == clubID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTeams) GetByID(_ context.Context, id string) (team.Team, error) {
	for _, t := range m.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return team.Team{}, fmt.Errorf("team not found: %w", sql.ErrNoRows)
}

type mockRoster struct {
	assignments []player.Assignment
}

func (m *mockRoster) ListActiveByTeams(_ context.Context, teamIDs []string) ([]player.Assignment, error) {
	want := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		want[id] = true
	}
	var out []player.Assignment
	for _, a := range m.assignments {
		if want[a.TeamID] && a.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockFees struct {
	fees []fee.SubscriptionFee
}

func (m *mockFees) ListEffectiveOnOrBefore(_ context.Context, teamIDs []string, date string) ([]fee.SubscriptionFee, error) {
	want := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		want[id] = true
	}
	var out []fee.SubscriptionFee
	for _, f := range m.fees {
		if want[f.TeamID] && f.EffectiveFrom <= date {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].EffectiveFrom > out[j].EffectiveFrom
	})
	return out, nil
}

// mockPayments enforces the (player, month, year) uniqueness of the real table.
type mockPayments struct {
	records map[string]payment.Record
	err     error
}

func newMockPayments() *mockPayments {
	return &mockPayments{records: make(map[string]payment.Record)}
}

func periodKey(r payment.Record) string {
	return fmt.Sprintf("%s/%d/%d", r.PlayerID, r.PeriodMonth, r.PeriodYear)
}

func (m *mockPayments) InsertIgnoreDuplicates(_ context.Context, records []payment.Record) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, r := range records {
		k := periodKey(r)
		if _, exists := m.records[k]; exists {
			continue
		}
		m.records[k] = r
		n++
	}
	return n, nil
}

type billingFixture struct {
	clubs    *mockClubs
	teams    *mockTeams
	roster   *mockRoster
	fees     *mockFees
	payments *mockPayments
}

func newBillingFixture() *billingFixture {
	return &billingFixture{
		clubs: &mockClubs{clubs: map[string]club.Club{
			"club-1": {ID: "club-1", Name: "FK Vardar Youth", Active: true},
		}},
		teams:    &mockTeams{},
		roster:   &mockRoster{},
		fees:     &mockFees{},
		payments: newMockPayments(),
	}
}

func (f *billingFixture) addTeam(id, name string) {
	f.teams.teams = append(f.teams.teams, team.Team{ID: id, ClubID: "club-1", Name: name, AgeGroup: "U12", Active: true})
}

func (f *billingFixture) addPlayers(teamID string, playerIDs ...string) {
	for _, p := range playerIDs {
		f.roster.assignments = append(f.roster.assignments, player.Assignment{
			ID: "a-" + p, TeamID: teamID, PlayerID: p, JoinedAt: billingNow,
		})
	}
}

func (f *billingFixture) addFee(teamID string, amount int64, from string) {
	f.fees.fees = append(f.fees.fees, fee.SubscriptionFee{
		ID: fmt.Sprintf("fee-%s-%s", teamID, from), TeamID: teamID, Amount: amount, EffectiveFrom: from,
	})
}

func (f *billingFixture) deps() GeneratePaymentsDeps {
	n := 0
	return GeneratePaymentsDeps{
		Clubs:    f.clubs,
		Teams:    f.teams,
		Rosters:  f.roster,
		Fees:     f.fees,
		Payments: f.payments,
		GenerateID: func() string {
			n++
			return fmt.Sprintf("pay-%03d", n)
		},
		Now: func() time.Time { return billingNow },
	}
}

func TestExecuteGeneratePayments_EndToEnd(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1", "p2")
	f.addFee("team-1", 3000, "2025-01-01")

	res, err := ExecuteGeneratePayments(context.Background(), GeneratePaymentsInput{
		ClubID: "club-1", Month: 3, Year: 2025,
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 0 {
		t.Errorf("expected inserted=2 skipped=0, got %+v", res)
	}
	if len(res.TeamsWithoutFees) != 0 {
		t.Errorf("expected no teams without fees, got %v", res.TeamsWithoutFees)
	}
	if len(f.payments.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(f.payments.records))
	}
	for _, r := range f.payments.records {
		if r.AmountDue != 3000 {
			t.Errorf("expected amount_due=3000, got %d", r.AmountDue)
		}
		if r.AmountPaid != 0 || r.DiscountApplied != 0 {
			t.Errorf("expected zero paid and discount, got %+v", r)
		}
		if r.Status != payment.StatusUnpaid {
			t.Errorf("expected status unpaid, got %s", r.Status)
		}
		if r.DueDate != "2025-03-05" {
			t.Errorf("expected due_date 2025-03-05, got %s", r.DueDate)
		}
	}
}

func TestExecuteGeneratePayments_Idempotent(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1", "p2", "p3")
	f.addFee("team-1", 2500, "2024-09-01")
	deps := f.deps()
	input := GeneratePaymentsInput{ClubID: "club-1", Month: 6, Year: 2025}

	first, err := ExecuteGeneratePayments(context.Background(), input, deps)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Inserted != 3 {
		t.Fatalf("first run inserted %d, want 3", first.Inserted)
	}
	before := make(map[string]payment.Record, len(f.payments.records))
	for k, v := range f.payments.records {
		before[k] = v
	}

	second, err := ExecuteGeneratePayments(context.Background(), input, deps)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 3 {
		t.Errorf("second run = %+v, want inserted=0 skipped=3", second)
	}
	for k, v := range f.payments.records {
		if before[k] != v {
			t.Errorf("record %s changed on second run", k)
		}
	}
}

func TestExecuteGeneratePayments_FeeEffectiveDating(t *testing.T) {
	tests := []struct {
		name  string
		month int
		want  int64
	}{
		{"before change", 5, 1000},
		{"on change", 6, 1200},
		{"after change", 9, 1200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			f.addTeam("team-1", "U10 Eagles")
			f.addPlayers("team-1", "p1")
			f.addFee("team-1", 1000, "2025-01-01")
			f.addFee("team-1", 1200, "2025-06-01")

			_, err := ExecuteGeneratePayments(context.Background(), GeneratePaymentsInput{
				ClubID: "club-1", Month: tt.month, Year: 2025,
			}, f.deps())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			r := f.payments.records[fmt.Sprintf("p1/%d/2025", tt.month)]
			if r.AmountDue != tt.want {
				t.Errorf("amount_due = %d, want %d", r.AmountDue, tt.want)
			}
		})
	}
}

func TestExecuteGeneratePayments_TeamsWithoutFeesReportedOnce(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addTeam("team-2", "U14 Wolves")
	f.addPlayers("team-1", "p1")
	f.addPlayers("team-2", "p2", "p3", "p4")
	f.addFee("team-1", 3000, "2025-01-01")
	// A fee that only starts after the period does not count.
	f.addFee("team-2", 2000, "2025-04-01")

	res, err := ExecuteGeneratePayments(context.Background(), GeneratePaymentsInput{
		ClubID: "club-1", Month: 3, Year: 2025,
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.TeamsWithoutFees) != 1 || res.TeamsWithoutFees[0] != "U14 Wolves" {
		t.Errorf("TeamsWithoutFees = %v, want [U14 Wolves]", res.TeamsWithoutFees)
	}
	if res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", res.Inserted)
	}
	for _, r := range f.payments.records {
		if r.TeamID == "team-2" {
			t.Errorf("unexpected record for team without fee: %+v", r)
		}
	}
}

func TestExecuteGeneratePayments_Discount(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1", "p2")
	f.addFee("team-1", 3000, "2025-01-01")
	deps := f.deps()
	deps.Discounts = payment.DiscountFunc(func(_ context.Context, c payment.Candidate) (int64, error) {
		if c.PlayerID == "p2" {
			return 500, nil
		}
		return 0, nil
	})

	if _, err := ExecuteGeneratePayments(context.Background(), GeneratePaymentsInput{
		ClubID: "club-1", Month: 3, Year: 2025,
	}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := f.payments.records["p2/3/2025"]
	if r.AmountDue != 2500 || r.DiscountApplied != 500 {
		t.Errorf("discounted record = %+v, want due=2500 discount=500", r)
	}
	if full := f.payments.records["p1/3/2025"]; full.AmountDue != 3000 {
		t.Errorf("undiscounted amount_due = %d, want 3000", full.AmountDue)
	}
}

func TestExecuteGeneratePayments_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *billingFixture)
		input   GeneratePaymentsInput
		wantErr error
		wantMsg string
	}{
		{
			name:    "month out of range",
			input:   GeneratePaymentsInput{ClubID: "club-1", Month: 13, Year: 2025},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "year too early",
			input:   GeneratePaymentsInput{ClubID: "club-1", Month: 1, Year: 2023},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown club",
			input:   GeneratePaymentsInput{ClubID: "nope", Month: 1, Year: 2025},
			wantErr: apperr.ErrNotFound,
			wantMsg: "club not found",
		},
		{
			name:    "no teams",
			input:   GeneratePaymentsInput{ClubID: "club-1", Month: 1, Year: 2025},
			wantErr: apperr.ErrValidation,
			wantMsg: "no teams found for club",
		},
		{
			name:    "no active players",
			setup:   func(f *billingFixture) { f.addTeam("team-1", "U12 Lions") },
			input:   GeneratePaymentsInput{ClubID: "club-1", Month: 1, Year: 2025},
			wantErr: apperr.ErrValidation,
			wantMsg: "no active players found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := ExecuteGeneratePayments(context.Background(), tt.input, f.deps())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if len(f.payments.records) != 0 {
				t.Errorf("expected no writes, got %d", len(f.payments.records))
			}
		})
	}
}

func TestExecuteGeneratePayments_StoreFailureSurfaced(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1")
	f.addFee("team-1", 3000, "2025-01-01")
	f.payments.err = errors.New("disk full")

	_, err := ExecuteGeneratePayments(context.Background(), GeneratePaymentsInput{
		ClubID: "club-1", Month: 3, Year: 2025,
	}, f.deps())
	if !apperr.IsStore(err) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestExecuteGeneratePayments_LeftPlayersNotBilled(t *testing.T) {
	f := newBillingFixture()
	f.addTeam("team-1", "U12 Lions")
	f.addPlayers("team-1", "p1")
	f.roster.assignments = append(f.roster.assignments, player.Assignment{
		ID: "a-gone", TeamID: "team-1", PlayerID: "gone", JoinedAt: billingNow.AddDate(-1, 0, 0), LeftAt: billingNow.AddDate(0, -1, 0),
	})
	f.addFee("team-1", 3000, "2025-01-01")

	res, err := ExecuteGeneratePayments(context.Background(), GeneratePaymentsInput{
		ClubID: "club-1", Month: 3, Year: 2025,
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", res.Inserted)
	}
	if _, ok := f.payments.records["gone/3/2025"]; ok {
		t.Error("player who left the team was billed")
	}
}
