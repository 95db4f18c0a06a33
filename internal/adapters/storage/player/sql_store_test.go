package player_test

import (
	"context"
	"testing"
	"time"

	"clubify/internal/adapters/storage/player"
	"clubify/internal/adapters/storage/storagetest"
	domain "clubify/internal/domain/player"
)

func seedPlayers(t *testing.T) (*player.SQLStore, context.Context) {
	t.Helper()
	db := storagetest.OpenDB(t)
	storagetest.SeedClub(t, db, "c1")
	storagetest.SeedClub(t, db, "c2")
	storagetest.SeedTeam(t, db, "t1", "c1")
	storagetest.SeedAccount(t, db, "parent1", "parent@x.mk")
	store := player.NewSQLStore(db)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range []domain.Player{
		{ID: "p1", ClubID: "c1", FirstName: "Ana", LastName: "Petrova", CreatedAt: now},
		{ID: "p2", ClubID: "c1", FirstName: "Bojan", LastName: "Angelov", Position: domain.PositionDefender, JerseyNumber: 4, CreatedAt: now},
		{ID: "p3", ClubID: "c2", FirstName: "Ivan", LastName: "Ristov", CreatedAt: now},
	} {
		if err := store.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s): %v", p.ID, err)
		}
	}
	storagetest.Exec(t, db, `INSERT INTO team_player (id, team_id, player_id, joined_at) VALUES ('tp1', 't1', 'p1', ?)`, storagetest.Stamp)
	storagetest.Exec(t, db, `INSERT INTO team_player (id, team_id, player_id, joined_at, left_at) VALUES ('tp2', 't1', 'p2', ?, ?)`, storagetest.Stamp, storagetest.Stamp)
	return store, ctx
}

func TestSQLStore_ListFilters(t *testing.T) {
	store, ctx := seedPlayers(t)

	tests := []struct {
		name   string
		filter player.ListFilter
		want   []string
	}{
		{"club scoped", player.ListFilter{ClubID: "c1", Limit: 10}, []string{"p2", "p1"}},
		{"active team members only", player.ListFilter{ClubID: "c1", TeamID: "t1", Limit: 10}, []string{"p1"}},
		{"search is case-insensitive", player.ListFilter{ClubID: "c1", Search: "BOJ", Limit: 10}, []string{"p2"}},
		{"other club", player.ListFilter{ClubID: "c2", Limit: 10}, []string{"p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List len = %d, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("List[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
			n, err := store.Count(ctx, tt.filter)
			if err != nil || n != len(tt.want) {
				t.Errorf("Count = %d, %v; want %d", n, err, len(tt.want))
			}
		})
	}
}

func TestSQLStore_ParentLinks(t *testing.T) {
	store, ctx := seedPlayers(t)
	link := domain.ParentLink{PlayerID: "p1", AccountID: "parent1"}

	ok, err := store.LinkParent(ctx, link)
	if err != nil || !ok {
		t.Fatalf("LinkParent = %v, %v", ok, err)
	}
	ok, err = store.LinkParent(ctx, link)
	if err != nil || ok {
		t.Fatalf("duplicate LinkParent = %v, %v; want false", ok, err)
	}

	children, err := store.ListChildren(ctx, "parent1")
	if err != nil || len(children) != 1 || children[0].ID != "p1" {
		t.Fatalf("ListChildren = %+v, %v", children, err)
	}
	links, err := store.ListParentLinks(ctx, []string{"p1", "p2"})
	if err != nil || len(links) != 1 {
		t.Fatalf("ListParentLinks = %+v, %v", links, err)
	}

	if err := store.UnlinkParent(ctx, link); err != nil {
		t.Fatalf("UnlinkParent: %v", err)
	}
	children, _ = store.ListChildren(ctx, "parent1")
	if len(children) != 0 {
		t.Errorf("ListChildren after unlink = %d, want 0", len(children))
	}
}
