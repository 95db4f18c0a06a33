package access_test

import (
	"testing"

	"clubify/internal/domain/access"
)

// TestEvaluate_HierarchyMonotonicity checks every (r1 <= r2) pair against a club-scoped requirement.
func TestEvaluate_HierarchyMonotonicity(t *testing.T) {
	const club = "club-a"
	for _, r1 := range access.ValidRoles {
		for _, r2 := range access.ValidRoles {
			if r1.Compare(r2) > 0 {
				continue
			}
			higher := []access.Grant{{AccountID: "u", Role: r2, ClubID: clubFor(r2, club)}}
			if !access.Evaluate(higher, access.Requirement{MinimumRole: r1, ClubID: club}).Allowed() {
				t.Errorf("grant %s should satisfy requirement %s", r2, r1)
			}
			if r1 == r2 {
				continue
			}
			lower := []access.Grant{{AccountID: "u", Role: r1, ClubID: clubFor(r1, club)}}
			if access.Evaluate(lower, access.Requirement{MinimumRole: r2, ClubID: club}).Allowed() {
				t.Errorf("grant %s must not satisfy requirement %s", r1, r2)
			}
		}
	}
}

func clubFor(r access.Role, club string) string {
	if r == access.RoleSuperAdmin {
		return ""
	}
	return club
}

func TestEvaluate_SuperAdminBypass(t *testing.T) {
	grants := []access.Grant{{AccountID: "u", Role: access.RoleSuperAdmin}}
	for _, role := range access.ValidRoles {
		for _, club := range []string{"", "club-a", "club-b"} {
			if !access.Evaluate(grants, access.Requirement{MinimumRole: role, ClubID: club}).Allowed() {
				t.Errorf("super_admin denied %s in %q", role, club)
			}
			if !access.HasRole(grants, role, club).Allowed() {
				t.Errorf("super_admin denied exact %s in %q", role, club)
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		grants []access.Grant
		req    access.Requirement
		want   access.Decision
	}{
		{
			name: "empty grants deny",
			req:  access.Requirement{MinimumRole: access.RolePlayer},
			want: access.Deny,
		},
		{
			name:   "club admin of A denied in B",
			grants: []access.Grant{{Role: access.RoleClubAdmin, ClubID: "A"}},
			req:    access.Requirement{MinimumRole: access.RoleCoach, ClubID: "B"},
			want:   access.Deny,
		},
		{
			name:   "unscoped requirement matches any club",
			grants: []access.Grant{{Role: access.RoleCoach, ClubID: "A"}},
			req:    access.Requirement{MinimumRole: access.RoleCoach},
			want:   access.Allow,
		},
		{
			name:   "null club non-super grant never satisfies scoped requirement",
			grants: []access.Grant{{Role: access.RoleClubAdmin}},
			req:    access.Requirement{MinimumRole: access.RoleParent, ClubID: "A"},
			want:   access.Deny,
		},
		{
			name: "second grant satisfies",
			grants: []access.Grant{
				{Role: access.RoleParent, ClubID: "A"},
				{Role: access.RoleCoach, ClubID: "B"},
			},
			req:  access.Requirement{MinimumRole: access.RoleCoach, ClubID: "B"},
			want: access.Allow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := access.Evaluate(tt.grants, tt.req); got != tt.want {
				t.Errorf("Evaluate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHasRole_Exact(t *testing.T) {
	grants := []access.Grant{{Role: access.RoleClubAdmin, ClubID: "A"}}
	if access.HasRole(grants, access.RoleCoach, "A").Allowed() {
		t.Error("exact check must not use hierarchy")
	}
	if !access.HasRole(grants, access.RoleClubAdmin, "A").Allowed() {
		t.Error("exact role in club should allow")
	}
	if access.HasRole(grants, access.RoleClubAdmin, "B").Allowed() {
		t.Error("exact role in other club should deny")
	}
	if !access.HasRole(grants, access.RoleClubAdmin, "").Allowed() {
		t.Error("exact role without club should allow")
	}
}

func TestCanAssign(t *testing.T) {
	admin := []access.Grant{{Role: access.RoleClubAdmin, ClubID: "A"}}
	if !access.CanAssign(admin, access.RoleCoach, "A") {
		t.Error("club admin should assign coach in own club")
	}
	if access.CanAssign(admin, access.RoleClubAdmin, "A") {
		t.Error("club admin must not assign club_admin")
	}
	if access.CanAssign(admin, access.RoleCoach, "B") {
		t.Error("club admin must not assign in another club")
	}
	super := []access.Grant{{Role: access.RoleSuperAdmin}}
	if !access.CanAssign(super, access.RoleClubAdmin, "B") {
		t.Error("super admin should assign club_admin")
	}
}

func TestClubsForAndHighestRole(t *testing.T) {
	grants := []access.Grant{
		{Role: access.RoleParent, ClubID: "A"},
		{Role: access.RoleCoach, ClubID: "A"},
		{Role: access.RolePlayer, ClubID: "B"},
	}
	clubs := access.ClubsFor(grants)
	if len(clubs) != 2 || clubs[0] != "A" || clubs[1] != "B" {
		t.Errorf("ClubsFor = %v, want [A B]", clubs)
	}
	if got := access.HighestRoleIn(grants, "A"); got != access.RoleCoach {
		t.Errorf("HighestRoleIn(A) = %q, want coach", got)
	}
	if got := access.HighestRoleIn(grants, "C"); got != "" {
		t.Errorf("HighestRoleIn(C) = %q, want empty", got)
	}
}
