package access

// IsSuperAdmin reports whether any grant is super_admin.
func IsSuperAdmin(grants []Grant) bool {
	for _, g := range grants {
		if g.Role == RoleSuperAdmin {
			return true
		}
	}
	return false
}

// Evaluate decides a hierarchy-based requirement.
// PRE: grants are the caller's full grant set (may be empty)
// POST: Allow iff the caller is super_admin, or holds a grant at or above
// req.MinimumRole for req.ClubID (any club when req.ClubID is empty)
// INVARIANT: pure; no I/O
func Evaluate(grants []Grant, req Requirement) Decision {
	if IsSuperAdmin(grants) {
		return Allow
	}
	for _, g := range grants {
		if !g.Role.AtLeast(req.MinimumRole) {
			continue
		}
		if req.ClubID == "" {
			return Allow
		}
		if g.ClubID != "" && g.ClubID == req.ClubID {
			return Allow
		}
	}
	return Deny
}

// HasMinimumRole is Evaluate returning a bool.
func HasMinimumRole(grants []Grant, role Role, clubID string) bool {
	return Evaluate(grants, Requirement{MinimumRole: role, ClubID: clubID}).Allowed()
}

// HasRole decides an exact-role requirement. Super_admin always passes.
// PRE: grants are the caller's full grant set
// POST: Allow iff some grant has exactly role (and clubID when non-empty)
func HasRole(grants []Grant, role Role, clubID string) Decision {
	if IsSuperAdmin(grants) {
		return Allow
	}
	for _, g := range grants {
		if g.Role != role {
			continue
		}
		if clubID == "" || (g.ClubID != "" && g.ClubID == clubID) {
			return Allow
		}
	}
	return Deny
}

// ClubsFor returns the distinct club ids the grants are scoped to, in grant order.
// Super_admin grants contribute nothing; callers check IsSuperAdmin first.
func ClubsFor(grants []Grant) []string {
	seen := make(map[string]bool, len(grants))
	var clubs []string
	for _, g := range grants {
		if g.ClubID == "" || seen[g.ClubID] {
			continue
		}
		seen[g.ClubID] = true
		clubs = append(clubs, g.ClubID)
	}
	return clubs
}

// HighestRoleIn returns the caller's highest role for clubID, or "" when none.
// Super_admin is returned regardless of club.
func HighestRoleIn(grants []Grant, clubID string) Role {
	var best Role
	for _, g := range grants {
		if g.Role != RoleSuperAdmin && g.ClubID != clubID {
			continue
		}
		if best == "" || g.Role.Compare(best) > 0 {
			best = g.Role
		}
	}
	return best
}

// CanAssign reports whether a caller may grant or revoke role in clubID.
// Club admins manage player, parent and coach grants in their own club;
// club_admin and super_admin grants are managed by super_admins only.
func CanAssign(grants []Grant, role Role, clubID string) bool {
	if IsSuperAdmin(grants) {
		return true
	}
	if role.AtLeast(RoleClubAdmin) {
		return false
	}
	return HasMinimumRole(grants, RoleClubAdmin, clubID)
}
