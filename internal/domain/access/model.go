package access

import (
	"errors"
	"strings"
	"time"
)

// Role is a position in the club role hierarchy.
type Role string

// Role constants, lowest to highest.
const (
	RolePlayer     Role = "player"
	RoleParent     Role = "parent"
	RoleCoach      Role = "coach"
	RoleClubAdmin  Role = "club_admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRoles contains all roles in hierarchy order.
var ValidRoles = []Role{RolePlayer, RoleParent, RoleCoach, RoleClubAdmin, RoleSuperAdmin}

var rank = map[Role]int{
	RolePlayer:     1,
	RoleParent:     2,
	RoleCoach:      3,
	RoleClubAdmin:  4,
	RoleSuperAdmin: 5,
}

// Domain errors
var (
	ErrInvalidRole       = errors.New("role must be one of: player, parent, coach, club_admin, super_admin")
	ErrEmptyAccountID    = errors.New("account ID cannot be empty")
	ErrClubRequired      = errors.New("club ID is required for roles other than super_admin")
	ErrSuperAdminHasClub = errors.New("super_admin grants cannot be scoped to a club")
)

// ParseRole converts a string to a Role.
// PRE: s is a role name, case-insensitive
// POST: Returns the Role or ErrInvalidRole
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rank[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// Rank returns the hierarchy level of the role. Unknown roles rank 0.
func (r Role) Rank() int {
	return rank[r]
}

// AtLeast reports whether r sits at or above other in the hierarchy.
// An unknown role never satisfies anything.
func (r Role) AtLeast(other Role) bool {
	if !r.Valid() || !other.Valid() {
		return false
	}
	return r.Rank() >= other.Rank()
}

// Compare returns -1, 0 or 1 as r ranks below, equal to or above other.
func (r Role) Compare(other Role) int {
	switch {
	case r.Rank() < other.Rank():
		return -1
	case r.Rank() > other.Rank():
		return 1
	default:
		return 0
	}
}

// Grant is one role held by an account, scoped to a club.
// ClubID is empty only for super_admin.
type Grant struct {
	ID        string
	AccountID string
	Role      Role
	ClubID    string
	CreatedAt time.Time
}

// Validate checks if the Grant has valid data.
// PRE: Grant struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: ClubID is empty iff Role is super_admin
func (g *Grant) Validate() error {
	if strings.TrimSpace(g.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if !g.Role.Valid() {
		return ErrInvalidRole
	}
	if g.Role == RoleSuperAdmin {
		if g.ClubID != "" {
			return ErrSuperAdminHasClub
		}
		return nil
	}
	if strings.TrimSpace(g.ClubID) == "" {
		return ErrClubRequired
	}
	return nil
}

// Requirement is what an operation demands of its caller.
// An empty ClubID means the requirement is not club-scoped.
type Requirement struct {
	MinimumRole Role
	ClubID      string
}

// Decision is the outcome of an access check.
type Decision bool

// Decision values.
const (
	Deny  Decision = false
	Allow Decision = true
)

// Allowed reports whether the decision permits the operation.
func (d Decision) Allowed() bool {
	return bool(d)
}

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}
