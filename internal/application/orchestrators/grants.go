package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/access"
	"clubify/internal/domain/account"
	"clubify/internal/domain/audit"
)

// AccountReader loads accounts.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// GrantStore defines the grant persistence used by grant administration.
type GrantStore interface {
	GetByID(ctx context.Context, id string) (access.Grant, error)
	ListByClub(ctx context.Context, clubID string) ([]access.Grant, error)
	Insert(ctx context.Context, g access.Grant) (bool, error)
	Delete(ctx context.Context, id string) error
}

// GrantDeps holds dependencies for AssignGrant and RevokeGrant.
type GrantDeps struct {
	Accounts AccountReader
	Grants   GrantStore
	Audit    AuditRecorder

	GenerateID func() string
	Now        func() time.Time
}

// AssignGrantInput carries input for AssignGrant. The target account is
// identified by AccountID, or by Email when AccountID is empty.
type AssignGrantInput struct {
	CallerGrants []access.Grant
	ActorID      string
	ActorEmail   string

	ClubID    string
	AccountID string
	Email     string
	Role      string
}

// AssignGrantResult carries the stored grant.
type AssignGrantResult struct {
	Grant   access.Grant
	Created bool // false when an identical grant already existed
}

// ExecuteAssignGrant gives an account a role in a club.
// PRE: caller is authenticated
// POST: the grant exists; a duplicate is a no-op
// INVARIANT: club admins manage player, parent and coach grants only
func ExecuteAssignGrant(ctx context.Context, input AssignGrantInput, deps GrantDeps) (AssignGrantResult, error) {
	role, err := access.ParseRole(input.Role)
	if err != nil {
		return AssignGrantResult{}, apperr.Invalid(err)
	}

	clubID := input.ClubID
	if role == access.RoleSuperAdmin {
		clubID = ""
	}
	if !access.CanAssign(input.CallerGrants, role, clubID) {
		slog.Info("access_event", "event", "grant_denied", "actor_id", input.ActorID, "role", role, "club_id", clubID)
		return AssignGrantResult{}, apperr.ErrForbidden
	}

	var acct account.Account
	if input.AccountID != "" {
		acct, err = deps.Accounts.GetByID(ctx, input.AccountID)
	} else {
		acct, err = deps.Accounts.GetByEmail(ctx, account.NormalizeEmail(input.Email))
	}
	if err != nil {
		return AssignGrantResult{}, lookupErr(err, "account", "get account")
	}

	now := nowOr(deps.Now)
	g := access.Grant{
		ID:        idFunc(deps.GenerateID)(),
		AccountID: acct.ID,
		Role:      role,
		ClubID:    clubID,
		CreatedAt: now,
	}
	if err := g.Validate(); err != nil {
		return AssignGrantResult{}, apperr.Invalid(err)
	}

	created, err := deps.Grants.Insert(ctx, g)
	if err != nil {
		return AssignGrantResult{}, apperr.Store("insert grant", err)
	}

	if created {
		slog.Info("access_event", "event", "grant_assigned", "actor_id", input.ActorID, "account_id", acct.ID, "role", role, "club_id", clubID)
		recordAudit(ctx, deps.Audit,
			audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryAccess, audit.ActionGrant, now).
				InClub(clubID).
				WithResource("grant", g.ID).
				WithDescription(fmt.Sprintf("granted %s to %s", role, acct.Email)))
	}

	return AssignGrantResult{Grant: g, Created: created}, nil
}

// RevokeGrantInput carries input for RevokeGrant.
type RevokeGrantInput struct {
	CallerGrants []access.Grant
	ActorID      string
	ActorEmail   string

	ClubID  string
	GrantID string
}

// ExecuteRevokeGrant removes a grant from a club. An empty ClubID addresses
// the unscoped super_admin grants.
// PRE: caller is authenticated
// POST: grant deleted
// INVARIANT: the same authority rule as assignment applies to the grant's role
// INVARIANT: the last super_admin grant is never removed
func ExecuteRevokeGrant(ctx context.Context, input RevokeGrantInput, deps GrantDeps) error {
	g, err := deps.Grants.GetByID(ctx, input.GrantID)
	if err != nil {
		return lookupErr(err, "grant", "get grant")
	}
	if g.ClubID != input.ClubID {
		return apperr.NotFound("grant")
	}
	if !access.CanAssign(input.CallerGrants, g.Role, g.ClubID) {
		slog.Info("access_event", "event", "revoke_denied", "actor_id", input.ActorID, "grant_id", g.ID, "role", g.Role)
		return apperr.ErrForbidden
	}
	if g.Role == access.RoleSuperAdmin {
		unscoped, err := deps.Grants.ListByClub(ctx, "")
		if err != nil {
			return apperr.Store("list super admins", err)
		}
		if countRole(unscoped, access.RoleSuperAdmin) <= 1 {
			return apperr.Conflict(errors.New("cannot revoke the last super_admin grant"))
		}
	}

	if err := deps.Grants.Delete(ctx, g.ID); err != nil {
		return apperr.Store("delete grant", err)
	}

	slog.Info("access_event", "event", "grant_revoked", "actor_id", input.ActorID, "account_id", g.AccountID, "role", g.Role, "club_id", g.ClubID)
	recordAudit(ctx, deps.Audit,
		audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryAccess, audit.ActionRevoke, nowOr(deps.Now)).
			InClub(g.ClubID).
			WithResource("grant", g.ID).
			WithDescription(fmt.Sprintf("revoked %s from account %s", g.Role, g.AccountID)))
	return nil
}

func countRole(grants []access.Grant, role access.Role) int {
	n := 0
	for _, g := range grants {
		if g.Role == role {
			n++
		}
	}
	return n
}
