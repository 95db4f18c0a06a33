package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/access"
	"clubify/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// GrantLister loads the grants an account holds.
type GrantLister interface {
	ListByAccount(ctx context.Context, accountID string) ([]access.Grant, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID string
	Email     string
	FullName  string
	Grants    []access.Grant
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	GrantStore   GrantLister
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: Valid email and password provided
// POST: Returns account and grants on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := account.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := nowOr(deps.Now)

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		if !isNoRows(err) {
			return LoginResult{}, apperr.Store("get account", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "save_failed_login", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "reset_failed_logins", "email", email, "error", err)
		}
	}

	grants, err := deps.GrantStore.ListByAccount(ctx, acct.ID)
	if err != nil {
		return LoginResult{}, apperr.Store("list grants", err)
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "grants", len(grants))

	return LoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		FullName:  acct.FullName,
		Grants:    grants,
	}, nil
}
