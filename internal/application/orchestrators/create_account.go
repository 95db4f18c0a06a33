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

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// GrantInserter stores grants, ignoring exact duplicates.
type GrantInserter interface {
	Insert(ctx context.Context, g access.Grant) (bool, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string
	FullName string
	Password string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	GrantStore   GrantInserter // used by ExecuteSeedAdmin
	GenerateID   func() string
	Now          func() time.Time
}

// ErrEmailAlreadyExists is returned when the email is taken.
var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation. The new account holds
// no grants; access is granted separately.
// PRE: Valid email, password >= 12 chars
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	acct := account.Account{
		ID:        idFunc(deps.GenerateID)(),
		Email:     account.NormalizeEmail(input.Email),
		FullName:  input.FullName,
		CreatedAt: nowOr(deps.Now),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, apperr.Invalid(err)
	}
	if err := acct.SetPassword(input.Password); err != nil {
		if errors.Is(err, account.ErrEmptyPassword) || errors.Is(err, account.ErrPasswordTooShort) {
			return account.Account{}, apperr.Invalid(err)
		}
		return account.Account{}, err
	}

	_, err := deps.AccountStore.GetByEmail(ctx, acct.Email)
	switch {
	case err == nil:
		return account.Account{}, apperr.Conflict(ErrEmailAlreadyExists)
	case !isNoRows(err):
		return account.Account{}, apperr.Store("get account", err)
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, apperr.Store("save account", err)
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email)
	return acct, nil
}

// ExecuteSeedAdmin makes sure email exists and holds a super_admin grant.
// An existing account keeps its password.
// PRE: Database is migrated
// POST: The account exists with a super_admin grant
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		if !isNoRows(err) {
			return apperr.Store("get account", err)
		}
		acct, err = ExecuteCreateAccount(ctx, CreateAccountInput{
			Email:    email,
			FullName: "Administrator",
			Password: password,
		}, deps)
		if err != nil {
			return err
		}
	}

	g := access.Grant{
		ID:        idFunc(deps.GenerateID)(),
		AccountID: acct.ID,
		Role:      access.RoleSuperAdmin,
		CreatedAt: nowOr(deps.Now),
	}
	added, err := deps.GrantStore.Insert(ctx, g)
	if err != nil {
		return apperr.Store("insert grant", err)
	}
	if added {
		slog.Info("auth_event", "event", "admin_seeded", "email", acct.Email)
	}
	return nil
}
