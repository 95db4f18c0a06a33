package web

import (
	"errors"
	"net/http"
	"time"

	"clubify/internal/adapters/http/middleware"
	"clubify/internal/application/orchestrators"
	"clubify/internal/domain/access"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Account   accountDTO `json:"account"`
	Grants    []grantDTO `json:"grants"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// handleLogin verifies credentials, starts a cookie session and, when bearer
// tokens are enabled, returns a signed access token (POST /api/login).
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		GrantStore:   stores.GrantStore,
		Now:          clock,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
			writeErrorMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, r, err)
		return
	}

	sessionToken, err := sessions.Create(res.AccountID, res.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, sessionToken, secureCookies)

	resp := loginResponse{
		Account: accountDTO{ID: res.AccountID, Email: res.Email, FullName: res.FullName},
		Grants:  toGrantDTOs(res.Grants),
	}
	if tokens != nil {
		bearer, expires, err := tokens.Issue(res.AccountID, res.Email)
		if err != nil {
			internalError(w, r, err)
			return
		}
		resp.Token = bearer
		resp.ExpiresAt = &expires
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogout ends the cookie session (POST /api/logout). Bearer tokens
// simply expire.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName()); err == nil && cookie.Value != "" {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w, secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type meResponse struct {
	Account  accountDTO  `json:"account"`
	Grants   []grantDTO  `json:"grants"`
	Children []playerDTO `json:"children"`
}

// handleMe returns the caller's account, grants and linked children (GET /api/me).
func handleMe(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCaller(w, r)
	if !ok {
		return
	}
	acct, err := stores.AccountStore.GetByID(r.Context(), c.AccountID)
	if !lookup(w, r, err, "account") {
		return
	}
	children, err := stores.PlayerStore.ListChildren(r.Context(), c.AccountID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	resp := meResponse{
		Account:  toAccountDTO(acct),
		Grants:   toGrantDTOs(c.Grants),
		Children: make([]playerDTO, 0, len(children)),
	}
	for _, p := range children {
		resp.Children = append(resp.Children, toPlayerDTO(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// handleCreateAccount registers an account with no grants (POST /api/accounts).
// Any club admin may create accounts; roles are granted per club afterwards.
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, access.RoleClubAdmin, ""); !ok {
		return
	}
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GrantStore:   stores.GrantStore,
		Now:          clock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(acct))
}
