package web

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"clubify/internal/adapters/http/middleware"
	"clubify/internal/domain/access"
	"clubify/internal/domain/match"
	"clubify/internal/domain/payment"
	"clubify/internal/domain/player"
	"clubify/internal/domain/team"
	"clubify/internal/domain/training"
)

// caller is the authenticated account with its current grants.
type caller struct {
	middleware.Session
	Grants []access.Grant
}

// loadCaller resolves the session and reads the account's grants from the
// store. Grants are never cached, so a revocation applies to the next request.
func loadCaller(w http.ResponseWriter, r *http.Request) (caller, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return caller{}, false
	}
	grants, err := stores.GrantStore.ListByAccount(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, r, err)
		return caller{}, false
	}
	return caller{Session: sess, Grants: grants}, true
}

// requireRole loads the caller and checks a hierarchy requirement for clubID.
// An empty clubID accepts the role in any club.
func requireRole(w http.ResponseWriter, r *http.Request, role access.Role, clubID string) (caller, bool) {
	c, ok := loadCaller(w, r)
	if !ok {
		return caller{}, false
	}
	return c, checkRole(w, r, c, role, clubID)
}

func checkRole(w http.ResponseWriter, r *http.Request, c caller, role access.Role, clubID string) bool {
	if d := access.Evaluate(c.Grants, access.Requirement{MinimumRole: role, ClubID: clubID}); !d.Allowed() {
		denied(w, r, c, string(role), clubID)
		return false
	}
	return true
}

// loadMember loads the caller ahead of any store lookup by path id. An
// account without a single grant is refused before the lookup, so it cannot
// tell existing ids from missing ones.
func loadMember(w http.ResponseWriter, r *http.Request, role access.Role) (caller, bool) {
	c, ok := loadCaller(w, r)
	if !ok {
		return caller{}, false
	}
	if len(c.Grants) == 0 {
		denied(w, r, c, string(role), "")
		return caller{}, false
	}
	return c, true
}

// requireSuperAdmin loads the caller and demands a super_admin grant.
func requireSuperAdmin(w http.ResponseWriter, r *http.Request) (caller, bool) {
	c, ok := loadCaller(w, r)
	if !ok {
		return caller{}, false
	}
	if !access.IsSuperAdmin(c.Grants) {
		denied(w, r, c, string(access.RoleSuperAdmin), "")
		return caller{}, false
	}
	return c, true
}

func denied(w http.ResponseWriter, r *http.Request, c caller, role, clubID string) {
	slog.Info("access_event", "event", "denied",
		"account_id", c.AccountID, "required", role, "club_id", clubID,
		"method", r.Method, "path", r.URL.Path)
	forbidden(w)
}

// isNoRows reports a store miss.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// lookup writes 404 for a store miss and 500 for anything else.
func lookup(w http.ResponseWriter, r *http.Request, err error, what string) bool {
	if err == nil {
		return true
	}
	if isNoRows(err) {
		notFound(w, what)
		return false
	}
	internalError(w, r, err)
	return false
}

// --- Club resolution for child resources ---

func teamFromPath(ctx context.Context, r *http.Request) (team.Team, error) {
	return stores.TeamStore.GetByID(ctx, r.PathValue("teamID"))
}

// requireTeamRole loads the team named in the path and checks the caller's
// role in the team's club.
func requireTeamRole(w http.ResponseWriter, r *http.Request, role access.Role) (team.Team, caller, bool) {
	c, ok := loadMember(w, r, role)
	if !ok {
		return team.Team{}, caller{}, false
	}
	t, err := teamFromPath(r.Context(), r)
	if !lookup(w, r, err, "team") {
		return team.Team{}, caller{}, false
	}
	return t, c, checkRole(w, r, c, role, t.ClubID)
}

func requirePlayerRole(w http.ResponseWriter, r *http.Request, role access.Role) (player.Player, caller, bool) {
	c, ok := loadMember(w, r, role)
	if !ok {
		return player.Player{}, caller{}, false
	}
	p, err := stores.PlayerStore.GetByID(r.Context(), r.PathValue("playerID"))
	if !lookup(w, r, err, "player") {
		return player.Player{}, caller{}, false
	}
	return p, c, checkRole(w, r, c, role, p.ClubID)
}

func requireSessionRole(w http.ResponseWriter, r *http.Request, role access.Role) (training.Session, caller, bool) {
	c, ok := loadMember(w, r, role)
	if !ok {
		return training.Session{}, caller{}, false
	}
	s, err := stores.TrainingStore.GetSession(r.Context(), r.PathValue("sessionID"))
	if !lookup(w, r, err, "session") {
		return training.Session{}, caller{}, false
	}
	t, err := stores.TeamStore.GetByID(r.Context(), s.TeamID)
	if !lookup(w, r, err, "team") {
		return training.Session{}, caller{}, false
	}
	return s, c, checkRole(w, r, c, role, t.ClubID)
}

func requireMatchRole(w http.ResponseWriter, r *http.Request, role access.Role) (match.Match, caller, bool) {
	c, ok := loadMember(w, r, role)
	if !ok {
		return match.Match{}, caller{}, false
	}
	m, err := stores.MatchStore.GetByID(r.Context(), r.PathValue("matchID"))
	if !lookup(w, r, err, "match") {
		return match.Match{}, caller{}, false
	}
	t, err := stores.TeamStore.GetByID(r.Context(), m.TeamID)
	if !lookup(w, r, err, "team") {
		return match.Match{}, caller{}, false
	}
	return m, c, checkRole(w, r, c, role, t.ClubID)
}

func requirePaymentRole(w http.ResponseWriter, r *http.Request, role access.Role) (payment.Record, caller, bool) {
	c, ok := loadMember(w, r, role)
	if !ok {
		return payment.Record{}, caller{}, false
	}
	rec, err := stores.PaymentStore.GetByID(r.Context(), r.PathValue("paymentID"))
	if !lookup(w, r, err, "payment") {
		return payment.Record{}, caller{}, false
	}
	t, err := stores.TeamStore.GetByID(r.Context(), rec.TeamID)
	if !lookup(w, r, err, "team") {
		return payment.Record{}, caller{}, false
	}
	return rec, c, checkRole(w, r, c, role, t.ClubID)
}
