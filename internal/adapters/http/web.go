// Package web exposes the club manager as a JSON HTTP API.
package web

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"clubify/internal/adapters/email"
	"clubify/internal/adapters/http/authtoken"
	"clubify/internal/adapters/http/middleware"
	"clubify/internal/adapters/http/perf"
	accountStore "clubify/internal/adapters/storage/account"
	attendanceStore "clubify/internal/adapters/storage/attendance"
	auditStore "clubify/internal/adapters/storage/audit"
	clubStore "clubify/internal/adapters/storage/club"
	coachStore "clubify/internal/adapters/storage/coach"
	feeStore "clubify/internal/adapters/storage/fee"
	grantStore "clubify/internal/adapters/storage/grant"
	matchStore "clubify/internal/adapters/storage/match"
	outboxStore "clubify/internal/adapters/storage/outbox"
	paymentStore "clubify/internal/adapters/storage/payment"
	playerStore "clubify/internal/adapters/storage/player"
	rosterStore "clubify/internal/adapters/storage/roster"
	teamStore "clubify/internal/adapters/storage/team"
	trainingStore "clubify/internal/adapters/storage/training"
	"clubify/internal/domain/payment"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	GrantStore      grantStore.Store
	ClubStore       clubStore.Store
	TeamStore       teamStore.Store
	PlayerStore     playerStore.Store
	RosterStore     rosterStore.Store
	CoachStore      coachStore.Store
	FeeStore        feeStore.Store
	PaymentStore    paymentStore.Store
	TrainingStore   trainingStore.Store
	AttendanceStore attendanceStore.Store
	MatchStore      matchStore.Store
	AuditStore      auditStore.Store
	OutboxStore     outboxStore.Store

	// Ping checks the database for /healthz. Nil reports healthy.
	Ping func() error
}

// Options configures NewMux. Zero values fall back to development defaults.
type Options struct {
	CSRFKey        []byte // 32 bytes; required
	SecureCookies  bool
	CORSOrigins    []string
	RateLimit      int // requests per second per IP; 0 uses RateLimitPerSecond
	SlowRequestMs  int
	Tokens         *authtoken.Issuer
	EmailSender    email.Sender
	EmailFrom      string
	Discounts      payment.DiscountPolicy
	Now            func() time.Time
	TrustedOrigins []string
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global token issuer; nil disables bearer tokens.
var tokens *authtoken.Issuer

// RateLimitPerSecond is the default per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

var (
	emailSender   email.Sender
	emailFrom     string
	discounts     payment.DiscountPolicy
	secureCookies bool
	clock         = time.Now
)

// NewMux wires HTTP handlers for the API.
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	tokens = opts.Tokens
	emailSender = opts.EmailSender
	if emailSender == nil {
		emailSender = email.NewNoopSender()
	}
	emailFrom = opts.EmailFrom
	discounts = opts.Discounts
	secureCookies = opts.SecureCookies
	clock = time.Now
	if opts.Now != nil {
		clock = opts.Now
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := opts.RateLimit
	if rate <= 0 {
		rate = RateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Outermost first: RequestID -> Recoverer -> Timing -> CORS -> SecurityHeaders
	// -> RateLimit -> Auth -> CSRF -> Mux
	return middleware.Chain(mux,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(sessions, tokens),
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
		middleware.CORS(opts.CORSOrigins),
		middleware.Timing(collector, opts.SlowRequestMs),
		chimw.Recoverer,
		chimw.RequestID,
	)
}

func registerRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /healthz", handleHealthz)

	// Auth
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.Handle("POST /api/logout", authed(handleLogout))
	mux.Handle("GET /api/me", authed(handleMe))
	mux.Handle("POST /api/accounts", authed(handleCreateAccount))

	// Clubs and grants
	mux.Handle("GET /api/clubs", authed(handleListClubs))
	mux.Handle("POST /api/clubs", authed(handleCreateClub))
	mux.Handle("GET /api/clubs/{clubID}", authed(handleGetClub))
	mux.Handle("GET /api/clubs/{clubID}/grants", authed(handleListGrants))
	mux.Handle("POST /api/clubs/{clubID}/grants", authed(handleAssignGrant))
	mux.Handle("DELETE /api/clubs/{clubID}/grants/{grantID}", authed(handleRevokeGrant))

	// Teams, players, rosters, coaches
	mux.Handle("GET /api/clubs/{clubID}/teams", authed(handleListTeams))
	mux.Handle("POST /api/clubs/{clubID}/teams", authed(handleCreateTeam))
	mux.Handle("PUT /api/teams/{teamID}", authed(handleUpdateTeam))
	mux.Handle("GET /api/clubs/{clubID}/players", authed(handleListPlayers))
	mux.Handle("POST /api/clubs/{clubID}/players", authed(handleCreatePlayer))
	mux.Handle("POST /api/clubs/{clubID}/players/import", authed(handleImportPlayers))
	mux.Handle("GET /api/teams/{teamID}/players", authed(handleTeamRoster))
	mux.Handle("POST /api/teams/{teamID}/players", authed(handleAssignPlayer))
	mux.Handle("DELETE /api/teams/{teamID}/players/{playerID}", authed(handleRemovePlayer))
	mux.Handle("POST /api/players/{playerID}/parents", authed(handleLinkParent))
	mux.Handle("GET /api/teams/{teamID}/coaches", authed(handleListCoaches))
	mux.Handle("POST /api/teams/{teamID}/coaches", authed(handleAssignCoach))

	// Fees and payments
	mux.Handle("GET /api/teams/{teamID}/fees", authed(handleListFees))
	mux.Handle("POST /api/teams/{teamID}/fees", authed(handleAddFee))
	mux.Handle("POST /api/clubs/{clubID}/payments/generate", authed(handleGeneratePayments))
	mux.Handle("GET /api/clubs/{clubID}/payments", authed(handleListPayments))
	mux.Handle("GET /api/clubs/{clubID}/payments/overview", authed(handlePaymentOverview))
	mux.Handle("POST /api/clubs/{clubID}/payments/reminders", authed(handleSendReminders))
	mux.Handle("POST /api/payments/{paymentID}/record", authed(handleRecordPayment))
	mux.Handle("GET /api/players/{playerID}/payments", authed(handlePlayerPayments))

	// Training and attendance
	mux.Handle("GET /api/teams/{teamID}/sessions", authed(handleListSessions))
	mux.Handle("POST /api/teams/{teamID}/sessions", authed(handleCreateSession))
	mux.Handle("POST /api/teams/{teamID}/sessions/recurring", authed(handleCreateRecurringSessions))
	mux.Handle("DELETE /api/sessions/{sessionID}", authed(handleDeleteSession))
	mux.Handle("PUT /api/sessions/{sessionID}/attendance", authed(handleRecordAttendance))
	mux.Handle("GET /api/teams/{teamID}/attendance/stats", authed(handleAttendanceStats))

	// Matches
	mux.Handle("GET /api/teams/{teamID}/matches", authed(handleListMatches))
	mux.Handle("POST /api/teams/{teamID}/matches", authed(handleCreateMatch))
	mux.Handle("GET /api/teams/{teamID}/matches/stats", authed(handleMatchStats))
	mux.Handle("PUT /api/matches/{matchID}/result", authed(handleRecordMatchResult))

	// Administration
	mux.Handle("GET /api/clubs/{clubID}/audit", authed(handleClubAudit))
	mux.Handle("GET /api/admin/perf", authed(handleAdminPerf))
	mux.Handle("DELETE /api/admin/grants/{grantID}", authed(handleRevokeSuperAdminGrant))
	mux.Handle("GET /api/admin/outbox", authed(handleAdminOutbox))
	mux.Handle("POST /api/admin/outbox/{entryID}/{action}", authed(handleAdminOutboxAction))
}
