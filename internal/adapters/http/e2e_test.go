//go:build e2e

package web_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "clubify/internal/adapters/http"
	"clubify/internal/adapters/http/authtoken"
	"clubify/internal/adapters/http/perf"
	"clubify/internal/adapters/storage"
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
	"clubify/internal/application/orchestrators"
)

const (
	e2eAdminEmail    = "admin@clubify.test"
	e2eAdminPassword = "e2e-admin-password"
)

// e2eApp holds the running server and Playwright handles.
type e2eApp struct {
	BaseURL string
	PW      *playwright.Playwright
	API     playwright.APIRequestContext
	Browser playwright.Browser
}

// newE2EApp starts the full server over a temp SQLite file and connects Playwright.
func newE2EApp(t *testing.T) *e2eApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "e2e.db")
	db, err := storage.Open(storage.DialectSQLite, storage.SQLiteDSN(dbPath))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, storage.DialectSQLite); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := &web.Stores{
		AccountStore:    accountStore.NewSQLStore(db),
		GrantStore:      grantStore.NewSQLStore(db),
		ClubStore:       clubStore.NewSQLStore(db),
		TeamStore:       teamStore.NewSQLStore(db),
		PlayerStore:     playerStore.NewSQLStore(db),
		RosterStore:     rosterStore.NewSQLStore(db),
		CoachStore:      coachStore.NewSQLStore(db),
		FeeStore:        feeStore.NewSQLStore(db),
		PaymentStore:    paymentStore.NewSQLStore(db),
		TrainingStore:   trainingStore.NewSQLStore(db),
		AttendanceStore: attendanceStore.NewSQLStore(db),
		MatchStore:      matchStore.NewSQLStore(db),
		AuditStore:      auditStore.NewSQLStore(db),
		OutboxStore:     outboxStore.NewSQLStore(db),
		Ping:            db.Ping,
	}
	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GrantStore:   stores.GrantStore,
		GenerateID:   uuid.NewString,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, e2eAdminEmail, e2eAdminPassword); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	tokens, err := authtoken.NewIssuer("e2e-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	srv := &http.Server{
		Addr: fmt.Sprintf("127.0.0.1:%d", port),
		Handler: web.NewMux(stores, perf.NewCollector(1000), web.Options{
			CSRFKey:        []byte("e2e-csrf-key-0123456789abcdefghi"),
			RateLimit:      1000,
			Tokens:         tokens,
			TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port)},
		}),
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	api, err := pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(baseURL),
	})
	if err != nil {
		t.Fatalf("failed to create API context: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		api.Dispose()
		pw.Stop()
		srv.Close()
		db.Close()
	})
	return &e2eApp{BaseURL: baseURL, PW: pw, API: api, Browser: browser}
}

// call sends a JSON request with a bearer token and decodes the response into out.
func (a *e2eApp) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	resp, err := a.API.Fetch(path, playwright.APIRequestContextFetchOptions{
		Method:  playwright.String(method),
		Headers: headers,
		Data:    body,
	})
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	if out != nil {
		if err := resp.JSON(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.Status()
}

func TestE2E_BillingFlow(t *testing.T) {
	app := newE2EApp(t)

	var login struct {
		Token string `json:"token"`
	}
	if code := app.call(t, "POST", "/api/login", "", map[string]string{
		"email": e2eAdminEmail, "password": e2eAdminPassword,
	}, &login); code != http.StatusOK || login.Token == "" {
		t.Fatalf("login: status %d", code)
	}
	token := login.Token

	var club struct {
		ID string `json:"id"`
	}
	if code := app.call(t, "POST", "/api/clubs", token, map[string]string{"name": "FK Pelister Youth", "city": "Bitola"}, &club); code != http.StatusCreated {
		t.Fatalf("create club: status %d", code)
	}
	var team struct {
		ID string `json:"id"`
	}
	if code := app.call(t, "POST", "/api/clubs/"+club.ID+"/teams", token, map[string]string{"name": "U10 Eagles", "ageGroup": "U10"}, &team); code != http.StatusCreated {
		t.Fatalf("create team: status %d", code)
	}
	for _, name := range []string{"Ana", "Bojan"} {
		if code := app.call(t, "POST", "/api/clubs/"+club.ID+"/players", token, map[string]string{
			"firstName": name, "lastName": "Petrovski", "teamId": team.ID,
		}, nil); code != http.StatusCreated {
			t.Fatalf("create player %s: status %d", name, code)
		}
	}
	if code := app.call(t, "POST", "/api/teams/"+team.ID+"/fees", token, map[string]any{
		"amount": 3000, "effectiveFrom": "2025-01-01",
	}, nil); code != http.StatusCreated {
		t.Fatalf("add fee: status %d", code)
	}

	var gen struct {
		Inserted int `json:"inserted"`
		Skipped  int `json:"skipped"`
	}
	if code := app.call(t, "POST", "/api/clubs/"+club.ID+"/payments/generate", token, map[string]int{"month": 3, "year": 2025}, &gen); code != http.StatusOK {
		t.Fatalf("generate: status %d", code)
	}
	if gen.Inserted != 2 {
		t.Errorf("inserted = %d, want 2", gen.Inserted)
	}
	app.call(t, "POST", "/api/clubs/"+club.ID+"/payments/generate", token, map[string]int{"month": 3, "year": 2025}, &gen)
	if gen.Inserted != 0 || gen.Skipped != 2 {
		t.Errorf("rerun = %+v, want 0 inserted 2 skipped", gen)
	}

	var list struct {
		Payments []struct {
			AmountDue int64  `json:"amountDue"`
			DueDate   string `json:"dueDate"`
		} `json:"payments"`
	}
	if code := app.call(t, "GET", "/api/clubs/"+club.ID+"/payments?month=3&year=2025", token, nil, &list); code != http.StatusOK {
		t.Fatalf("list payments: status %d", code)
	}
	for _, p := range list.Payments {
		if p.AmountDue != 3000 || p.DueDate != "2025-03-05" {
			t.Errorf("payment = %+v", p)
		}
	}
}

func TestE2E_BrowserHealth(t *testing.T) {
	app := newE2EApp(t)
	page, err := app.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	defer page.Close()

	if _, err := page.Goto(app.BaseURL + "/healthz"); err != nil {
		t.Fatalf("goto /healthz: %v", err)
	}
	content, err := page.Content()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !strings.Contains(content, `"status":"ok"`) {
		t.Errorf("health page = %q", content)
	}

	resp, err := page.Goto(app.BaseURL + "/api/me")
	if err != nil {
		t.Fatalf("goto /api/me: %v", err)
	}
	if resp.Status() != http.StatusUnauthorized {
		t.Errorf("anonymous /api/me = %d, want 401", resp.Status())
	}
}
