package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	emailPkg "clubify/internal/adapters/email"
	web "clubify/internal/adapters/http"
	"clubify/internal/adapters/http/authtoken"
	"clubify/internal/adapters/http/perf"
	"clubify/internal/adapters/scheduler"
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
	"clubify/internal/config"
	"clubify/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	dialect, err := storage.ParseDialect(cfg.DBDriver)
	if err != nil {
		fatal("invalid database driver", err)
	}
	dsn := cfg.DBDSN
	if dialect == storage.DialectSQLite {
		dsn = storage.SQLiteDSN(dsn)
	}
	db, err := storage.Open(dialect, dsn)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	if err := storage.MigrateDB(db, dialect); err != nil {
		fatal("failed to migrate database", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, dialect, collector, cfg.SlowQueryMs)

	stores := &web.Stores{
		AccountStore:    accountStore.NewSQLStore(timedDB),
		GrantStore:      grantStore.NewSQLStore(timedDB),
		ClubStore:       clubStore.NewSQLStore(timedDB),
		TeamStore:       teamStore.NewSQLStore(timedDB),
		PlayerStore:     playerStore.NewSQLStore(timedDB),
		RosterStore:     rosterStore.NewSQLStore(timedDB),
		CoachStore:      coachStore.NewSQLStore(timedDB),
		FeeStore:        feeStore.NewSQLStore(timedDB),
		PaymentStore:    paymentStore.NewSQLStore(timedDB),
		TrainingStore:   trainingStore.NewSQLStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLStore(timedDB),
		MatchStore:      matchStore.NewSQLStore(timedDB),
		AuditStore:      auditStore.NewSQLStore(timedDB),
		OutboxStore:     outboxStore.NewSQLStore(timedDB),
		Ping:            db.Ping,
	}

	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GrantStore:   stores.GrantStore,
		GenerateID:   uuid.NewString,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		fatal("failed to seed admin", err)
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email sender configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.Production() {
			slog.Warn("CLUBIFY_RESEND_KEY is not set; email delivery is disabled in production")
		} else {
			slog.Info("email sender configured", "provider", "noop")
		}
	}

	tokens, err := authtoken.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		fatal("failed to create token issuer", err)
	}

	jobs := scheduler.New(collector)
	for _, job := range scheduledJobs(cfg, stores, sender) {
		if _, err := jobs.Add(job); err != nil {
			fatal("failed to schedule job", err)
		}
	}
	jobs.Start()

	handler := web.NewMux(stores, collector, web.Options{
		CSRFKey:       cfg.CSRFKey,
		SecureCookies: cfg.Production(),
		CORSOrigins:   cfg.CORSOrigins,
		RateLimit:     cfg.RateLimit,
		SlowRequestMs: cfg.SlowRequestMs,
		Tokens:        tokens,
		EmailSender:   sender,
		EmailFrom:     cfg.EmailFrom,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "version", version, "addr", cfg.Addr,
			"env", cfg.Env, "db", dialect, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	jobs.Stop(shutdownCtx)
}

// scheduledJobs builds the billing, reminder and outbox jobs over the stores.
func scheduledJobs(cfg *config.Config, stores *web.Stores, sender emailPkg.Sender) []scheduler.Job {
	billingDeps := orchestrators.GeneratePaymentsDeps{
		Clubs:      stores.ClubStore,
		Teams:      stores.TeamStore,
		Rosters:    stores.RosterStore,
		Fees:       stores.FeeStore,
		Payments:   stores.PaymentStore,
		Audit:      stores.AuditStore,
		GenerateID: uuid.NewString,
	}
	reminderDeps := orchestrators.SendPaymentRemindersDeps{
		Clubs:      stores.ClubStore,
		Teams:      stores.TeamStore,
		Payments:   stores.PaymentStore,
		Players:    stores.PlayerStore,
		Accounts:   stores.AccountStore,
		Sender:     sender,
		Outbox:     stores.OutboxStore,
		Audit:      stores.AuditStore,
		From:       cfg.EmailFrom,
		GenerateID: uuid.NewString,
	}
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
	})

	return []scheduler.Job{
		{
			Name: "billing",
			Spec: cfg.BillingCron,
			Run: func(ctx context.Context) error {
				_, err := orchestrators.ExecuteScheduledBilling(ctx, stores.ClubStore, billingDeps)
				return err
			},
		},
		{
			Name: "reminders",
			Spec: cfg.ReminderCron,
			Run: func(ctx context.Context) error {
				_, err := orchestrators.ExecuteScheduledReminders(ctx, stores.ClubStore, reminderDeps)
				return err
			},
		},
		{
			Name: "outbox",
			Spec: "@every " + cfg.OutboxInterval.String(),
			Run: func(ctx context.Context) error {
				return orchestrators.ExecuteOutboxRetry(ctx, orchestrators.OutboxRetryDeps{Processor: processor})
			},
		},
	}
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.Production() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
