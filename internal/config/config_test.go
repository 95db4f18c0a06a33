package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(mapLookup(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Env != EnvDevelopment || cfg.Production() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Addr != ":8080" || cfg.DBDriver != "sqlite" || cfg.DBDSN != "clubify.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTTTL != 24*time.Hour || cfg.OutboxInterval != time.Minute {
		t.Errorf("durations = %v / %v", cfg.JWTTTL, cfg.OutboxInterval)
	}
	if len(cfg.CSRFKey) != 32 || cfg.JWTSecret == "" {
		t.Error("development keys not filled in")
	}
	if cfg.BillingCron != "" || cfg.ReminderCron != "" {
		t.Error("scheduled billing should be disabled by default")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"CLUBIFY_ENV":             "prod",
		"CLUBIFY_DB_DRIVER":       "postgres",
		"CLUBIFY_DB_DSN":          "postgres://clubify@localhost/clubify",
		"CLUBIFY_JWT_SECRET":      "s3cret",
		"CLUBIFY_JWT_TTL":         "2h",
		"CLUBIFY_CSRF_KEY":        "0123456789abcdef0123456789abcdef",
		"CLUBIFY_CORS_ORIGINS":    "https://app.clubify.mk, https://admin.clubify.mk,",
		"CLUBIFY_RATE_LIMIT":      "50",
		"CLUBIFY_BILLING_CRON":    "0 6 1 * *",
		"CLUBIFY_OUTBOX_INTERVAL": "30s",
		"CLUBIFY_LOG_LEVEL":       "debug",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !cfg.Production() || cfg.DBDriver != "postgres" || cfg.JWTTTL != 2*time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.clubify.mk" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.RateLimit != 50 || cfg.BillingCron != "0 6 1 * *" || cfg.OutboxInterval != 30*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"production without csrf key", map[string]string{
			"CLUBIFY_ENV": "production", "CLUBIFY_JWT_SECRET": "x",
		}, ErrMissingCSRFKey},
		{"production without jwt secret", map[string]string{
			"CLUBIFY_ENV": "production", "CLUBIFY_CSRF_KEY": "0123456789abcdef0123456789abcdef",
		}, ErrMissingJWTSecret},
		{"short csrf key", map[string]string{"CLUBIFY_CSRF_KEY": "short"}, ErrCSRFKeyLength},
		{"bad duration", map[string]string{"CLUBIFY_JWT_TTL": "forever"}, nil},
		{"bad integer", map[string]string{"CLUBIFY_RATE_LIMIT": "fast"}, nil},
		{"bad log level", map[string]string{"CLUBIFY_LOG_LEVEL": "loud"}, nil},
		{"zero outbox interval", map[string]string{"CLUBIFY_OUTBOX_INTERVAL": "0s"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(mapLookup(tt.env))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
