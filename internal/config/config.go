// Package config reads server settings from CLUBIFY_* environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config errors.
var (
	ErrMissingJWTSecret = errors.New("CLUBIFY_JWT_SECRET is required in production")
	ErrMissingCSRFKey   = errors.New("CLUBIFY_CSRF_KEY is required in production")
	ErrCSRFKeyLength    = errors.New("CLUBIFY_CSRF_KEY must be 32 bytes")
)

// devCSRFKey is used outside production when no key is configured.
const devCSRFKey = "clubify-development-csrf-key-32b"

// Config holds every runtime setting.
type Config struct {
	Env  string
	Addr string

	DBDriver string // sqlite or postgres
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration
	CSRFKey   []byte

	ResendKey string
	EmailFrom string
	ReplyTo   string

	AdminEmail    string
	AdminPassword string

	CORSOrigins []string
	RateLimit   int

	BillingCron    string // empty disables the job
	ReminderCron   string // empty disables the job
	OutboxInterval time.Duration

	SlowQueryMs   int
	SlowRequestMs int
	LogLevel      slog.Level
}

// Production reports whether the server runs in production.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Load reads .env (a missing file is fine) and then the environment.
// PRE: none
// POST: returns a validated Config or the first problem found
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which has the signature of os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}
	cfg := &Config{
		Env:            normalizeEnv(r.str("CLUBIFY_ENV", EnvDevelopment)),
		Addr:           r.str("CLUBIFY_ADDR", ":8080"),
		DBDriver:       r.str("CLUBIFY_DB_DRIVER", "sqlite"),
		DBDSN:          r.str("CLUBIFY_DB_DSN", "clubify.db"),
		JWTSecret:      r.str("CLUBIFY_JWT_SECRET", ""),
		JWTTTL:         r.duration("CLUBIFY_JWT_TTL", 24*time.Hour),
		ResendKey:      r.str("CLUBIFY_RESEND_KEY", ""),
		EmailFrom:      r.str("CLUBIFY_EMAIL_FROM", "Clubify <noreply@clubify.mk>"),
		ReplyTo:        r.str("CLUBIFY_REPLY_TO", ""),
		AdminEmail:     r.str("CLUBIFY_ADMIN_EMAIL", ""),
		AdminPassword:  r.str("CLUBIFY_ADMIN_PASSWORD", ""),
		CORSOrigins:    r.list("CLUBIFY_CORS_ORIGINS"),
		RateLimit:      r.integer("CLUBIFY_RATE_LIMIT", 10),
		BillingCron:    r.str("CLUBIFY_BILLING_CRON", ""),
		ReminderCron:   r.str("CLUBIFY_REMINDER_CRON", ""),
		OutboxInterval: r.duration("CLUBIFY_OUTBOX_INTERVAL", time.Minute),
		SlowQueryMs:    r.integer("CLUBIFY_SLOW_QUERY_MS", 100),
		SlowRequestMs:  r.integer("CLUBIFY_SLOW_REQUEST_MS", 200),
		LogLevel:       r.level("CLUBIFY_LOG_LEVEL", slog.LevelInfo),
	}
	if r.err != nil {
		return nil, r.err
	}

	csrfKey := r.str("CLUBIFY_CSRF_KEY", "")
	switch {
	case csrfKey != "":
		cfg.CSRFKey = []byte(csrfKey)
	case cfg.Production():
		return nil, ErrMissingCSRFKey
	default:
		cfg.CSRFKey = []byte(devCSRFKey)
	}
	if len(cfg.CSRFKey) != 32 {
		return nil, ErrCSRFKeyLength
	}
	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTSecret = "clubify-development-jwt-secret"
	}
	if cfg.OutboxInterval <= 0 {
		return nil, fmt.Errorf("CLUBIFY_OUTBOX_INTERVAL must be positive")
	}
	return cfg, nil
}

// reader collects the first parse failure so Load reports one error.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) str(key, fallback string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *reader) integer(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
	if err != nil {
		return fallback
	}
	return n
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%s: %w", key, err)
		}
		return fallback
	}
	return d
}

func (r *reader) list(key string) []string {
	raw := r.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *reader) level(key string, fallback slog.Level) slog.Level {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%s: %w", key, err)
		}
		return fallback
	}
	return lvl
}

func normalizeEnv(value string) string {
	switch strings.ToLower(value) {
	case "prod", "production":
		return EnvProduction
	case "test", "testing":
		return EnvTest
	default:
		return EnvDevelopment
	}
}
