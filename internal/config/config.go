package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is resolved once at startup and passed to every component that needs it.
type Config struct {
	Env                string
	Port               int
	DatabaseURL        string
	JWTSecret          string
	JWTExpiresIn       time.Duration
	ResetTokenTTL      time.Duration
	OneShotTokenLength int
	BcryptCost         int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTimeout  time.Duration
	MailFrom     string
	AppBaseURL   string

	RateLimitPerMinute int
	TrustedProxies     []*net.IPNet
	ReservationLockTTL time.Duration
	ResetSweepInterval time.Duration
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Env != EnvProduction
}

// Load reads an optional .env file and then the process environment.
func Load(logger *slog.Logger, files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv, logger)
}

// FromLookup builds a Config from lookup, typically os.LookupEnv.
func FromLookup(lookup func(string) (string, bool), logger *slog.Logger) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		Env:                r.str("APP_ENV", EnvDevelopment),
		Port:               r.int("PORT", 8080),
		DatabaseURL:        r.str("DATABASE_URL", ""),
		JWTSecret:          r.str("JWT_SECRET", ""),
		JWTExpiresIn:       r.duration("JWT_EXPIRES_IN", 24*time.Hour),
		ResetTokenTTL:      r.duration("RESET_TOKEN_TTL", 10*time.Minute),
		OneShotTokenLength: r.int("ONE_SHOT_TOKEN_LENGTH", 16),
		BcryptCost:         r.int("BCRYPT_COST", 10),
		RedisAddr:          r.str("REDIS_ADDR", ""),
		RedisPassword:      r.str("REDIS_PASSWORD", ""),
		RedisDB:            r.int("REDIS_DB", 0),
		SMTPHost:           r.str("SMTP_HOST", "localhost"),
		SMTPPort:           r.int("SMTP_PORT", 1025),
		SMTPUsername:       r.str("SMTP_USERNAME", ""),
		SMTPPassword:       r.str("SMTP_PASSWORD", ""),
		SMTPTimeout:        r.duration("SMTP_TIMEOUT", 15*time.Second),
		MailFrom:           r.str("MAIL_FROM", "Apartmani <no-reply@apartmani.local>"),
		AppBaseURL:         strings.TrimRight(r.str("APP_BASE_URL", "http://localhost:3000"), "/"),
		RateLimitPerMinute: r.int("RATE_LIMIT_PER_MINUTE", 20),
		TrustedProxies:     r.cidrs("TRUSTED_PROXIES"),
		ReservationLockTTL: r.duration("RESERVATION_LOCK_TTL", 10*time.Second),
		ResetSweepInterval: r.duration("RESET_SWEEP_INTERVAL", 5*time.Minute),
	}
	if r.err != nil {
		return nil, r.err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s", cfg.Env)
		}
		cfg.JWTSecret = random.String(32)
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}
	if cfg.OneShotTokenLength <= 0 {
		return nil, fmt.Errorf("ONE_SHOT_TOKEN_LENGTH must be positive, got %d", cfg.OneShotTokenLength)
	}
	if cfg.JWTExpiresIn <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", cfg.JWTExpiresIn)
	}

	return cfg, nil
}

type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return def
	}
	return d
}

// cidrs parses a comma separated list of CIDR ranges.
func (r *reader) cidrs(key string) []*net.IPNet {
	v := r.str(key, "")
	if v == "" {
		return nil
	}
	var ranges []*net.IPNet
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		_, ipRange, err := net.ParseCIDR(part)
		if err != nil {
			if r.err == nil {
				r.err = fmt.Errorf("invalid %s %q: %w", key, part, err)
			}
			return nil
		}
		ranges = append(ranges, ipRange)
	}
	return ranges
}
