package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"apartmani/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL": "postgres://localhost/apartmani",
		"JWT_SECRET":   "s3cret",
	}), testhelpers.DiscardLogger())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 10*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, 16, cfg.OneShotTokenLength)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.Equal(t, 15*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReservationLockTTL)
	assert.Equal(t, 5*time.Minute, cfg.ResetSweepInterval)
	assert.Equal(t, "http://localhost:3000", cfg.AppBaseURL)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"APP_ENV":         EnvProduction,
		"DATABASE_URL":    "postgres://db/apartmani",
		"JWT_SECRET":      "s3cret",
		"PORT":            "9000",
		"JWT_EXPIRES_IN":  "90m",
		"REDIS_ADDR":      "redis:6379",
		"APP_BASE_URL":    "https://apartmani.example/",
		"TRUSTED_PROXIES": "10.0.0.0/8, 192.168.1.10/32",
	}), testhelpers.DiscardLogger())
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "https://apartmani.example", cfg.AppBaseURL)
	require.Len(t, cfg.TrustedProxies, 2)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedProxies[0].String())
	assert.Equal(t, "192.168.1.10/32", cfg.TrustedProxies[1].String())
}

func TestFromLookup_GeneratesSecretInDevelopment(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"DATABASE_URL": "postgres://localhost/a"}), testhelpers.DiscardLogger())
	require.NoError(t, err)

	assert.Len(t, cfg.JWTSecret, 32)
}

func TestFromLookup_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing database url":      {"JWT_SECRET": "x"},
		"missing secret production": {"DATABASE_URL": "postgres://a", "APP_ENV": EnvProduction},
		"bad port":                  {"DATABASE_URL": "postgres://a", "JWT_SECRET": "x", "PORT": "eighty"},
		"bad duration":              {"DATABASE_URL": "postgres://a", "JWT_SECRET": "x", "RESET_TOKEN_TTL": "ten minutes"},
		"zero token length":         {"DATABASE_URL": "postgres://a", "JWT_SECRET": "x", "ONE_SHOT_TOKEN_LENGTH": "0"},
		"non positive jwt lifetime": {"DATABASE_URL": "postgres://a", "JWT_SECRET": "x", "JWT_EXPIRES_IN": "-1h"},
		"bad trusted proxy":         {"DATABASE_URL": "postgres://a", "JWT_SECRET": "x", "TRUSTED_PROXIES": "10.0.0.1"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(env), testhelpers.DiscardLogger())
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://from-file/apartmani\nJWT_SECRET=file-secret\n"), 0o600))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load(testhelpers.DiscardLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-file/apartmani", cfg.DatabaseURL)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/apartmani")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(testhelpers.DiscardLogger(), filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/apartmani", cfg.DatabaseURL)
}
