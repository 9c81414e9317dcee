package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 10000, cfg.MaxScore)
	assert.Equal(t, 5*time.Second, cfg.WalletTimeout)
	assert.Zero(t, cfg.SessionAbandonAfter)
	assert.Empty(t, cfg.WalletURL)
	assert.Empty(t, cfg.AdminUserIDs)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SOCIAL_API_URL", "http://social:3001/api")
	t.Setenv("SERVICE_SECRET", "s3cret")
	t.Setenv("MAX_SCORE", "5000")
	t.Setenv("SESSION_ABANDON_AFTER", "2h")
	t.Setenv("LEADERBOARD_TZ", "UTC")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_USER_IDS", " admin-1, ,admin-2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, "http://social:3001/api", cfg.WalletURL)
	assert.Equal(t, "s3cret", cfg.ServiceSecret)
	assert.Equal(t, 5000, cfg.MaxScore)
	assert.Equal(t, 2*time.Hour, cfg.SessionAbandonAfter)
	assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.AdminUserIDs)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MAX_SCORE", "lots")

	_, err := Load()
	assert.ErrorContains(t, err, "MAX_SCORE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing identity", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"unknown storage", func(c *Config) { c.StorageType = "mongo" }, "STORAGE_TYPE"},
		{"postgres without url", func(c *Config) { c.StorageType = StoragePostgres }, "DATABASE_URL"},
		{"zero max score", func(c *Config) { c.MaxScore = 0 }, "MAX_SCORE"},
		{"bad zone", func(c *Config) { c.LeaderboardTZ = "Mars/Olympus" }, "LEADERBOARD_TZ"},
		{"bad sweep", func(c *Config) { c.SessionAbandonAfter = time.Hour; c.SessionSweepInterval = 0 }, "SESSION_SWEEP_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.JWTSecret = "secret"
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ARCADE_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("ARCADE_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("ARCADE_DOTENV_PROBE"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
