package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds everything the server reads from its environment
type Config struct {
	Host     string
	Port     int
	LogLevel string

	StorageType string
	RedisURL    string
	DatabaseURL string

	// Identity verification; one of these must be set
	JWTSecret string
	JWKSURL   string

	// Wallet credit endpoint. Empty disables coin crediting.
	WalletURL     string
	ServiceSecret string
	WalletTimeout time.Duration

	MaxScore    int
	CatalogPath string

	// SessionAbandonAfter marks sessions abandoned once they have been open
	// this long. Zero leaves sessions active indefinitely.
	SessionAbandonAfter  time.Duration
	SessionSweepInterval time.Duration

	// LeaderboardTZ is the IANA zone whose midnight starts the "today" window
	LeaderboardTZ string

	// AdminUserIDs may activate and deactivate catalog games
	AdminUserIDs []string
}

// Defaults returns a Config with every default value set
func Defaults() *Config {
	return &Config{
		Port:                 8080,
		LogLevel:             "info",
		StorageType:          StorageMemory,
		RedisURL:             "redis://localhost:6379",
		WalletTimeout:        5 * time.Second,
		MaxScore:             10000,
		SessionSweepInterval: 5 * time.Minute,
		LeaderboardTZ:        "Local",
	}
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load applies environment overrides on top of Defaults and validates the result
func Load() (*Config, error) {
	cfg := Defaults()
	var errs []error

	overrideString(&cfg.Host, "HOST")
	errs = append(errs, overrideInt(&cfg.Port, "PORT"))
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.StorageType, "STORAGE_TYPE")
	overrideString(&cfg.RedisURL, "REDIS_URL")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.JWKSURL, "JWKS_URL")
	overrideString(&cfg.WalletURL, "SOCIAL_API_URL")
	overrideString(&cfg.ServiceSecret, "SERVICE_SECRET")
	errs = append(errs, overrideDuration(&cfg.WalletTimeout, "WALLET_TIMEOUT"))
	errs = append(errs, overrideInt(&cfg.MaxScore, "MAX_SCORE"))
	overrideString(&cfg.CatalogPath, "CATALOG_PATH")
	errs = append(errs, overrideDuration(&cfg.SessionAbandonAfter, "SESSION_ABANDON_AFTER"))
	errs = append(errs, overrideDuration(&cfg.SessionSweepInterval, "SESSION_SWEEP_INTERVAL"))
	overrideString(&cfg.LeaderboardTZ, "LEADERBOARD_TZ")
	overrideList(&cfg.AdminUserIDs, "ADMIN_USER_IDS")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the values are usable together
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		errs = append(errs, errors.New("one of JWT_SECRET or JWKS_URL is required"))
	}
	if c.MaxScore <= 0 {
		errs = append(errs, fmt.Errorf("MAX_SCORE must be positive, got %d", c.MaxScore))
	}
	if c.WalletTimeout <= 0 {
		errs = append(errs, errors.New("WALLET_TIMEOUT must be positive"))
	}
	if c.SessionAbandonAfter < 0 {
		errs = append(errs, errors.New("SESSION_ABANDON_AFTER must not be negative"))
	}
	if c.SessionAbandonAfter > 0 && c.SessionSweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive when sessions are reaped"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("LEADERBOARD_TZ: %w", err))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves LeaderboardTZ
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.LeaderboardTZ)
}

// SlogLevel parses LogLevel (debug, info, warn, error)
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel)))
	return level, err
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// overrideList splits a comma-separated value, dropping blank entries
func overrideList(field *[]string, envKey string) {
	val := os.Getenv(envKey)
	if val == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*field = items
}

func overrideInt(field *int, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", envKey, val)
	}
	*field = n
	return nil
}

func overrideDuration(field *time.Duration, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %q", envKey, val)
	}
	*field = d
	return nil
}
