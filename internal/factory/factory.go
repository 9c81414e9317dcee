package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/arcade-go/internal/api/sse"
	"github.com/mcoot/arcade-go/internal/dependencies/clock"
	"github.com/mcoot/arcade-go/internal/dependencies/idgen"
	"github.com/mcoot/arcade-go/internal/services/catalog"
	"github.com/mcoot/arcade-go/internal/services/leaderboard"
	"github.com/mcoot/arcade-go/internal/services/ranking"
	"github.com/mcoot/arcade-go/internal/services/scoring"
	"github.com/mcoot/arcade-go/internal/services/session"
	"github.com/mcoot/arcade-go/internal/services/stats"
	"github.com/mcoot/arcade-go/internal/storage"
	"github.com/mcoot/arcade-go/internal/storage/memory"
	"github.com/mcoot/arcade-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/arcade-go/internal/storage/redis"
	"github.com/mcoot/arcade-go/internal/wallet"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	Catalog     *catalog.Service
	Sessions    *session.Tracker
	Ranking     *ranking.Service
	Scoring     *scoring.Service
	Leaderboard *leaderboard.Service
	Stats       *stats.Service
	HubManager  *sse.HubManager

	// Wallet is nil when rewards are dispatched by something other than the
	// background notifier, as in tests
	Wallet *wallet.Notifier
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres connection settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// Scoring holds submission limits; zero value means scoring.DefaultConfig()
	Scoring scoring.Config
	// Wallet configures coin crediting. Nil or an empty BaseURL disables it.
	Wallet *wallet.HTTPConfig
	// Location is the zone whose midnight starts the "today" leaderboard.
	// If nil, time.Local is used.
	Location *time.Location
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var crediter wallet.Crediter = wallet.NopCrediter{}
	walletTimeout := wallet.DefaultHTTPConfig().Timeout
	if cfg.Wallet != nil && cfg.Wallet.BaseURL != "" {
		crediter = wallet.NewHTTPCrediter(*cfg.Wallet)
		if cfg.Wallet.Timeout > 0 {
			walletTimeout = cfg.Wallet.Timeout
		}
	} else {
		logger.Warn("no wallet URL configured, coins will not be credited")
	}
	notifier := wallet.NewNotifier(crediter, walletTimeout, logger.With(slog.String("component", "wallet")))

	scoringCfg := cfg.Scoring
	if scoringCfg.MaxScore == 0 {
		scoringCfg = scoring.DefaultConfig()
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	app := newWithDependencies(store, clock.New(), idgen.New(), notifier, scoringCfg, loc, logger)
	app.Wallet = notifier
	return app, nil
}

// newStorage creates the configured storage backend
func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		return pgStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	ids idgen.Generator,
	rewards scoring.RewardDispatcher,
	scoringCfg scoring.Config,
	loc *time.Location,
	logger *slog.Logger,
) *App {
	hubManager := sse.NewHubManager(logger)
	catalogService := catalog.New(store, clk, logger.With(slog.String("component", "catalog")))
	tracker := session.NewTracker(store, catalogService, clk, ids, logger.With(slog.String("component", "session")))
	rankingService := ranking.New(store)
	scoringService := scoring.New(
		store, catalogService, tracker, rankingService,
		rewards, hubManager, clk, ids, scoringCfg,
		logger.With(slog.String("component", "scoring")),
	)

	return &App{
		Storage:     store,
		Clock:       clk,
		IDs:         ids,
		Catalog:     catalogService,
		Sessions:    tracker,
		Ranking:     rankingService,
		Scoring:     scoringService,
		Leaderboard: leaderboard.New(store, clk, loc, logger.With(slog.String("component", "leaderboard"))),
		Stats:       stats.New(store),
		HubManager:  hubManager,
	}
}

// Close waits for in-flight wallet credits, disconnects live feeds and
// releases the storage backend
func (a *App) Close() error {
	if a.Wallet != nil {
		a.Wallet.Wait()
	}
	a.HubManager.Close()
	return a.Storage.Close()
}
