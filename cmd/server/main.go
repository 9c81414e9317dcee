package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/arcade-go/internal/api"
	"github.com/mcoot/arcade-go/internal/api/middleware"
	"github.com/mcoot/arcade-go/internal/config"
	"github.com/mcoot/arcade-go/internal/factory"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
	"github.com/mcoot/arcade-go/internal/services/identity"
	"github.com/mcoot/arcade-go/internal/services/scoring"
	"github.com/mcoot/arcade-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/arcade-go/internal/storage/redis"
	"github.com/mcoot/arcade-go/internal/wallet"
)

// hubCleanupInterval is how often idle live-feed hubs are stopped
const hubCleanupInterval = time.Minute

func main() {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := cfg.SlogLevel()
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := seedCatalog(ctx, app, cfg.CatalogPath); err != nil {
		logger.Error("failed to seed game catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Error("failed to set up token verification", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Verifier:    verifier,
		Catalog:     app.Catalog,
		Sessions:    app.Sessions,
		Scoring:     app.Scoring,
		Leaderboard: app.Leaderboard,
		Ranking:     app.Ranking,
		Stats:       app.Stats,
		HubManager:  app.HubManager,

		AdminUserIDs: adminUserIDs(cfg),
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.HubManager.Close)

	if cfg.SessionAbandonAfter > 0 {
		go app.Sessions.RunReaper(ctx, cfg.SessionSweepInterval, cfg.SessionAbandonAfter)
	}
	go cleanupHubs(ctx, app)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	stop()
	if err := app.Close(); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// factoryConfig maps the environment config onto the application factory
func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	loc, _ := cfg.Location()

	fc := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Scoring:     scoring.Config{MaxScore: cfg.MaxScore},
		Location:    loc,
	}

	switch cfg.StorageType {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	case config.StoragePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.DatabaseURL
		fc.PostgresConfig = &pgCfg
	}

	if cfg.WalletURL != "" {
		fc.Wallet = &wallet.HTTPConfig{
			BaseURL:       cfg.WalletURL,
			ServiceSecret: cfg.ServiceSecret,
			Timeout:       cfg.WalletTimeout,
		}
	}

	return fc
}

// seedCatalog loads the catalog file, or the built-in games when none is set
func seedCatalog(ctx context.Context, app *factory.App, path string) error {
	games := catalog.DefaultGames()
	if path != "" {
		loaded, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		games = loaded
	}
	return app.Catalog.Seed(ctx, games)
}

func adminUserIDs(cfg *config.Config) []model.UserID {
	ids := make([]model.UserID, 0, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		ids = append(ids, model.UserID(id))
	}
	return ids
}

// newVerifier prefers a JWKS endpoint over a shared secret
func newVerifier(cfg *config.Config) (middleware.TokenVerifier, error) {
	if cfg.JWKSURL != "" {
		v, err := identity.NewJWKSVerifier(cfg.JWKSURL)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return identity.NewHMACVerifier(cfg.JWTSecret), nil
}

func cleanupHubs(ctx context.Context, app *factory.App) {
	ticker := time.NewTicker(hubCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.HubManager.CleanupEmptyHubs()
		}
	}
}
