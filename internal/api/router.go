package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/arcade-go/internal/api/apierr"
	"github.com/mcoot/arcade-go/internal/api/handler"
	"github.com/mcoot/arcade-go/internal/api/middleware"
	"github.com/mcoot/arcade-go/internal/api/response"
	"github.com/mcoot/arcade-go/internal/api/sse"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
	"github.com/mcoot/arcade-go/internal/services/leaderboard"
	"github.com/mcoot/arcade-go/internal/services/ranking"
	"github.com/mcoot/arcade-go/internal/services/scoring"
	"github.com/mcoot/arcade-go/internal/services/session"
	"github.com/mcoot/arcade-go/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Verifier    middleware.TokenVerifier
	Catalog     *catalog.Service
	Sessions    *session.Tracker
	Scoring     *scoring.Service
	Leaderboard *leaderboard.Service
	Ranking     *ranking.Service
	Stats       *stats.Service
	HubManager  *sse.HubManager
	KeepAlive   time.Duration

	// AdminUserIDs may change catalog availability
	AdminUserIDs []model.UserID
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.Catalog)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Leaderboard, cfg.Ranking, cfg.Stats)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions)
	scoreHandler := handler.NewScoreHandler(cfg.Scoring)
	eventsHandler := handler.NewEventsHandler(cfg.Catalog, cfg.HubManager, cfg.KeepAlive)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Verifier)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Public catalog and leaderboard routes
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}/leaderboard", leaderboardHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Routes that act on behalf of the caller
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/sessions", sessionHandler.Start).Methods(http.MethodPost)
	protected.HandleFunc("/scores", scoreHandler.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/games/{game_id}/my-score", leaderboardHandler.MyScore).Methods(http.MethodGet)
	protected.HandleFunc("/games/{game_id}/stats", leaderboardHandler.Stats).Methods(http.MethodGet)

	// Catalog administration
	admin := protected.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin(cfg.AdminUserIDs))
	admin.HandleFunc("/games/{game_id}/active", gameHandler.SetActive).Methods(http.MethodPut)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.Health{Status: "ok"})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
