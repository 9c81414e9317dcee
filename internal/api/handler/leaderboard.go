package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/arcade-go/internal/api/middleware"
	"github.com/mcoot/arcade-go/internal/api/response"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/leaderboard"
	"github.com/mcoot/arcade-go/internal/services/ranking"
	"github.com/mcoot/arcade-go/internal/services/stats"
)

// LeaderboardHandler handles leaderboard, rank and stats endpoints
type LeaderboardHandler struct {
	leaderboard *leaderboard.Service
	ranking     *ranking.Service
	stats       *stats.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(
	leaderboard *leaderboard.Service,
	ranking *ranking.Service,
	stats *stats.Service,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		ranking:     ranking,
		stats:       stats,
	}
}

// Leaderboard handles GET /api/v1/games/{game_id}/leaderboard
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])
	query := r.URL.Query()

	period, err := model.ParsePeriod(query.Get("period"))
	if err != nil {
		WriteError(w, err)
		return
	}

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		WriteError(w, err)
		return
	}

	lb, err := h.leaderboard.Leaderboard(r.Context(), gameID, period, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.LeaderboardFromModel(lb))
}

// MyScore handles GET /api/v1/games/{game_id}/my-score
func (h *LeaderboardHandler) MyScore(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	gameID := model.GameID(mux.Vars(r)["game_id"])

	hs, err := h.ranking.HighScore(r.Context(), identity.UserID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.MyScoreFromModel(hs))
}

// Stats handles GET /api/v1/games/{game_id}/stats
func (h *LeaderboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	gameID := model.GameID(mux.Vars(r)["game_id"])

	st, err := h.stats.Stats(r.Context(), identity.UserID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.StatsFromModel(st))
}

// parseLimit reads the limit query parameter. Empty means the default.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return leaderboard.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > leaderboard.MaxLimit {
		return 0, model.ErrInvalidLimit
	}
	return limit, nil
}
