package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arcade-go/internal/api/request"
	"github.com/mcoot/arcade-go/internal/api/response"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
)

// GameHandler handles catalog endpoints
type GameHandler struct {
	catalog *catalog.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(catalog *catalog.Service) *GameHandler {
	return &GameHandler{catalog: catalog}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.List(r.Context(), true)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.GameListFromModel(games))
}

// Get handles GET /api/v1/games/{game_id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	game, err := h.catalog.Get(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.GameFromModel(game))
}

// SetActive handles PUT /api/v1/games/{game_id}/active
func (h *GameHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	var req request.SetGameActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Active == nil {
		WriteError(w, NewInvalidRequestError("active is required"))
		return
	}

	if err := h.catalog.SetActive(r.Context(), gameID, *req.Active); err != nil {
		WriteError(w, err)
		return
	}

	game, err := h.catalog.Get(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.GameFromModel(game))
}
