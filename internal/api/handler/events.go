package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/arcade-go/internal/api/sse"
	"github.com/mcoot/arcade-go/internal/middleware"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
)

// EventsHandler serves the live score feed
type EventsHandler struct {
	catalog   *catalog.Service
	hubs      *sse.HubManager
	keepalive time.Duration
}

// NewEventsHandler creates a new events handler. A zero keepalive uses
// sse.DefaultKeepalive.
func NewEventsHandler(catalog *catalog.Service, hubs *sse.HubManager, keepalive time.Duration) *EventsHandler {
	if keepalive <= 0 {
		keepalive = sse.DefaultKeepalive
	}
	return &EventsHandler{
		catalog:   catalog,
		hubs:      hubs,
		keepalive: keepalive,
	}
}

// Stream handles GET /api/v1/games/{game_id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	if _, err := h.catalog.Get(r.Context(), gameID); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubs.GetOrCreateHub(gameID)
	sse.ServeSSE(w, r, hub, middleware.RequestIDFromContext(r.Context()), h.keepalive)
}
