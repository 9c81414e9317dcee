package handler

import (
	"net/http"

	"github.com/mcoot/arcade-go/internal/api/middleware"
	"github.com/mcoot/arcade-go/internal/api/request"
	"github.com/mcoot/arcade-go/internal/api/response"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/session"
)

// SessionHandler handles play session endpoints
type SessionHandler struct {
	tracker *session.Tracker
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(tracker *session.Tracker) *SessionHandler {
	return &SessionHandler{tracker: tracker}
}

// Start handles POST /api/v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.StartSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.GameID == "" {
		WriteError(w, model.ErrMissingGameID)
		return
	}

	started, err := h.tracker.Start(r.Context(), identity.UserID, model.GameID(req.GameID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.SessionStartedFromModel(started))
}
