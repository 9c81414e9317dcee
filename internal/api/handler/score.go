package handler

import (
	"net/http"

	"github.com/mcoot/arcade-go/internal/api/middleware"
	"github.com/mcoot/arcade-go/internal/api/request"
	"github.com/mcoot/arcade-go/internal/api/response"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/scoring"
)

// ScoreHandler handles score submission
type ScoreHandler struct {
	scoring *scoring.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoring *scoring.Service) *ScoreHandler {
	return &ScoreHandler{scoring: scoring}
}

// Submit handles POST /api/v1/scores
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.SubmitScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.GameID == "" || req.Score == nil || req.PlayTime == nil {
		WriteError(w, NewInvalidRequestError("game_id, score and play_time are required"))
		return
	}

	result, err := h.scoring.Submit(r.Context(), scoring.Submission{
		Identity:        identity,
		GameID:          model.GameID(req.GameID),
		Score:           *req.Score,
		PlayTimeSeconds: *req.PlayTime,
		GameplayPayload: req.GameplayData,
		SessionID:       model.SessionID(req.SessionID),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.ScoreSubmittedFromResult(result))
}
