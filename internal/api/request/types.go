package request

import "encoding/json"

// StartSessionRequest is the request body for starting a play session
type StartSessionRequest struct {
	GameID string `json:"game_id"`
}

// SubmitScoreRequest is the request body for submitting a finished play.
// Score and PlayTime are pointers so a missing field can be told apart from zero.
type SubmitScoreRequest struct {
	GameID       string          `json:"game_id"`
	Score        *int            `json:"score"`
	PlayTime     *int            `json:"play_time"`
	GameplayData json.RawMessage `json:"gameplay_data,omitempty"`
	SessionID    string          `json:"session_id,omitempty"`
}

// SetGameActiveRequest is the request body for toggling a game's availability
type SetGameActiveRequest struct {
	Active *bool `json:"active"`
}
