package model

import (
	"encoding/json"
	"time"
)

// ScoreID uniquely identifies a score record
type ScoreID string

// DefaultUsername is used when the caller's identity carries no display name
const DefaultUsername = "Player"

// Identity is the already-authenticated caller
type Identity struct {
	UserID   UserID
	Username string
	Avatar   string
}

// DisplayName returns the username, falling back to DefaultUsername
func (i Identity) DisplayName() string {
	if i.Username == "" {
		return DefaultUsername
	}
	return i.Username
}

// ScoreRecord is one accepted submission. Records are append-only; the only
// field that changes after insert is IsHighScore.
type ScoreRecord struct {
	ID              ScoreID
	UserID          UserID
	GameID          GameID
	Username        string
	Avatar          string
	Score           int
	PlayTimeSeconds int
	CoinsEarned     int
	GameplayPayload json.RawMessage
	IsHighScore     bool
	SessionID       SessionID
	CreatedAt       time.Time
}

// Beats reports whether r should hold the high-score flag over other.
// Only a strictly greater score wins, so the earliest of equal scores keeps it.
func (r *ScoreRecord) Beats(other *ScoreRecord) bool {
	return other == nil || r.Score > other.Score
}

// ScoreEvent is published to live feed subscribers after a submission
type ScoreEvent struct {
	GameID      GameID
	UserID      UserID
	Username    string
	Score       int
	IsHighScore bool
	Rank        *int
	CreatedAt   time.Time
}
