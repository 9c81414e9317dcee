package model

import "time"

// SessionID uniquely identifies a play session
type SessionID string

// UserID identifies a player as asserted by the caller's identity token
type UserID string

// SessionStatus is the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// Session tracks a single play from start to score submission.
// Status only moves from active to one of the terminal states.
type Session struct {
	ID        SessionID
	UserID    UserID
	GameID    GameID
	StartTime time.Time
	EndTime   *time.Time
	Status    SessionStatus
}

// IsActive returns true while the session can still be closed
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}
