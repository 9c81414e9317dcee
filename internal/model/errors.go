package model

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap one of these so callers can match on
// either the specific error or its kind.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Common errors used across the application
var (
	// Catalog errors
	ErrGameNotFound = fmt.Errorf("game not found: %w", ErrNotFound)
	ErrGameInactive = fmt.Errorf("game is not active: %w", ErrNotFound)
	ErrInvalidGame  = fmt.Errorf("invalid game definition: %w", ErrInvalidInput)

	// Session errors
	ErrSessionNotFound = fmt.Errorf("session not found: %w", ErrNotFound)

	// Submission errors
	ErrMissingGameID   = fmt.Errorf("game id is required: %w", ErrInvalidInput)
	ErrScoreOutOfRange = fmt.Errorf("score out of range: %w", ErrInvalidInput)
	ErrInvalidPlayTime = fmt.Errorf("play time must not be negative: %w", ErrInvalidInput)
	ErrInvalidPayload  = fmt.Errorf("gameplay data must be valid JSON: %w", ErrInvalidInput)

	// Score ledger errors
	ErrScoreNotFound     = fmt.Errorf("score not found: %w", ErrNotFound)
	ErrHighScoreNotFound = fmt.Errorf("high score not found: %w", ErrNotFound)
	ErrHighScoreConflict = fmt.Errorf("high score update could not be serialized: %w", ErrConflict)
	ErrWriteConflict     = fmt.Errorf("concurrent update could not be serialized: %w", ErrConflict)

	// Leaderboard errors
	ErrInvalidPeriod = fmt.Errorf("unknown leaderboard period: %w", ErrInvalidInput)
	ErrInvalidLimit  = fmt.Errorf("leaderboard limit out of range: %w", ErrInvalidInput)

	// Identity errors
	ErrInvalidToken = fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)

	// Wallet errors
	ErrWalletUnavailable = fmt.Errorf("wallet service unavailable: %w", ErrDependencyUnavailable)
)
