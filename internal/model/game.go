package model

import "time"

// GameID uniquely identifies a catalog game (e.g. "egg-catch")
type GameID string

// Difficulty is the difficulty tier of a game
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known tier
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Game is a catalog entry. Games are never deleted, only deactivated.
type Game struct {
	ID          GameID
	Name        string
	Description string
	Category    string
	Difficulty  Difficulty

	// CoinMultiplier scales the coin reward for a score. Interpreted as the
	// exact decimal it prints as, so 0.1 means one tenth.
	CoinMultiplier float64
	IsActive       bool

	// PlayCount only ever increases, once per started session
	PlayCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
