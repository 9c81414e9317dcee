package storage

import (
	"context"
	"time"

	"github.com/mcoot/arcade-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Catalog operations

	// SaveGame inserts or updates a game. On update the stored play count
	// and creation time are kept; only IncrementPlayCount moves the counter.
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	IncrementPlayCount(ctx context.Context, id model.GameID) error

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	// EndSession moves a session from active to status, stamping endTime.
	// It reports false and changes nothing if the session had already ended.
	EndSession(ctx context.Context, id model.SessionID, status model.SessionStatus, endTime time.Time) (bool, error)
	// ListActiveSessions returns active sessions started strictly before the given time
	ListActiveSessions(ctx context.Context, startedBefore time.Time) ([]*model.Session, error)

	// Score operations

	// AppendScore inserts the record and, in the same atomic step, moves the
	// high-score flag for (UserID, GameID) to it if it beats the current
	// holder. record.IsHighScore is set to the outcome.
	AppendScore(ctx context.Context, record *model.ScoreRecord) error
	GetScore(ctx context.Context, id model.ScoreID) (*model.ScoreRecord, error)
	GetHighScore(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.ScoreRecord, error)
	// CountHighScoresAbove counts users whose high score for the game is strictly greater than score
	CountHighScoresAbove(ctx context.Context, gameID model.GameID, score int) (int, error)
	// ListScoresForGame returns records created at or after since; a zero since returns all
	ListScoresForGame(ctx context.Context, gameID model.GameID, since time.Time) ([]*model.ScoreRecord, error)
	ListScoresForUser(ctx context.Context, userID model.UserID, gameID model.GameID) ([]*model.ScoreRecord, error)

	Close() error
}
