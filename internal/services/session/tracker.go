package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/arcade-go/internal/dependencies/clock"
	"github.com/mcoot/arcade-go/internal/dependencies/idgen"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
	"github.com/mcoot/arcade-go/internal/storage"
)

// Started is returned to the client when a play begins
type Started struct {
	SessionID      model.SessionID
	GameID         model.GameID
	GameName       string
	CoinMultiplier float64
}

// Tracker manages the session lifecycle: active until a score closes it,
// or until the reaper gives up on it.
type Tracker struct {
	storage storage.Storage
	catalog *catalog.Service
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger
}

// NewTracker creates a new session Tracker
func NewTracker(
	storage storage.Storage,
	catalog *catalog.Service,
	clock clock.Clock,
	ids idgen.Generator,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		storage: storage,
		catalog: catalog,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// Start opens a session for an active game and bumps its play count
func (t *Tracker) Start(ctx context.Context, userID model.UserID, gameID model.GameID) (*Started, error) {
	game, err := t.catalog.GetActive(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err := t.storage.IncrementPlayCount(ctx, gameID); err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:        model.SessionID(t.ids.NewID()),
		UserID:    userID,
		GameID:    gameID,
		StartTime: t.clock.Now(),
		Status:    model.SessionStatusActive,
	}
	if err := t.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	t.logger.Info("session started",
		slog.String("session_id", string(session.ID)),
		slog.String("user_id", string(userID)),
		slog.String("game_id", string(gameID)),
	)

	return &Started{
		SessionID:      session.ID,
		GameID:         game.ID,
		GameName:       game.Name,
		CoinMultiplier: game.CoinMultiplier,
	}, nil
}

// Get returns a session by ID
func (t *Tracker) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return t.storage.GetSession(ctx, id)
}

// Close completes an active session. Unknown or already ended sessions are left alone.
func (t *Tracker) Close(ctx context.Context, id model.SessionID) error {
	_, err := t.end(ctx, id, model.SessionStatusCompleted)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil
	}
	return err
}

// ReapAbandoned marks sessions that have been active for longer than olderThan
// as abandoned and returns how many it ended. A session closed by a score
// after it was listed keeps its completed status.
func (t *Tracker) ReapAbandoned(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := t.clock.Now().Add(-olderThan)
	stale, err := t.storage.ListActiveSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, session := range stale {
		ended, err := t.end(ctx, session.ID, model.SessionStatusAbandoned)
		if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			return reaped, err
		}
		if ended {
			reaped++
		}
	}
	if reaped > 0 {
		t.logger.Info("abandoned sessions reaped", slog.Int("count", reaped))
	}
	return reaped, nil
}

// RunReaper calls ReapAbandoned every interval until ctx is done
func (t *Tracker) RunReaper(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.ReapAbandoned(ctx, olderThan); err != nil && ctx.Err() == nil {
				t.logger.Error("session reaper failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (t *Tracker) end(ctx context.Context, id model.SessionID, status model.SessionStatus) (bool, error) {
	ended, err := t.storage.EndSession(ctx, id, status, t.clock.Now())
	if err != nil || !ended {
		return false, err
	}
	t.logger.Debug("session ended",
		slog.String("session_id", string(id)),
		slog.String("status", string(status)),
	)
	return true, nil
}
