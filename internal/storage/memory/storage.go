package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

type pairKey struct {
	userID model.UserID
	gameID model.GameID
}

// Storage is an in-memory implementation of the storage interface.
// Values are copied in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	games    map[model.GameID]model.Game
	sessions map[model.SessionID]model.Session

	scores     []model.ScoreRecord
	scoreIndex map[model.ScoreID]int
	highScores map[pairKey]int
}

// New creates a new in-memory storage
func New() *Storage {
	return &Storage{
		games:      make(map[model.GameID]model.Game),
		sessions:   make(map[model.SessionID]model.Session),
		scoreIndex: make(map[model.ScoreID]int),
		highScores: make(map[pairKey]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// Catalog operations

func (s *Storage) SaveGame(_ context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *game
	if existing, ok := s.games[game.ID]; ok {
		stored.PlayCount = existing.PlayCount
		stored.CreatedAt = existing.CreatedAt
	}
	s.games[game.ID] = stored
	return nil
}

func (s *Storage) GetGame(_ context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return &game, nil
}

func (s *Storage) ListGames(_ context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, &g)
	}
	return games, nil
}

func (s *Storage) IncrementPlayCount(_ context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	game.PlayCount++
	s.games[id] = game
	return nil
}

// Session operations

func (s *Storage) SaveSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(*session)
	return nil
}

func (s *Storage) GetSession(_ context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	session = copySession(session)
	return &session, nil
}

func (s *Storage) EndSession(_ context.Context, id model.SessionID, status model.SessionStatus, endTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return false, model.ErrSessionNotFound
	}
	if !session.IsActive() {
		return false, nil
	}
	session.Status = status
	session.EndTime = &endTime
	s.sessions[id] = session
	return true, nil
}

func (s *Storage) ListActiveSessions(_ context.Context, startedBefore time.Time) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Session
	for _, session := range s.sessions {
		if session.IsActive() && session.StartTime.Before(startedBefore) {
			cp := copySession(session)
			result = append(result, &cp)
		}
	}
	return result, nil
}

func copySession(s model.Session) model.Session {
	if s.EndTime != nil {
		end := *s.EndTime
		s.EndTime = &end
	}
	return s
}

// Score operations

// AppendScore holds the write lock across the read-compare-write, which
// serializes every high-score swap.
func (s *Storage) AppendScore(_ context.Context, record *model.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID: record.UserID, gameID: record.GameID}
	prevIdx, hasPrev := s.highScores[key]

	var prev *model.ScoreRecord
	if hasPrev {
		prev = &s.scores[prevIdx]
	}

	record.IsHighScore = record.Beats(prev)

	stored := *record
	stored.GameplayPayload = slices.Clone(record.GameplayPayload)
	s.scores = append(s.scores, stored)
	idx := len(s.scores) - 1
	s.scoreIndex[record.ID] = idx

	if record.IsHighScore {
		if hasPrev {
			s.scores[prevIdx].IsHighScore = false
		}
		s.highScores[key] = idx
	}
	return nil
}

func (s *Storage) GetScore(_ context.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.scoreIndex[id]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	return s.copyScore(idx), nil
}

func (s *Storage) GetHighScore(_ context.Context, userID model.UserID, gameID model.GameID) (*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.highScores[pairKey{userID: userID, gameID: gameID}]
	if !ok {
		return nil, model.ErrHighScoreNotFound
	}
	return s.copyScore(idx), nil
}

func (s *Storage) CountHighScoresAbove(_ context.Context, gameID model.GameID, score int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for key, idx := range s.highScores {
		if key.gameID == gameID && s.scores[idx].Score > score {
			count++
		}
	}
	return count, nil
}

func (s *Storage) ListScoresForGame(_ context.Context, gameID model.GameID, since time.Time) ([]*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.ScoreRecord
	for i := range s.scores {
		rec := &s.scores[i]
		if rec.GameID != gameID {
			continue
		}
		if !since.IsZero() && rec.CreatedAt.Before(since) {
			continue
		}
		result = append(result, s.copyScore(i))
	}
	return result, nil
}

func (s *Storage) ListScoresForUser(_ context.Context, userID model.UserID, gameID model.GameID) ([]*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.ScoreRecord
	for i := range s.scores {
		if s.scores[i].UserID == userID && s.scores[i].GameID == gameID {
			result = append(result, s.copyScore(i))
		}
	}
	return result, nil
}

// copyScore must be called with the lock held
func (s *Storage) copyScore(idx int) *model.ScoreRecord {
	rec := s.scores[idx]
	rec.GameplayPayload = slices.Clone(rec.GameplayPayload)
	return &rec
}
