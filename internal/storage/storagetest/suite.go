// Package storagetest holds a behavioral test suite shared by every storage backend.
package storagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

// Suite exercises a storage.Storage. Backends run it directly or embed it
// to add their own tests; either way NewStorage must be set.
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store; called before every test
	NewStorage func(t *testing.T) storage.Storage

	Storage storage.Storage
	Ctx     context.Context
	base    time.Time
	seq     int
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage(s.T())
	s.Ctx = context.Background()
	s.base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.seq = 0
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) record(user model.UserID, game model.GameID, score int, offset time.Duration) *model.ScoreRecord {
	s.seq++
	return &model.ScoreRecord{
		ID:              model.ScoreID(fmt.Sprintf("score-%03d", s.seq)),
		UserID:          user,
		GameID:          game,
		Username:        string(user),
		Score:           score,
		PlayTimeSeconds: 30,
		CoinsEarned:     score / 10,
		CreatedAt:       s.base.Add(offset),
	}
}

// Catalog tests

func (s *Suite) TestSaveAndGetGame() {
	game := &model.Game{
		ID:             "egg-catch",
		Name:           "Egg Catch",
		Category:       "arcade",
		Difficulty:     model.DifficultyEasy,
		CoinMultiplier: 1.5,
		IsActive:       true,
		PlayCount:      3,
		CreatedAt:      s.base,
		UpdatedAt:      s.base,
	}
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	got, err := s.Storage.GetGame(s.Ctx, "egg-catch")
	s.Require().NoError(err)
	s.Equal("Egg Catch", got.Name)
	s.Equal(1.5, got.CoinMultiplier)
	s.Equal(int64(3), got.PlayCount)
	s.True(got.IsActive)
	s.True(s.base.Equal(got.CreatedAt))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestListGames() {
	for _, id := range []model.GameID{"b", "a"} {
		s.Require().NoError(s.Storage.SaveGame(s.Ctx, &model.Game{ID: id, Name: string(id), Difficulty: model.DifficultyEasy, CreatedAt: s.base, UpdatedAt: s.base}))
	}
	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Len(games, 2)
}

func (s *Suite) TestIncrementPlayCount() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, &model.Game{ID: "g", Name: "G", Difficulty: model.DifficultyEasy, CreatedAt: s.base, UpdatedAt: s.base}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.Storage.IncrementPlayCount(s.Ctx, "g"))
		}()
	}
	wg.Wait()

	got, err := s.Storage.GetGame(s.Ctx, "g")
	s.Require().NoError(err)
	s.Equal(int64(10), got.PlayCount)
}

func (s *Suite) TestSaveGameKeepsPlayCountAndCreatedAt() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, &model.Game{ID: "g", Name: "G", Difficulty: model.DifficultyEasy, CreatedAt: s.base, UpdatedAt: s.base}))
	s.Require().NoError(s.Storage.IncrementPlayCount(s.Ctx, "g"))
	s.Require().NoError(s.Storage.IncrementPlayCount(s.Ctx, "g"))

	// A writer holding a stale copy must not roll the counter back
	later := s.base.Add(time.Hour)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, &model.Game{ID: "g", Name: "G2", Difficulty: model.DifficultyHard, CreatedAt: later, UpdatedAt: later}))

	got, err := s.Storage.GetGame(s.Ctx, "g")
	s.Require().NoError(err)
	s.Equal("G2", got.Name)
	s.Equal(model.DifficultyHard, got.Difficulty)
	s.Equal(int64(2), got.PlayCount)
	s.True(s.base.Equal(got.CreatedAt))
	s.True(later.Equal(got.UpdatedAt))
}

func (s *Suite) TestIncrementPlayCountUnknownGame() {
	err := s.Storage.IncrementPlayCount(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Session tests

func (s *Suite) TestSaveAndGetSession() {
	session := &model.Session{ID: "s1", UserID: "u1", GameID: "g", StartTime: s.base, Status: model.SessionStatusActive}
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	got, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(model.SessionStatusActive, got.Status)
	s.Nil(got.EndTime)

	end := s.base.Add(time.Minute)
	session.EndTime = &end
	session.Status = model.SessionStatusCompleted
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	got, err = s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(model.SessionStatusCompleted, got.Status)
	s.Require().NotNil(got.EndTime)
	s.True(end.Equal(*got.EndTime))
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestListActiveSessions() {
	end := s.base
	sessions := []*model.Session{
		{ID: "old", UserID: "u1", GameID: "g", StartTime: s.base.Add(-2 * time.Hour), Status: model.SessionStatusActive},
		{ID: "new", UserID: "u1", GameID: "g", StartTime: s.base, Status: model.SessionStatusActive},
		{ID: "done", UserID: "u1", GameID: "g", StartTime: s.base.Add(-3 * time.Hour), EndTime: &end, Status: model.SessionStatusCompleted},
	}
	for _, session := range sessions {
		s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))
	}

	got, err := s.Storage.ListActiveSessions(s.Ctx, s.base.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(model.SessionID("old"), got[0].ID)
}

func (s *Suite) TestEndSession() {
	session := &model.Session{ID: "s1", UserID: "u1", GameID: "g", StartTime: s.base.Add(-2 * time.Hour), Status: model.SessionStatusActive}
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	first := s.base
	ended, err := s.Storage.EndSession(s.Ctx, "s1", model.SessionStatusCompleted, first)
	s.Require().NoError(err)
	s.True(ended)

	ended, err = s.Storage.EndSession(s.Ctx, "s1", model.SessionStatusAbandoned, first.Add(time.Minute))
	s.Require().NoError(err)
	s.False(ended)

	got, err := s.Storage.GetSession(s.Ctx, "s1")
	s.Require().NoError(err)
	s.Equal(model.SessionStatusCompleted, got.Status)
	s.Require().NotNil(got.EndTime)
	s.True(first.Equal(*got.EndTime))

	active, err := s.Storage.ListActiveSessions(s.Ctx, s.base)
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *Suite) TestEndSessionNotFound() {
	ended, err := s.Storage.EndSession(s.Ctx, "missing", model.SessionStatusAbandoned, s.base)
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.False(ended)
}

func (s *Suite) TestConcurrentEndSessionEndsOnce() {
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, &model.Session{ID: "s1", UserID: "u1", GameID: "g", StartTime: s.base, Status: model.SessionStatusActive}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := model.SessionStatusCompleted
			if i%2 == 1 {
				status = model.SessionStatusAbandoned
			}
			ended, err := s.Storage.EndSession(s.Ctx, "s1", status, s.base.Add(time.Duration(i)*time.Second))
			if err != nil {
				s.ErrorIs(err, model.ErrWriteConflict)
				return
			}
			if ended {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, wins)
}

// High-score ledger tests

func (s *Suite) TestFirstScoreIsHighScore() {
	rec := s.record("u1", "g", 120, 0)
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, rec))
	s.True(rec.IsHighScore)

	high, err := s.Storage.GetHighScore(s.Ctx, "u1", "g")
	s.Require().NoError(err)
	s.Equal(rec.ID, high.ID)
	s.True(high.IsHighScore)
}

func (s *Suite) TestHigherScoreTakesFlag() {
	first := s.record("u1", "g", 300, 0)
	second := s.record("u1", "g", 500, time.Minute)
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, first))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, second))
	s.True(second.IsHighScore)

	old, err := s.Storage.GetScore(s.Ctx, first.ID)
	s.Require().NoError(err)
	s.False(old.IsHighScore)

	high, err := s.Storage.GetHighScore(s.Ctx, "u1", "g")
	s.Require().NoError(err)
	s.Equal(second.ID, high.ID)
	s.Equal(500, high.Score)
}

func (s *Suite) TestEqualOrLowerScoreKeepsFlag() {
	first := s.record("u1", "g", 300, 0)
	equal := s.record("u1", "g", 300, time.Minute)
	lower := s.record("u1", "g", 100, 2*time.Minute)
	for _, rec := range []*model.ScoreRecord{first, equal, lower} {
		s.Require().NoError(s.Storage.AppendScore(s.Ctx, rec))
	}
	s.True(first.IsHighScore)
	s.False(equal.IsHighScore)
	s.False(lower.IsHighScore)

	high, err := s.Storage.GetHighScore(s.Ctx, "u1", "g")
	s.Require().NoError(err)
	s.Equal(first.ID, high.ID)
}

func (s *Suite) TestHighScoresArePerGame() {
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("u1", "g1", 300, 0)))
	other := s.record("u1", "g2", 10, time.Minute)
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, other))
	s.True(other.IsHighScore)
}

func (s *Suite) TestGetHighScoreNotFound() {
	_, err := s.Storage.GetHighScore(s.Ctx, "nobody", "g")
	s.ErrorIs(err, model.ErrHighScoreNotFound)
}

func (s *Suite) TestGameplayPayloadRoundTrip() {
	rec := s.record("u1", "g", 50, 0)
	rec.GameplayPayload = json.RawMessage(`{"eggs":12,"bombs":1}`)
	rec.SessionID = "sess-1"
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, rec))

	got, err := s.Storage.GetScore(s.Ctx, rec.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"eggs":12,"bombs":1}`, string(got.GameplayPayload))
	s.Equal(model.SessionID("sess-1"), got.SessionID)
}

func (s *Suite) TestCountHighScoresAbove() {
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("a", "g", 900, 0)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("b", "g", 500, 0)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("c", "g", 500, 0)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("d", "g", 100, 0)))
	// Non-high records never count
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("d", "g", 50, time.Minute)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("z", "other", 5000, 0)))

	count, err := s.Storage.CountHighScoresAbove(s.Ctx, "g", 500)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.Storage.CountHighScoresAbove(s.Ctx, "g", 100)
	s.Require().NoError(err)
	s.Equal(3, count)

	count, err = s.Storage.CountHighScoresAbove(s.Ctx, "g", 900)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *Suite) TestListScoresForGameSince() {
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("a", "g", 10, -48*time.Hour)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("a", "g", 20, 0)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("b", "g", 30, time.Hour)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("b", "other", 40, time.Hour)))

	all, err := s.Storage.ListScoresForGame(s.Ctx, "g", time.Time{})
	s.Require().NoError(err)
	s.Len(all, 3)

	recent, err := s.Storage.ListScoresForGame(s.Ctx, "g", s.base)
	s.Require().NoError(err)
	s.Len(recent, 2)
	for _, rec := range recent {
		s.False(rec.CreatedAt.Before(s.base))
	}
}

func (s *Suite) TestListScoresForUser() {
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("a", "g", 10, 0)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("a", "g", 20, time.Minute)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("b", "g", 30, 0)))
	s.Require().NoError(s.Storage.AppendScore(s.Ctx, s.record("a", "other", 40, 0)))

	recs, err := s.Storage.ListScoresForUser(s.Ctx, "a", "g")
	s.Require().NoError(err)
	s.Len(recs, 2)

	none, err := s.Storage.ListScoresForUser(s.Ctx, "nobody", "g")
	s.Require().NoError(err)
	s.Empty(none)
}

// TestConcurrentAppendKeepsSingleHighScore submits many scores for the same
// pair at once; exactly one record may hold the flag and it must be the max.
func (s *Suite) TestConcurrentAppendKeepsSingleHighScore() {
	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		records := make([]*model.ScoreRecord, perWorker)
		for i := range records {
			records[i] = s.record("u1", "g", w*100+i*7, time.Duration(w*perWorker+i)*time.Second)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, rec := range records {
				s.NoError(s.Storage.AppendScore(s.Ctx, rec))
			}
		}()
	}
	wg.Wait()

	recs, err := s.Storage.ListScoresForUser(s.Ctx, "u1", "g")
	s.Require().NoError(err)
	s.Require().Len(recs, workers*perWorker)

	flagged := 0
	best := 0
	for _, rec := range recs {
		if rec.Score > best {
			best = rec.Score
		}
		if rec.IsHighScore {
			flagged++
		}
	}
	s.Equal(1, flagged)

	high, err := s.Storage.GetHighScore(s.Ctx, "u1", "g")
	s.Require().NoError(err)
	s.Equal(best, high.Score)
}
