package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
	"github.com/mcoot/arcade-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini  *miniredis.Miniredis
	redis *Storage
}

func TestStorageSuite(t *testing.T) {
	s := &StorageSuite{}
	s.NewStorage = func(t *testing.T) storage.Storage {
		s.mini = miniredis.RunT(t)

		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})

		cfg := DefaultConfig()
		cfg.EndedSessionTTL = time.Hour
		// Concurrent appends contend on one key; allow plenty of retries
		cfg.MaxTxRetries = 1000

		s.redis = NewWithClient(client, cfg)
		return s.redis
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestPlayCountLivesInHash() {
	game := &model.Game{ID: "egg-catch", Name: "Egg Catch", Difficulty: model.DifficultyEasy, PlayCount: 4}
	s.Require().NoError(s.redis.SaveGame(s.Ctx, game))
	s.Require().NoError(s.redis.IncrementPlayCount(s.Ctx, "egg-catch"))

	s.Equal("5", s.mini.HGet(playCountsKey(), "egg-catch"))

	games, err := s.redis.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal(int64(5), games[0].PlayCount)
}

func (s *StorageSuite) TestEndedSessionGetsTTL() {
	session := &model.Session{ID: "s1", UserID: "u1", GameID: "g", StartTime: time.Now(), Status: model.SessionStatusActive}
	s.Require().NoError(s.redis.SaveSession(s.Ctx, session))

	s.Equal(time.Duration(0), s.mini.TTL(sessionKey("s1")))
	s.True(s.mini.Exists(activeSessionsKey()))

	end := time.Now()
	session.EndTime = &end
	session.Status = model.SessionStatusCompleted
	s.Require().NoError(s.redis.SaveSession(s.Ctx, session))

	s.Equal(time.Hour, s.mini.TTL(sessionKey("s1")))
	// Removing the only member deletes the index key
	s.False(s.mini.Exists(activeSessionsKey()))
}

func (s *StorageSuite) TestHighScoreIndexTracksBest() {
	first := &model.ScoreRecord{ID: "r1", UserID: "u1", GameID: "g", Score: 300, CreatedAt: time.Now()}
	second := &model.ScoreRecord{ID: "r2", UserID: "u1", GameID: "g", Score: 500, CreatedAt: time.Now()}
	s.Require().NoError(s.redis.AppendScore(s.Ctx, first))
	s.Require().NoError(s.redis.AppendScore(s.Ctx, second))

	score, err := s.mini.ZScore(highScoresKey("g"), "u1")
	s.Require().NoError(err)
	s.Equal(500.0, score)

	id, err := s.mini.Get(highScoreKey("g", "u1"))
	s.Require().NoError(err)
	s.Equal("r2", id)
}

func (s *StorageSuite) TestAppendScoreWithNoRetriesConflicts() {
	s.redis.cfg.MaxTxRetries = 0

	err := s.redis.AppendScore(s.Ctx, &model.ScoreRecord{ID: "r1", UserID: "u1", GameID: "g", Score: 1, CreatedAt: time.Now()})
	s.ErrorIs(err, model.ErrHighScoreConflict)
	s.ErrorIs(err, model.ErrConflict)
}
