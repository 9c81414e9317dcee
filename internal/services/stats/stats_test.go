package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
	base    time.Time
	seq     int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
	s.base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.seq = 0
}

func (s *ServiceSuite) submit(user model.UserID, game model.GameID, score int) {
	s.seq++
	s.Require().NoError(s.storage.AppendScore(s.ctx, &model.ScoreRecord{
		ID:          model.ScoreID(fmt.Sprintf("r%d", s.seq)),
		UserID:      user,
		GameID:      game,
		Score:       score,
		CoinsEarned: score / 10,
		CreatedAt:   s.base.Add(time.Duration(s.seq) * time.Minute),
	}))
}

func (s *ServiceSuite) TestNoHistory() {
	stats, err := s.service.Stats(s.ctx, "nobody", "egg-catch")
	s.Require().NoError(err)
	s.Equal(0, stats.GamesPlayed)
	s.Equal(0, stats.HighScore)
	s.Equal(0, stats.AverageScore)
	s.NotNil(stats.RecentScores)
	s.Empty(stats.RecentScores)
}

func (s *ServiceSuite) TestTotals() {
	s.submit("u1", "egg-catch", 100)
	s.submit("u1", "egg-catch", 250)
	s.submit("u1", "egg-catch", 40)
	s.submit("u1", "other", 9000)
	s.submit("u2", "egg-catch", 5000)

	stats, err := s.service.Stats(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	s.Equal(3, stats.GamesPlayed)
	s.Equal(250, stats.HighScore)
	s.Equal(10+25+4, stats.TotalCoinsEarned)
	s.Equal(130, stats.AverageScore)
}

func (s *ServiceSuite) TestAverageRoundsHalfUp() {
	s.submit("u1", "egg-catch", 1)
	s.submit("u1", "egg-catch", 2)

	stats, err := s.service.Stats(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	s.Equal(2, stats.AverageScore)
}

func (s *ServiceSuite) TestRecentScoresNewestFirstCapped() {
	for i := 1; i <= 12; i++ {
		s.submit("u1", "egg-catch", i*10)
	}

	stats, err := s.service.Stats(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	s.Equal(12, stats.GamesPlayed)
	s.Require().Len(stats.RecentScores, RecentLimit)
	s.Equal(120, stats.RecentScores[0].Score)
	s.Equal(12, stats.RecentScores[0].CoinsEarned)
	s.Equal(30, stats.RecentScores[RecentLimit-1].Score)
	s.True(stats.RecentScores[0].PlayedAt.After(stats.RecentScores[1].PlayedAt))
}
