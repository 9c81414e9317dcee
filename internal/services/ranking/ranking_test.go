package ranking

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

func (s *ServiceSuite) submit(user model.UserID, score int) {
	s.seq++
	s.Require().NoError(s.storage.AppendScore(s.ctx, &model.ScoreRecord{
		ID:              model.ScoreID(fmt.Sprintf("r%d", s.seq)),
		UserID:          user,
		GameID:          "egg-catch",
		Score:           score,
		PlayTimeSeconds: 45,
		CreatedAt:       s.base.Add(time.Duration(s.seq) * time.Minute),
	}))
}

func (s *ServiceSuite) TestRankNoScore() {
	rank, err := s.service.Rank(s.ctx, "nobody", "egg-catch")
	s.Require().NoError(err)
	s.Nil(rank)
}

func (s *ServiceSuite) TestRankCountsStrictlyGreater() {
	// High scores: A=900, B=500, C=500, D=100
	s.submit("A", 900)
	s.submit("B", 500)
	s.submit("C", 500)
	s.submit("D", 100)

	tests := []struct {
		user model.UserID
		want int
	}{
		{"A", 1},
		{"B", 2},
		{"C", 2},
		{"D", 4},
	}
	for _, tt := range tests {
		rank, err := s.service.Rank(s.ctx, tt.user, "egg-catch")
		s.Require().NoError(err)
		s.Require().NotNil(rank)
		s.Equal(tt.want, *rank, "user %s", tt.user)
	}
}

func (s *ServiceSuite) TestRankUsesHighScoreNotLatest() {
	s.submit("A", 400)
	s.submit("B", 300)
	s.submit("B", 100)

	rank, err := s.service.Rank(s.ctx, "B", "egg-catch")
	s.Require().NoError(err)
	s.Equal(2, *rank)
}

func (s *ServiceSuite) TestHighScore() {
	s.submit("A", 900)
	s.submit("B", 500)
	s.submit("B", 700)

	high, err := s.service.HighScore(s.ctx, "B", "egg-catch")
	s.Require().NoError(err)
	s.Require().NotNil(high)
	s.Equal(700, high.Score)
	s.Equal(2, high.Rank)
	s.Equal(45, high.PlayTimeSeconds)
	s.Equal(s.base.Add(3*time.Minute), high.PlayedAt)
}

func (s *ServiceSuite) TestHighScoreNone() {
	high, err := s.service.HighScore(s.ctx, "nobody", "egg-catch")
	s.Require().NoError(err)
	s.Nil(high)
}
