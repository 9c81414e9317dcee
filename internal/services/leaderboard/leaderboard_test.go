package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/dependencies/mocks"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage/memory"
	"github.com/mcoot/arcade-go/internal/testutil"
)

var t0 = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func rec(user model.UserID, score int, at time.Time) *model.ScoreRecord {
	return &model.ScoreRecord{UserID: user, Username: string(user), Score: score, CreatedAt: at}
}

func TestAggregateKeepsBestPerUser(t *testing.T) {
	entries := Aggregate([]*model.ScoreRecord{
		rec("A", 100, t0),
		rec("A", 300, t0.Add(time.Minute)),
		rec("B", 200, t0),
		rec("A", 50, t0.Add(2*time.Minute)),
	}, 10)

	require.Len(t, entries, 2)
	assert.Equal(t, model.UserID("A"), entries[0].UserID)
	assert.Equal(t, 300, entries[0].Score)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, model.UserID("B"), entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestAggregateTiesBrokenBySubmissionTime(t *testing.T) {
	// B reached 500 first, so B ranks above A despite equal scores
	entries := Aggregate([]*model.ScoreRecord{
		rec("A", 500, t0.Add(time.Hour)),
		rec("B", 500, t0),
		rec("C", 900, t0.Add(2*time.Hour)),
	}, 10)

	require.Len(t, entries, 3)
	assert.Equal(t, []model.UserID{"C", "B", "A"}, []model.UserID{entries[0].UserID, entries[1].UserID, entries[2].UserID})
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestAggregateUserTieKeepsEarliestRecord(t *testing.T) {
	entries := Aggregate([]*model.ScoreRecord{
		rec("A", 500, t0.Add(time.Hour)),
		rec("A", 500, t0),
	}, 10)

	require.Len(t, entries, 1)
	assert.Equal(t, t0, entries[0].PlayedAt)
}

func TestAggregateIdenticalScoreAndTimeOrderedByUser(t *testing.T) {
	entries := Aggregate([]*model.ScoreRecord{
		rec("zed", 500, t0),
		rec("amy", 500, t0),
	}, 10)

	require.Len(t, entries, 2)
	assert.Equal(t, model.UserID("amy"), entries[0].UserID)
}

func TestAggregateLimit(t *testing.T) {
	var records []*model.ScoreRecord
	for i := 0; i < 10; i++ {
		records = append(records, rec(model.UserID(fmt.Sprintf("u%d", i)), i*10, t0))
	}

	entries := Aggregate(records, 3)
	require.Len(t, entries, 3)
	assert.Equal(t, 90, entries[0].Score)
	assert.Equal(t, 70, entries[2].Score)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, 10))
}

func TestWindowStart(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	tests := []struct {
		name   string
		period model.Period
		loc    *time.Location
		want   time.Time
	}{
		{"today utc", model.PeriodToday, time.UTC, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		// 12:00 UTC is 23:00 in Sydney (UTC+11 in March)
		{"today sydney", model.PeriodToday, sydney, time.Date(2024, 3, 15, 0, 0, 0, 0, sydney)},
		{"week", model.PeriodWeek, time.UTC, t0.Add(-7 * 24 * time.Hour)},
		{"month", model.PeriodMonth, time.UTC, time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)},
		{"alltime", model.PeriodAllTime, time.UTC, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WindowStart(t0, tt.period, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestWindowStartUnknownPeriod(t *testing.T) {
	_, err := WindowStart(t0, "fortnight", time.UTC)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
	seq     int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(t0)
	s.service = New(s.storage, s.clock, time.UTC, testutil.NopLogger())
	s.ctx = context.Background()
	s.seq = 0
}

func (s *ServiceSuite) submit(user model.UserID, score int, at time.Time) {
	s.seq++
	r := rec(user, score, at)
	r.ID = model.ScoreID(fmt.Sprintf("r%d", s.seq))
	r.GameID = "egg-catch"
	s.Require().NoError(s.storage.AppendScore(s.ctx, r))
}

func (s *ServiceSuite) TestAllTime() {
	s.submit("A", 100, t0.Add(-60*24*time.Hour))
	s.submit("B", 300, t0.Add(-time.Hour))

	board, err := s.service.Leaderboard(s.ctx, "egg-catch", model.PeriodAllTime, 0)
	s.Require().NoError(err)
	s.Equal(model.GameID("egg-catch"), board.GameID)
	s.Equal(model.PeriodAllTime, board.Period)
	s.Equal(2, board.Total)
	s.Equal(model.UserID("B"), board.Rankings[0].UserID)
}

func (s *ServiceSuite) TestTodayUsesBestWithinWindow() {
	// A's all-time best is from yesterday; today only the 200 counts
	s.submit("A", 900, t0.Add(-24*time.Hour))
	s.submit("A", 200, t0.Add(-time.Hour))
	s.submit("B", 300, t0.Add(-2*time.Hour))

	board, err := s.service.Leaderboard(s.ctx, "egg-catch", model.PeriodToday, 10)
	s.Require().NoError(err)
	s.Require().Len(board.Rankings, 2)
	s.Equal(model.UserID("B"), board.Rankings[0].UserID)
	s.Equal(model.UserID("A"), board.Rankings[1].UserID)
	s.Equal(200, board.Rankings[1].Score)
}

func (s *ServiceSuite) TestWeekBoundary() {
	s.submit("A", 100, t0.Add(-7*24*time.Hour))
	s.submit("B", 100, t0.Add(-7*24*time.Hour-time.Second))

	board, err := s.service.Leaderboard(s.ctx, "egg-catch", model.PeriodWeek, 10)
	s.Require().NoError(err)
	s.Require().Len(board.Rankings, 1)
	s.Equal(model.UserID("A"), board.Rankings[0].UserID)
}

func (s *ServiceSuite) TestDefaultLimit() {
	for i := 0; i < DefaultLimit+5; i++ {
		s.submit(model.UserID(fmt.Sprintf("u%03d", i)), i, t0)
	}

	board, err := s.service.Leaderboard(s.ctx, "egg-catch", model.PeriodAllTime, 0)
	s.Require().NoError(err)
	s.Len(board.Rankings, DefaultLimit)
	s.Equal(DefaultLimit, board.Total)
}

func (s *ServiceSuite) TestUnknownGameIsEmpty() {
	board, err := s.service.Leaderboard(s.ctx, "missing", model.PeriodAllTime, 10)
	s.Require().NoError(err)
	s.Empty(board.Rankings)
	s.Equal(0, board.Total)
}

func (s *ServiceSuite) TestUnknownPeriod() {
	_, err := s.service.Leaderboard(s.ctx, "egg-catch", "yearly", 10)
	s.ErrorIs(err, model.ErrInvalidInput)
}
