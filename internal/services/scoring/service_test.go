package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/dependencies/mocks"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
	"github.com/mcoot/arcade-go/internal/services/ranking"
	"github.com/mcoot/arcade-go/internal/services/session"
	"github.com/mcoot/arcade-go/internal/storage/memory"
	"github.com/mcoot/arcade-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage   *memory.Storage
	clock     *mocks.MockClock
	ids       *mocks.MockIDs
	rewards   *mocks.MockCrediter
	publisher *mocks.MockPublisher
	catalog   *catalog.Service
	tracker   *session.Tracker
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDs()
	s.rewards = mocks.NewMockCrediter()
	s.publisher = mocks.NewMockPublisher()
	s.catalog = catalog.New(s.storage, s.clock, logger)
	s.tracker = session.NewTracker(s.storage, s.catalog, s.clock, s.ids, logger)
	s.service = New(
		s.storage,
		s.catalog,
		s.tracker,
		ranking.New(s.storage),
		s.rewards,
		s.publisher,
		s.clock,
		s.ids,
		DefaultConfig(),
		logger,
	)
	s.ctx = context.Background()

	s.Require().NoError(s.catalog.Seed(s.ctx, catalog.DefaultGames()))
}

func (s *ServiceSuite) submission(user model.UserID, score int) Submission {
	return Submission{
		Identity:        model.Identity{UserID: user, Username: string(user)},
		GameID:          "egg-catch",
		Score:           score,
		PlayTimeSeconds: 60,
	}
}

func (s *ServiceSuite) TestFirstSubmission() {
	s.ids.Queue("score-1")

	result, err := s.service.Submit(s.ctx, s.submission("u1", 237))
	s.Require().NoError(err)

	s.Equal(model.ScoreID("score-1"), result.ScoreID)
	s.Equal(237, result.Score)
	s.Equal(23, result.CoinsEarned)
	s.True(result.IsHighScore)
	s.Require().NotNil(result.Rank)
	s.Equal(1, *result.Rank)

	credits := s.rewards.Credits()
	s.Require().Len(credits, 1)
	s.Equal(model.UserID("u1"), credits[0].UserID)
	s.Equal(23, credits[0].Amount)
	s.Equal(237, credits[0].GameScore)
	s.Equal("Earned 23 coins from Egg Catch", credits[0].Description)

	rec, err := s.storage.GetScore(s.ctx, "score-1")
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), rec.CreatedAt)
	s.Equal("u1", rec.Username)
}

func (s *ServiceSuite) TestNewHighScoreFlipsPrevious() {
	s.ids.Queue("old", "new")
	_, err := s.service.Submit(s.ctx, s.submission("u1", 300))
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	result, err := s.service.Submit(s.ctx, s.submission("u1", 500))
	s.Require().NoError(err)
	s.True(result.IsHighScore)
	s.Equal(50, result.CoinsEarned)

	old, err := s.storage.GetScore(s.ctx, "old")
	s.Require().NoError(err)
	s.False(old.IsHighScore)
}

func (s *ServiceSuite) TestLowerScoreIsNotHighScore() {
	_, err := s.service.Submit(s.ctx, s.submission("u1", 500))
	s.Require().NoError(err)

	result, err := s.service.Submit(s.ctx, s.submission("u1", 500))
	s.Require().NoError(err)
	s.False(result.IsHighScore)

	result, err = s.service.Submit(s.ctx, s.submission("u1", 100))
	s.Require().NoError(err)
	s.False(result.IsHighScore)
	s.Equal(1, *result.Rank)
}

func (s *ServiceSuite) TestZeroScoreSkipsWallet() {
	result, err := s.service.Submit(s.ctx, s.submission("u1", 0))
	s.Require().NoError(err)
	s.Equal(0, result.CoinsEarned)
	s.True(result.IsHighScore)
	s.Empty(s.rewards.Credits())
}

func (s *ServiceSuite) TestWalletFailureDoesNotFailSubmission() {
	s.rewards.Err = fmt.Errorf("%w: down", model.ErrWalletUnavailable)

	result, err := s.service.Submit(s.ctx, s.submission("u1", 120))
	s.Require().NoError(err)
	s.Equal(12, result.CoinsEarned)
}

func (s *ServiceSuite) TestRejectsOutOfRangeWithoutSideEffects() {
	started, err := s.tracker.Start(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	issued := s.ids.Issued()

	for _, score := range []int{10001, -1} {
		sub := s.submission("u1", score)
		sub.SessionID = started.SessionID

		_, err := s.service.Submit(s.ctx, sub)
		s.ErrorIs(err, model.ErrScoreOutOfRange)
		s.ErrorIs(err, model.ErrInvalidInput)
	}

	recs, err := s.storage.ListScoresForUser(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	s.Empty(recs)
	s.Equal(issued, s.ids.Issued())

	sess, err := s.tracker.Get(s.ctx, started.SessionID)
	s.Require().NoError(err)
	s.Equal(model.SessionStatusActive, sess.Status)

	s.Empty(s.rewards.Credits())
	s.Empty(s.publisher.Events())
}

func (s *ServiceSuite) TestBoundaryScoresAccepted() {
	result, err := s.service.Submit(s.ctx, s.submission("u1", 10000))
	s.Require().NoError(err)
	s.Equal(1000, result.CoinsEarned)
}

func (s *ServiceSuite) TestRejectsNegativePlayTime() {
	sub := s.submission("u1", 100)
	sub.PlayTimeSeconds = -5

	_, err := s.service.Submit(s.ctx, sub)
	s.ErrorIs(err, model.ErrInvalidPlayTime)
}

func (s *ServiceSuite) TestRejectsMalformedPayload() {
	sub := s.submission("u1", 100)
	sub.GameplayPayload = json.RawMessage(`{"eggs":`)

	_, err := s.service.Submit(s.ctx, sub)
	s.ErrorIs(err, model.ErrInvalidPayload)
}

func (s *ServiceSuite) TestStoresPayload() {
	s.ids.Queue("score-1")
	sub := s.submission("u1", 100)
	sub.GameplayPayload = json.RawMessage(` {"eggsCaught": 10} `)

	_, err := s.service.Submit(s.ctx, sub)
	s.Require().NoError(err)

	rec, err := s.storage.GetScore(s.ctx, "score-1")
	s.Require().NoError(err)
	s.JSONEq(`{"eggsCaught": 10}`, string(rec.GameplayPayload))
}

func (s *ServiceSuite) TestUnknownGameCheckedFirst() {
	sub := s.submission("u1", 999999)
	sub.GameID = "missing"

	_, err := s.service.Submit(s.ctx, sub)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestMissingGameID() {
	sub := s.submission("u1", 10)
	sub.GameID = ""

	_, err := s.service.Submit(s.ctx, sub)
	s.ErrorIs(err, model.ErrMissingGameID)
}

func (s *ServiceSuite) TestInactiveGameStillAcceptsScores() {
	started, err := s.tracker.Start(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	s.Require().NoError(s.catalog.SetActive(s.ctx, "egg-catch", false))

	sub := s.submission("u1", 100)
	sub.SessionID = started.SessionID
	_, err = s.service.Submit(s.ctx, sub)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestClosesOwnSession() {
	started, err := s.tracker.Start(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)

	s.clock.Advance(45 * time.Second)
	sub := s.submission("u1", 100)
	sub.SessionID = started.SessionID
	_, err = s.service.Submit(s.ctx, sub)
	s.Require().NoError(err)

	sess, err := s.tracker.Get(s.ctx, started.SessionID)
	s.Require().NoError(err)
	s.Equal(model.SessionStatusCompleted, sess.Status)
	s.Equal(s.clock.Now(), *sess.EndTime)
}

func (s *ServiceSuite) TestIgnoresForeignSession() {
	started, err := s.tracker.Start(s.ctx, "other", "egg-catch")
	s.Require().NoError(err)

	sub := s.submission("u1", 100)
	sub.SessionID = started.SessionID
	_, err = s.service.Submit(s.ctx, sub)
	s.Require().NoError(err)

	sess, err := s.tracker.Get(s.ctx, started.SessionID)
	s.Require().NoError(err)
	s.Equal(model.SessionStatusActive, sess.Status)
}

func (s *ServiceSuite) TestUnknownSessionStillRecords() {
	sub := s.submission("u1", 100)
	sub.SessionID = "ghost"

	result, err := s.service.Submit(s.ctx, sub)
	s.Require().NoError(err)
	s.True(result.IsHighScore)
}

func (s *ServiceSuite) TestPublishesEvent() {
	_, err := s.service.Submit(s.ctx, s.submission("u1", 400))
	s.Require().NoError(err)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(model.GameID("egg-catch"), events[0].GameID)
	s.Equal(model.UserID("u1"), events[0].UserID)
	s.Equal(400, events[0].Score)
	s.True(events[0].IsHighScore)
	s.Equal(1, *events[0].Rank)
}

func (s *ServiceSuite) TestDefaultUsername() {
	s.ids.Queue("score-1")
	sub := s.submission("u1", 10)
	sub.Identity.Username = ""

	_, err := s.service.Submit(s.ctx, sub)
	s.Require().NoError(err)

	rec, err := s.storage.GetScore(s.ctx, "score-1")
	s.Require().NoError(err)
	s.Equal(model.DefaultUsername, rec.Username)
}

func (s *ServiceSuite) TestRankReflectsOtherPlayers() {
	_, err := s.service.Submit(s.ctx, s.submission("a", 900))
	s.Require().NoError(err)
	_, err = s.service.Submit(s.ctx, s.submission("b", 500))
	s.Require().NoError(err)

	result, err := s.service.Submit(s.ctx, s.submission("c", 500))
	s.Require().NoError(err)
	s.Equal(2, *result.Rank)
}

func (s *ServiceSuite) TestConcurrentSubmissionsKeepOneHighScore() {
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := s.service.Submit(s.ctx, s.submission("u1", score))
			s.NoError(err)
		}(i * 10)
	}
	wg.Wait()

	recs, err := s.storage.ListScoresForUser(s.ctx, "u1", "egg-catch")
	s.Require().NoError(err)
	s.Len(recs, 20)

	var flagged []*model.ScoreRecord
	for _, rec := range recs {
		if rec.IsHighScore {
			flagged = append(flagged, rec)
		}
	}
	s.Require().Len(flagged, 1)
	s.Equal(200, flagged[0].Score)
}
