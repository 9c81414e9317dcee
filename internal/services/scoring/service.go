package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/arcade-go/internal/dependencies/clock"
	"github.com/mcoot/arcade-go/internal/dependencies/idgen"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/catalog"
	"github.com/mcoot/arcade-go/internal/services/ranking"
	"github.com/mcoot/arcade-go/internal/services/session"
	"github.com/mcoot/arcade-go/internal/storage"
	"github.com/mcoot/arcade-go/internal/wallet"
)

// Config holds submission limits
type Config struct {
	// MaxScore is the highest score accepted for any game
	MaxScore int
}

// DefaultConfig returns the default submission limits
func DefaultConfig() Config {
	return Config{MaxScore: 10000}
}

// RewardDispatcher hands a coin credit off without waiting for delivery
type RewardDispatcher interface {
	Dispatch(credit wallet.Credit)
}

// EventPublisher fans accepted submissions out to live subscribers
type EventPublisher interface {
	PublishScore(event model.ScoreEvent)
}

// Submission is a finished play as reported by the client
type Submission struct {
	Identity        model.Identity
	GameID          model.GameID
	Score           int
	PlayTimeSeconds int
	GameplayPayload json.RawMessage
	SessionID       model.SessionID
}

// Result is returned to the submitter
type Result struct {
	ScoreID     model.ScoreID
	Score       int
	CoinsEarned int
	IsHighScore bool
	// Rank is nil only if it could not be resolved after the write
	Rank *int
}

// Service validates submissions, computes rewards and records scores
type Service struct {
	storage  storage.Storage
	catalog  *catalog.Service
	sessions *session.Tracker
	ranking  *ranking.Service
	rewards  RewardDispatcher
	events   EventPublisher
	clock    clock.Clock
	ids      idgen.Generator
	cfg      Config
	logger   *slog.Logger
}

// New creates a new scoring service. rewards and events may be nil.
func New(
	storage storage.Storage,
	catalog *catalog.Service,
	sessions *session.Tracker,
	ranking *ranking.Service,
	rewards RewardDispatcher,
	events EventPublisher,
	clock clock.Clock,
	ids idgen.Generator,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:  storage,
		catalog:  catalog,
		sessions: sessions,
		ranking:  ranking,
		rewards:  rewards,
		events:   events,
		clock:    clock,
		ids:      ids,
		cfg:      cfg,
		logger:   logger,
	}
}

// Submit validates and records a score. Nothing is written and no session is
// touched unless every check passes. Once the record is stored the call
// succeeds; session closing, live events and wallet credits are best effort.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if sub.GameID == "" {
		return nil, model.ErrMissingGameID
	}

	game, err := s.catalog.Get(ctx, sub.GameID)
	if err != nil {
		return nil, err
	}

	payload, err := s.validate(sub)
	if err != nil {
		s.logger.Warn("score rejected",
			slog.String("user_id", string(sub.Identity.UserID)),
			slog.String("game_id", string(sub.GameID)),
			slog.Int("score", sub.Score),
			slog.String("reason", err.Error()),
		)
		return nil, err
	}

	rec := &model.ScoreRecord{
		ID:              model.ScoreID(s.ids.NewID()),
		UserID:          sub.Identity.UserID,
		GameID:          game.ID,
		Username:        sub.Identity.DisplayName(),
		Avatar:          sub.Identity.Avatar,
		Score:           sub.Score,
		PlayTimeSeconds: sub.PlayTimeSeconds,
		CoinsEarned:     CoinsForScore(sub.Score, game.CoinMultiplier),
		GameplayPayload: payload,
		SessionID:       sub.SessionID,
		CreatedAt:       s.clock.Now(),
	}

	if err := s.storage.AppendScore(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("score recorded",
		slog.String("score_id", string(rec.ID)),
		slog.String("user_id", string(rec.UserID)),
		slog.String("game_id", string(rec.GameID)),
		slog.Int("score", rec.Score),
		slog.Int("coins", rec.CoinsEarned),
		slog.Bool("high_score", rec.IsHighScore),
	)

	if sub.SessionID != "" {
		s.closeSession(ctx, rec)
	}

	rank, err := s.ranking.Rank(ctx, rec.UserID, rec.GameID)
	if err != nil {
		s.logger.Warn("rank lookup failed after submission",
			slog.String("score_id", string(rec.ID)),
			slog.String("error", err.Error()),
		)
		rank = nil
	}

	if s.events != nil {
		s.events.PublishScore(model.ScoreEvent{
			GameID:      rec.GameID,
			UserID:      rec.UserID,
			Username:    rec.Username,
			Score:       rec.Score,
			IsHighScore: rec.IsHighScore,
			Rank:        rank,
			CreatedAt:   rec.CreatedAt,
		})
	}

	if rec.CoinsEarned > 0 && s.rewards != nil {
		s.rewards.Dispatch(wallet.ForScore(rec, game.Name))
	}

	return &Result{
		ScoreID:     rec.ID,
		Score:       rec.Score,
		CoinsEarned: rec.CoinsEarned,
		IsHighScore: rec.IsHighScore,
		Rank:        rank,
	}, nil
}

// validate checks bounds and returns the payload to store (nil when absent)
func (s *Service) validate(sub Submission) (json.RawMessage, error) {
	if sub.Score < 0 || sub.Score > s.cfg.MaxScore {
		return nil, model.ErrScoreOutOfRange
	}
	if sub.PlayTimeSeconds < 0 {
		return nil, model.ErrInvalidPlayTime
	}

	payload := bytes.TrimSpace(sub.GameplayPayload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(payload) {
		return nil, model.ErrInvalidPayload
	}
	return json.RawMessage(bytes.Clone(payload)), nil
}

// closeSession completes the submission's session if it belongs to the same
// user and game. A mismatched or unknown session is logged and left alone.
func (s *Service) closeSession(ctx context.Context, rec *model.ScoreRecord) {
	sess, err := s.sessions.Get(ctx, rec.SessionID)
	if err != nil {
		s.logger.Warn("submission references unknown session",
			slog.String("session_id", string(rec.SessionID)),
			slog.String("error", err.Error()),
		)
		return
	}
	if sess.UserID != rec.UserID || sess.GameID != rec.GameID {
		s.logger.Warn("submission references another player's session",
			slog.String("session_id", string(rec.SessionID)),
			slog.String("user_id", string(rec.UserID)),
			slog.String("game_id", string(rec.GameID)),
		)
		return
	}
	if err := s.sessions.Close(ctx, rec.SessionID); err != nil {
		s.logger.Warn("failed to close session",
			slog.String("session_id", string(rec.SessionID)),
			slog.String("error", err.Error()),
		)
	}
}
