package ranking

import (
	"context"
	"errors"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

// Service resolves a user's standing from the per-user high scores of a game.
// Ranks are competition style: users with equal high scores share a rank.
type Service struct {
	storage storage.Storage
}

// New creates a new ranking service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Rank returns 1 + the number of users with a strictly greater high score,
// or nil when the user has no score for the game
func (s *Service) Rank(ctx context.Context, userID model.UserID, gameID model.GameID) (*int, error) {
	high, err := s.storage.GetHighScore(ctx, userID, gameID)
	if err != nil {
		if errors.Is(err, model.ErrHighScoreNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rank, err := s.rankFor(ctx, gameID, high.Score)
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

// HighScore returns the user's best record with its rank, or nil when there is none
func (s *Service) HighScore(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.HighScore, error) {
	high, err := s.storage.GetHighScore(ctx, userID, gameID)
	if err != nil {
		if errors.Is(err, model.ErrHighScoreNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rank, err := s.rankFor(ctx, gameID, high.Score)
	if err != nil {
		return nil, err
	}

	return &model.HighScore{
		Score:           high.Score,
		Rank:            rank,
		PlayedAt:        high.CreatedAt,
		PlayTimeSeconds: high.PlayTimeSeconds,
	}, nil
}

func (s *Service) rankFor(ctx context.Context, gameID model.GameID, score int) (int, error) {
	above, err := s.storage.CountHighScoresAbove(ctx, gameID, score)
	if err != nil {
		return 0, err
	}
	return above + 1, nil
}
