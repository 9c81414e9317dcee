package stats

import (
	"context"
	"math"
	"slices"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

// RecentLimit is how many of the latest scores are returned
const RecentLimit = 10

// Service summarizes a user's history for a game
type Service struct {
	storage storage.Storage
}

// New creates a new stats service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Stats returns totals and the most recent scores. A user with no history
// gets zeroes and an empty recent list.
func (s *Service) Stats(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.UserStats, error) {
	records, err := s.storage.ListScoresForUser(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStats{RecentScores: []model.RecentScore{}}
	if len(records) == 0 {
		return stats, nil
	}

	total := 0
	for _, rec := range records {
		total += rec.Score
		stats.TotalCoinsEarned += rec.CoinsEarned
		if rec.Score > stats.HighScore {
			stats.HighScore = rec.Score
		}
	}
	stats.GamesPlayed = len(records)
	stats.AverageScore = int(math.Round(float64(total) / float64(len(records))))

	slices.SortStableFunc(records, func(a, b *model.ScoreRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for _, rec := range records[:min(RecentLimit, len(records))] {
		stats.RecentScores = append(stats.RecentScores, model.RecentScore{
			Score:       rec.Score,
			CoinsEarned: rec.CoinsEarned,
			PlayedAt:    rec.CreatedAt,
		})
	}
	return stats, nil
}
