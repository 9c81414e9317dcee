package leaderboard

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mcoot/arcade-go/internal/dependencies/clock"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

const (
	// DefaultLimit is used when the caller asks for a non-positive limit
	DefaultLimit = 50
	// MaxLimit is the largest limit the API accepts
	MaxLimit = 200
)

// Service builds ranked leaderboards from score history
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

// New creates a new leaderboard service. location decides where "today" starts.
func New(storage storage.Storage, clock clock.Clock, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}

// Leaderboard returns each user's best score in the period, best first.
// An unknown game yields an empty board.
func (s *Service) Leaderboard(ctx context.Context, gameID model.GameID, period model.Period, limit int) (*model.Leaderboard, error) {
	since, err := WindowStart(s.clock.Now(), period, s.location)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	records, err := s.storage.ListScoresForGame(ctx, gameID, since)
	if err != nil {
		return nil, err
	}

	rankings := Aggregate(records, limit)
	s.logger.Debug("leaderboard built",
		slog.String("game_id", string(gameID)),
		slog.String("period", string(period)),
		slog.Int("records", len(records)),
		slog.Int("entries", len(rankings)),
	)

	return &model.Leaderboard{
		GameID:   gameID,
		Period:   period,
		Rankings: rankings,
		Total:    len(rankings),
	}, nil
}

// WindowStart returns the earliest creation time included in period.
// The zero time means no lower bound.
func WindowStart(now time.Time, period model.Period, loc *time.Location) (time.Time, error) {
	switch period {
	case model.PeriodToday:
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), nil
	case model.PeriodWeek:
		return now.Add(-7 * 24 * time.Hour), nil
	case model.PeriodMonth:
		return now.AddDate(0, -1, 0), nil
	case model.PeriodAllTime:
		return time.Time{}, nil
	default:
		return time.Time{}, model.ErrInvalidPeriod
	}
}

// Aggregate keeps each user's best record (highest score, earliest on ties),
// orders them by score descending then by when the score was set, and
// assigns distinct 1-based ranks up to limit
func Aggregate(records []*model.ScoreRecord, limit int) []model.LeaderboardEntry {
	best := make(map[model.UserID]*model.ScoreRecord)
	for _, rec := range records {
		cur, ok := best[rec.UserID]
		if !ok || rec.Score > cur.Score || (rec.Score == cur.Score && rec.CreatedAt.Before(cur.CreatedAt)) {
			best[rec.UserID] = rec
		}
	}

	sorted := make([]*model.ScoreRecord, 0, len(best))
	for _, rec := range best {
		sorted = append(sorted, rec)
	}
	slices.SortFunc(sorted, func(a, b *model.ScoreRecord) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.UserID), string(b.UserID))
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]model.LeaderboardEntry, len(sorted))
	for i, rec := range sorted {
		entries[i] = model.LeaderboardEntry{
			Rank:            i + 1,
			UserID:          rec.UserID,
			Username:        rec.Username,
			Avatar:          rec.Avatar,
			Score:           rec.Score,
			PlayTimeSeconds: rec.PlayTimeSeconds,
			PlayedAt:        rec.CreatedAt,
		}
	}
	return entries
}
