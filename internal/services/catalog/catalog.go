package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/mcoot/arcade-go/internal/dependencies/clock"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

// DefaultGames returns the catalog seeded when no catalog file is configured
func DefaultGames() []model.Game {
	return []model.Game{
		{
			ID:             "egg-catch",
			Name:           "Egg Catch",
			Description:    "Catch falling eggs and avoid bombs!",
			Category:       "arcade",
			Difficulty:     model.DifficultyEasy,
			CoinMultiplier: 1,
			IsActive:       true,
		},
	}
}

// gameFile is the on-disk shape of a catalog entry
type gameFile struct {
	ID             string  `json:"game_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Difficulty     string  `json:"difficulty"`
	CoinMultiplier float64 `json:"coin_multiplier"`
	IsActive       *bool   `json:"is_active"`
}

// LoadFile reads a JSON array of catalog entries. Entries default to active.
func LoadFile(path string) ([]model.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []gameFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	games := make([]model.Game, 0, len(entries))
	for _, e := range entries {
		active := true
		if e.IsActive != nil {
			active = *e.IsActive
		}
		games = append(games, model.Game{
			ID:             model.GameID(e.ID),
			Name:           e.Name,
			Description:    e.Description,
			Category:       e.Category,
			Difficulty:     model.Difficulty(strings.ToLower(e.Difficulty)),
			CoinMultiplier: e.CoinMultiplier,
			IsActive:       active,
		})
	}
	return games, nil
}

// Validate checks a catalog entry before it is stored
func Validate(g model.Game) error {
	switch {
	case strings.TrimSpace(string(g.ID)) == "":
		return fmt.Errorf("%w: game id is empty", model.ErrInvalidGame)
	case strings.TrimSpace(g.Name) == "":
		return fmt.Errorf("%w: game %s has no name", model.ErrInvalidGame, g.ID)
	case !g.Difficulty.Valid():
		return fmt.Errorf("%w: game %s has unknown difficulty %q", model.ErrInvalidGame, g.ID, g.Difficulty)
	case math.IsNaN(g.CoinMultiplier) || math.IsInf(g.CoinMultiplier, 0) || g.CoinMultiplier < 0:
		return fmt.Errorf("%w: game %s has invalid coin multiplier %v", model.ErrInvalidGame, g.ID, g.CoinMultiplier)
	}
	return nil
}

// Service manages the game catalog
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new catalog service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Seed upserts the given games by ID. Existing entries keep their play count
// and creation time; everything else is replaced.
func (s *Service) Seed(ctx context.Context, games []model.Game) error {
	for _, g := range games {
		if err := Validate(g); err != nil {
			return err
		}
	}

	now := s.clock.Now()
	for _, g := range games {
		// Storage keeps the play count and creation time of games it already holds
		g.PlayCount = 0
		g.CreatedAt = now
		g.UpdatedAt = now

		if err := s.storage.SaveGame(ctx, &g); err != nil {
			return err
		}
		s.logger.Info("catalog game seeded",
			slog.String("game_id", string(g.ID)),
			slog.Bool("active", g.IsActive),
		)
	}
	return nil
}

// Get returns a game whether or not it is active
func (s *Service) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// GetActive returns a game only if it is active
func (s *Service) GetActive(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.IsActive {
		return nil, model.ErrGameInactive
	}
	return game, nil
}

// List returns the catalog sorted by game ID
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.Game, error) {
	games, err := s.storage.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		games = slices.DeleteFunc(games, func(g *model.Game) bool { return !g.IsActive })
	}
	slices.SortFunc(games, func(a, b *model.Game) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return games, nil
}

// SetActive activates or deactivates a game. Games are never deleted.
func (s *Service) SetActive(ctx context.Context, id model.GameID, active bool) error {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.IsActive == active {
		return nil
	}
	game.IsActive = active
	game.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveGame(ctx, game); err != nil {
		return err
	}
	s.logger.Info("catalog game availability changed",
		slog.String("game_id", string(id)),
		slog.Bool("active", active),
	)
	return nil
}
