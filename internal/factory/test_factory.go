package factory

import (
	"context"
	"time"

	"github.com/mcoot/arcade-go/internal/dependencies/mocks"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/scoring"
	"github.com/mcoot/arcade-go/internal/storage/memory"
	"github.com/mcoot/arcade-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockIDs     *mocks.MockIDs
	MockWallet  *mocks.MockCrediter
	MemoryStore *memory.Storage
}

// NewTestApp creates an App on memory storage with a mocked clock, ID
// generator and wallet. Credits are recorded synchronously.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	mockWallet := mocks.NewMockCrediter()

	app := newWithDependencies(store, mockClock, mockIDs, mockWallet, scoring.DefaultConfig(), time.UTC, testutil.NopLogger())

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockIDs:     mockIDs,
		MockWallet:  mockWallet,
		MemoryStore: store,
	}
}

// SeedTestCatalog loads a small catalog: two active games and one inactive
func (t *TestApp) SeedTestCatalog(ctx context.Context) error {
	games := []model.Game{
		{ID: "egg-catch", Name: "Egg Catch", Category: "arcade", Difficulty: model.DifficultyEasy, CoinMultiplier: 1, IsActive: true},
		{ID: "snake", Name: "Snake", Category: "arcade", Difficulty: model.DifficultyMedium, CoinMultiplier: 0.57, IsActive: true},
		{ID: "retired", Name: "Retired", Category: "puzzle", Difficulty: model.DifficultyHard, CoinMultiplier: 2, IsActive: false},
	}
	return t.Catalog.Seed(ctx, games)
}
