package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
	"github.com/mcoot/arcade-go/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(*testing.T) storage.Storage { return New() },
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := &model.ScoreRecord{
		ID:              "r1",
		UserID:          "u1",
		GameID:          "g",
		Score:           10,
		GameplayPayload: json.RawMessage(`{"a":1}`),
		CreatedAt:       time.Now(),
	}
	require.NoError(t, s.AppendScore(ctx, rec))

	got, err := s.GetScore(ctx, "r1")
	require.NoError(t, err)
	got.Score = 9999
	got.GameplayPayload[2] = 'b'

	again, err := s.GetScore(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Score)
	assert.JSONEq(t, `{"a":1}`, string(again.GameplayPayload))
}
