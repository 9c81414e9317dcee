package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcade-go/internal/storage"
	"github.com/mcoot/arcade-go/internal/storage/storagetest"
)

// testDatabaseEnv names a disposable database; its tables are truncated before every test
const testDatabaseEnv = "ARCADE_TEST_DATABASE_URL"

func TestStorageSuite(t *testing.T) {
	url := os.Getenv(testDatabaseEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}

	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			ctx := context.Background()
			cfg := DefaultConfig()
			cfg.URL = url

			s, err := New(ctx, cfg)
			require.NoError(t, err)

			_, err = s.pool.Exec(ctx, `TRUNCATE games, game_sessions, game_scores`)
			require.NoError(t, err)
			return s
		},
	})
}
