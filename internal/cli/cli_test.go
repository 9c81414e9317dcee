package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arcade-go/internal/api"
	"github.com/mcoot/arcade-go/internal/factory"
	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/identity"
	"github.com/mcoot/arcade-go/internal/testutil"
)

const testSecret = "cli-secret"

type cliHarness struct {
	t         *testing.T
	serverURL string
	tokenFile string
	app       *factory.TestApp
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()

	app := factory.NewTestApp()
	require.NoError(t, app.SeedTestCatalog(t.Context()))

	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Verifier:    identity.NewHMACVerifier(testSecret),
		Catalog:     app.Catalog,
		Sessions:    app.Sessions,
		Scoring:     app.Scoring,
		Leaderboard: app.Leaderboard,
		Ranking:     app.Ranking,
		Stats:       app.Stats,
		HubManager:  app.HubManager,

		AdminUserIDs: []model.UserID{"admin"},
	}))
	t.Cleanup(server.Close)
	t.Cleanup(app.HubManager.Close)

	return &cliHarness{
		t:         t,
		serverURL: server.URL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
		app:       app,
	}
}

// run executes the CLI in-process and returns stdout
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{
		"--server", h.serverURL,
		"--token-file", h.tokenFile,
	}, args...))

	err := root.Execute()
	return stdout.String(), err
}

func (h *cliHarness) login(userID, username string) {
	h.t.Helper()
	token := testutil.SignToken(h.t, testSecret, jwt.MapClaims{"userId": userID, "username": username})
	_, err := h.run("auth", "set-token", token)
	require.NoError(h.t, err)
}

func TestCLI_Health(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("health")
	require.NoError(t, err)
	assert.Equal(t, "Status: ok\n", out)

	out, err = h.run("-o", "json", "health")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, out)
}

func TestCLI_GamesListAndShow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("-o", "json", "games", "list")
	require.NoError(t, err)
	var list GameList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Games, 2)

	out, err = h.run("games", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "egg-catch")
	assert.Contains(t, out, "Egg Catch")
	assert.NotContains(t, out, "retired")

	out, err = h.run("games", "show", "snake")
	require.NoError(t, err)
	assert.Contains(t, out, "Game: Snake (snake)")
	assert.Contains(t, out, "Coin Multiplier: x0.57")
}

func TestCLI_GamesActivateAndDeactivate(t *testing.T) {
	h := newHarness(t)

	h.login("alice", "Alice")
	_, err := h.run("games", "deactivate", "snake")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, 403, apiErr.Status)

	h.login("admin", "ops")
	out, err := h.run("-o", "json", "games", "activate", "retired")
	require.NoError(t, err)
	var game Game
	require.NoError(t, json.Unmarshal([]byte(out), &game))
	assert.Equal(t, "retired", game.GameID)
	assert.True(t, game.IsActive)

	_, err = h.run("games", "deactivate", "snake")
	require.NoError(t, err)

	out, err = h.run("games", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "retired")
	assert.NotContains(t, out, "snake")
}

func TestCLI_APIErrorsAreTyped(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("games", "show", "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, "GAME_NOT_FOUND", apiErr.Code)

	_, err = h.run("session", "start", "egg-catch")
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestCLI_PlayFlow(t *testing.T) {
	h := newHarness(t)
	h.login("alice", "Alice")

	data, err := os.ReadFile(h.tokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(data)))

	out, err := h.run("-o", "json", "session", "start", "egg-catch")
	require.NoError(t, err)
	var started SessionStarted
	require.NoError(t, json.Unmarshal([]byte(out), &started))
	require.NotEmpty(t, started.SessionID)

	out, err = h.run("-o", "json", "score", "submit", "egg-catch",
		"--score", "420", "--play-time", "95",
		"--session", started.SessionID, "--data", `{"eggs":42}`)
	require.NoError(t, err)
	var result ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 42, result.CoinsEarned)
	assert.True(t, result.IsHighScore)
	require.NotNil(t, result.Rank)
	assert.Equal(t, 1, *result.Rank)

	out, err = h.run("leaderboard", "egg-catch", "--period", "alltime", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Leaderboard: egg-catch (alltime)")
	assert.Contains(t, out, "Alice")

	out, err = h.run("my-score", "egg-catch")
	require.NoError(t, err)
	assert.Contains(t, out, "High Score: 420")
	assert.Contains(t, out, "Rank: #1")

	out, err = h.run("-o", "json", "stats", "egg-catch")
	require.NoError(t, err)
	var st Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.GamesPlayed)
	assert.Equal(t, 42, st.TotalCoinsEarned)
}

func TestCLI_ScoreSubmitValidatesData(t *testing.T) {
	h := newHarness(t)
	h.login("alice", "Alice")

	_, err := h.run("score", "submit", "egg-catch", "--score", "1", "--play-time", "1", "--data", "{oops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--data must be valid JSON")

	_, err = h.run("score", "submit", "egg-catch", "--play-time", "1")
	require.Error(t, err)
}

func TestCLI_AuthClear(t *testing.T) {
	h := newHarness(t)
	h.login("alice", "Alice")

	out, err := h.run("auth", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Token cleared\n", out)

	_, err = os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_AuthWhoami(t *testing.T) {
	h := newHarness(t)
	h.login("alice", "Alice")

	out, err := h.run("auth", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Alice (alice)\n", out)
}

func TestCLI_SetTokenRejectsMalformed(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("auth", "set-token", "not-a-jwt")
	require.Error(t, err)

	_, statErr := os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInspectToken(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := testutil.SignToken(t, "any-secret", jwt.MapClaims{
		"sub":      "u-9",
		"username": "Nine",
		"exp":      exp.Unix(),
	})

	info, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-9", info.Subject)
	assert.Equal(t, "Nine", info.Username)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, exp.Equal(*info.ExpiresAt))
}

func TestCLI_RejectsUnknownOutput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("-o", "yaml", "health")
	require.Error(t, err)
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, "score-submitted", `{"username":"Alice","score":640,"is_high_score":true,"rank":3}`, false)
	assert.Contains(t, buf.String(), "Alice scored 640 (rank #3) - new personal best")

	buf.Reset()
	printEvent(&buf, "connected", `{"status":"connected"}`, true)
	var evt SSEEvent
	require.NoError(t, json.Unmarshal(buf.Bytes(), &evt))
	assert.Equal(t, "connected", evt.Event)
}
