package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

// uniqueViolation is the SQLSTATE raised when the partial high-score index rejects a second flag
const uniqueViolation = "23505"

// Config holds Postgres connection settings
type Config struct {
	// URL is a libpq-style connection string or postgres:// URL
	URL      string
	MaxConns int32
}

// DefaultConfig returns sensible defaults for Postgres configuration
func DefaultConfig() Config {
	return Config{
		URL:      "postgres://localhost:5432/arcade?sslmode=disable",
		MaxConns: 10,
	}
}

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and ensures the schema exists
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Catalog operations

const gameColumns = `game_id, name, description, category, difficulty, coin_multiplier, is_active, play_count, created_at, updated_at`

// SaveGame upserts the definition. play_count and created_at are only set on
// insert; afterwards IncrementPlayCount owns the counter.
func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			difficulty = EXCLUDED.difficulty,
			coin_multiplier = EXCLUDED.coin_multiplier,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`,
		string(game.ID), game.Name, game.Description, game.Category, string(game.Difficulty),
		game.CoinMultiplier, game.IsActive, game.PlayCount, game.CreatedAt, game.UpdatedAt,
	)
	return err
}

func scanGame(row pgx.Row) (*model.Game, error) {
	var (
		g              model.Game
		id, difficulty string
	)
	err := row.Scan(&id, &g.Name, &g.Description, &g.Category, &difficulty,
		&g.CoinMultiplier, &g.IsActive, &g.PlayCount, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.ID = model.GameID(id)
	g.Difficulty = model.Difficulty(difficulty)
	return &g, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE game_id = $1`, string(id))
	game, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	return game, err
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+gameColumns+` FROM games ORDER BY game_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Game, error) {
		return scanGame(row)
	})
}

func (s *Storage) IncrementPlayCount(ctx context.Context, id model.GameID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE games SET play_count = play_count + 1 WHERE game_id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGameNotFound
	}
	return nil
}

// Session operations

const sessionColumns = `session_id, user_id, game_id, start_time, end_time, status`

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			status = EXCLUDED.status`,
		string(session.ID), string(session.UserID), string(session.GameID),
		session.StartTime, session.EndTime, string(session.Status),
	)
	return err
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var (
		sess                       model.Session
		id, userID, gameID, status string
	)
	if err := row.Scan(&id, &userID, &gameID, &sess.StartTime, &sess.EndTime, &status); err != nil {
		return nil, err
	}
	sess.ID = model.SessionID(id)
	sess.UserID = model.UserID(userID)
	sess.GameID = model.GameID(gameID)
	sess.Status = model.SessionStatus(status)
	return &sess, nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE session_id = $1`, string(id))
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	return session, err
}

func (s *Storage) EndSession(ctx context.Context, id model.SessionID, status model.SessionStatus, endTime time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE game_sessions SET status = $2, end_time = $3 WHERE session_id = $1 AND status = 'active'`,
		string(id), string(status), endTime,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM game_sessions WHERE session_id = $1)`, string(id),
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, model.ErrSessionNotFound
	}
	return false, nil
}

func (s *Storage) ListActiveSessions(ctx context.Context, startedBefore time.Time) ([]*model.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE status = 'active' AND start_time < $1`,
		startedBefore,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Session, error) {
		return scanSession(row)
	})
}

// Score operations

const scoreColumns = `id, user_id, game_id, username, avatar, score, play_time, coins_earned, gameplay_data, is_high_score, session_id, created_at`

func scanScore(row pgx.Row) (*model.ScoreRecord, error) {
	var (
		rec                model.ScoreRecord
		id, userID, gameID string
		payload            []byte
		sessionID          *string
	)
	err := row.Scan(&id, &userID, &gameID, &rec.Username, &rec.Avatar, &rec.Score,
		&rec.PlayTimeSeconds, &rec.CoinsEarned, &payload, &rec.IsHighScore, &sessionID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.ID = model.ScoreID(id)
	rec.UserID = model.UserID(userID)
	rec.GameID = model.GameID(gameID)
	rec.GameplayPayload = payload
	if sessionID != nil {
		rec.SessionID = model.SessionID(*sessionID)
	}
	return &rec, nil
}

// AppendScore serializes writers for the pair with a transaction-scoped
// advisory lock, then moves the flag and inserts in the same transaction.
// The partial unique index backs the single-flag invariant.
func (s *Storage) AppendScore(ctx context.Context, record *model.ScoreRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockKey := string(record.GameID) + "\x00" + string(record.UserID)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return err
	}

	var (
		prevID    string
		prevScore int
		prev      *model.ScoreRecord
	)
	err = tx.QueryRow(ctx,
		`SELECT id, score FROM game_scores WHERE user_id = $1 AND game_id = $2 AND is_high_score`,
		string(record.UserID), string(record.GameID),
	).Scan(&prevID, &prevScore)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return err
	default:
		prev = &model.ScoreRecord{ID: model.ScoreID(prevID), Score: prevScore}
	}

	record.IsHighScore = record.Beats(prev)

	if record.IsHighScore && prev != nil {
		if _, err := tx.Exec(ctx, `UPDATE game_scores SET is_high_score = FALSE WHERE id = $1`, prevID); err != nil {
			return err
		}
	}

	var payload []byte
	if len(record.GameplayPayload) > 0 {
		payload = record.GameplayPayload
	}
	var sessionID *string
	if record.SessionID != "" {
		id := string(record.SessionID)
		sessionID = &id
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO game_scores (`+scoreColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(record.ID), string(record.UserID), string(record.GameID), record.Username, record.Avatar,
		record.Score, record.PlayTimeSeconds, record.CoinsEarned, payload, record.IsHighScore,
		sessionID, record.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}

	return mapWriteError(tx.Commit(ctx))
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrHighScoreConflict
	}
	return err
}

func (s *Storage) GetScore(ctx context.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scoreColumns+` FROM game_scores WHERE id = $1`, string(id))
	rec, err := scanScore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrScoreNotFound
	}
	return rec, err
}

func (s *Storage) GetHighScore(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.ScoreRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+scoreColumns+` FROM game_scores WHERE user_id = $1 AND game_id = $2 AND is_high_score`,
		string(userID), string(gameID),
	)
	rec, err := scanScore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrHighScoreNotFound
	}
	return rec, err
}

func (s *Storage) CountHighScoresAbove(ctx context.Context, gameID model.GameID, score int) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM game_scores WHERE game_id = $1 AND is_high_score AND score > $2`,
		string(gameID), score,
	).Scan(&n)
	return n, err
}

func (s *Storage) ListScoresForGame(ctx context.Context, gameID model.GameID, since time.Time) ([]*model.ScoreRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if since.IsZero() {
		rows, err = s.pool.Query(ctx, `SELECT `+scoreColumns+` FROM game_scores WHERE game_id = $1`, string(gameID))
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+scoreColumns+` FROM game_scores WHERE game_id = $1 AND created_at >= $2`,
			string(gameID), since,
		)
	}
	if err != nil {
		return nil, err
	}
	return collectScores(rows)
}

func (s *Storage) ListScoresForUser(ctx context.Context, userID model.UserID, gameID model.GameID) ([]*model.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+scoreColumns+` FROM game_scores WHERE user_id = $1 AND game_id = $2`,
		string(userID), string(gameID),
	)
	if err != nil {
		return nil, err
	}
	return collectScores(rows)
}

func collectScores(rows pgx.Rows) ([]*model.ScoreRecord, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.ScoreRecord, error) {
		return scanScore(row)
	})
}
