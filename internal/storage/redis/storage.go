package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Catalog operations

// SaveGame writes the game definition. The play counter lives in its own hash
// and is only initialised here, so a concurrent HINCRBY is never overwritten.
func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	key := gameKey(game.ID)

	txf := func(tx *redis.Tx) error {
		stored := *game
		existing, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var prev model.Game
			if err := json.Unmarshal(existing, &prev); err != nil {
				return err
			}
			stored.CreatedAt = prev.CreatedAt
		case !errors.Is(err, redis.Nil):
			return err
		}

		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, gamesIndexKey(), string(game.ID))
			pipe.HSetNX(ctx, playCountsKey(), string(game.ID), game.PlayCount)
			return nil
		})
		return err
	}
	return s.watch(ctx, txf, key)
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	pipe := s.client.Pipeline()
	dataCmd := pipe.Get(ctx, gameKey(id))
	playsCmd := pipe.HGet(ctx, playCountsKey(), string(id))
	_, _ = pipe.Exec(ctx)

	data, err := dataCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	plays, err := playsCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	game.PlayCount = plays
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gamesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	plays, err := s.client.HGetAll(ctx, playCountsKey()).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // Index entry without a game
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			return nil, err
		}
		if n, err := strconv.ParseInt(plays[string(game.ID)], 10, 64); err == nil {
			game.PlayCount = n
		}
		games = append(games, &game)
	}
	return games, nil
}

func (s *Storage) IncrementPlayCount(ctx context.Context, id model.GameID) error {
	exists, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrGameNotFound
	}
	return s.client.HIncrBy(ctx, playCountsKey(), string(id), 1).Err()
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	if session.IsActive() {
		pipe.Set(ctx, sessionKey(session.ID), data, 0)
		pipe.ZAdd(ctx, activeSessionsKey(), redis.Z{
			Score:  float64(session.StartTime.UnixMilli()),
			Member: string(session.ID),
		})
	} else {
		pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.EndedSessionTTL)
		pipe.ZRem(ctx, activeSessionsKey(), string(session.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// EndSession watches the session key so a concurrent close and reap cannot
// both win.
func (s *Storage) EndSession(ctx context.Context, id model.SessionID, status model.SessionStatus, endTime time.Time) (bool, error) {
	key := sessionKey(id)
	ended := false

	txf := func(tx *redis.Tx) error {
		ended = false
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrSessionNotFound
			}
			return err
		}

		var session model.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if !session.IsActive() {
			return nil
		}
		session.Status = status
		session.EndTime = &endTime
		if data, err = json.Marshal(session); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.EndedSessionTTL)
			pipe.ZRem(ctx, activeSessionsKey(), string(id))
			return nil
		})
		if err == nil {
			ended = true
		}
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return false, err
	}
	return ended, nil
}

// watch runs txf as an optimistic transaction, retrying aborted attempts
func (s *Storage) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return model.ErrWriteConflict
}

func (s *Storage) ListActiveSessions(ctx context.Context, startedBefore time.Time) ([]*model.Session, error) {
	ids, err := s.client.ZRangeByScore(ctx, activeSessionsKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(startedBefore.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(model.SessionID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*model.Session
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(str), &session); err != nil {
			return nil, err
		}
		if session.IsActive() && session.StartTime.Before(startedBefore) {
			sessions = append(sessions, &session)
		}
	}
	return sessions, nil
}

// Score operations

// AppendScore runs the high-score compare-and-swap as an optimistic
// transaction on the pair's high-score pointer. A concurrent writer for the
// same pair aborts the EXEC and the attempt is retried.
func (s *Storage) AppendScore(ctx context.Context, record *model.ScoreRecord) error {
	hsKey := highScoreKey(record.GameID, record.UserID)

	txf := func(tx *redis.Tx) error {
		prev, err := s.loadHighScore(ctx, tx, record.UserID, record.GameID)
		if err != nil {
			return err
		}

		record.IsHighScore = record.Beats(prev)

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		var prevData []byte
		if record.IsHighScore && prev != nil {
			prev.IsHighScore = false
			if prevData, err = json.Marshal(prev); err != nil {
				return err
			}
		}

		created := float64(record.CreatedAt.UnixMilli())
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, scoreKey(record.ID), data, 0)
			pipe.ZAdd(ctx, gameScoresKey(record.GameID), redis.Z{Score: created, Member: string(record.ID)})
			pipe.ZAdd(ctx, userScoresKey(record.GameID, record.UserID), redis.Z{Score: created, Member: string(record.ID)})
			if record.IsHighScore {
				if prevData != nil {
					pipe.Set(ctx, scoreKey(prev.ID), prevData, 0)
				}
				pipe.Set(ctx, hsKey, string(record.ID), 0)
				pipe.ZAdd(ctx, highScoresKey(record.GameID), redis.Z{Score: float64(record.Score), Member: string(record.UserID)})
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, hsKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return model.ErrHighScoreConflict
}

func (s *Storage) loadHighScore(ctx context.Context, c redis.Cmdable, userID model.UserID, gameID model.GameID) (*model.ScoreRecord, error) {
	id, err := c.Get(ctx, highScoreKey(gameID, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return s.getScore(ctx, c, model.ScoreID(id))
}

func (s *Storage) getScore(ctx context.Context, c redis.Cmdable, id model.ScoreID) (*model.ScoreRecord, error) {
	data, err := c.Get(ctx, scoreKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrScoreNotFound
		}
		return nil, err
	}

	var rec model.ScoreRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) GetScore(ctx context.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	return s.getScore(ctx, s.client, id)
}

func (s *Storage) GetHighScore(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.ScoreRecord, error) {
	rec, err := s.loadHighScore(ctx, s.client, userID, gameID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, model.ErrHighScoreNotFound
	}
	return rec, nil
}

func (s *Storage) CountHighScoresAbove(ctx context.Context, gameID model.GameID, score int) (int, error) {
	n, err := s.client.ZCount(ctx, highScoresKey(gameID), "("+strconv.Itoa(score), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) ListScoresForGame(ctx context.Context, gameID model.GameID, since time.Time) ([]*model.ScoreRecord, error) {
	lower := "-inf"
	if !since.IsZero() {
		lower = strconv.FormatInt(since.UnixMilli(), 10)
	}
	ids, err := s.client.ZRangeByScore(ctx, gameScoresKey(gameID), &redis.ZRangeBy{Min: lower, Max: "+inf"}).Result()
	if err != nil {
		return nil, err
	}

	recs, err := s.loadScores(ctx, ids)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return recs, nil
	}

	// The index has millisecond resolution
	filtered := recs[:0]
	for _, rec := range recs {
		if !rec.CreatedAt.Before(since) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (s *Storage) ListScoresForUser(ctx context.Context, userID model.UserID, gameID model.GameID) ([]*model.ScoreRecord, error) {
	ids, err := s.client.ZRange(ctx, userScoresKey(gameID, userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.loadScores(ctx, ids)
}

func (s *Storage) loadScores(ctx context.Context, ids []string) ([]*model.ScoreRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scoreKey(model.ScoreID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	recs := make([]*model.ScoreRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec model.ScoreRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}
