package postgres

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS games (
	game_id         TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	difficulty      TEXT NOT NULL DEFAULT 'easy',
	coin_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	play_count      BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS game_sessions (
	session_id TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	game_id    TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time   TIMESTAMPTZ,
	status     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_sessions_active ON game_sessions(start_time) WHERE status = 'active';
CREATE TABLE IF NOT EXISTS game_scores (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	game_id       TEXT NOT NULL,
	username      TEXT NOT NULL DEFAULT '',
	avatar        TEXT NOT NULL DEFAULT '',
	score         INT NOT NULL,
	play_time     INT NOT NULL,
	coins_earned  INT NOT NULL DEFAULT 0,
	gameplay_data JSONB,
	is_high_score BOOLEAN NOT NULL DEFAULT FALSE,
	session_id    TEXT,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_scores_game_score ON game_scores(game_id, score DESC);
CREATE INDEX IF NOT EXISTS idx_game_scores_game_created ON game_scores(game_id, created_at);
CREATE INDEX IF NOT EXISTS idx_game_scores_user_game ON game_scores(user_id, game_id, score DESC);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_game_scores_high_score ON game_scores(user_id, game_id) WHERE is_high_score;
`
