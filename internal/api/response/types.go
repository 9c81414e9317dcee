package response

import (
	"time"

	"github.com/mcoot/arcade-go/internal/model"
	"github.com/mcoot/arcade-go/internal/services/scoring"
	"github.com/mcoot/arcade-go/internal/services/session"
)

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}

// Game represents a catalog entry in API responses
type Game struct {
	GameID         string  `json:"game_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Difficulty     string  `json:"difficulty"`
	CoinMultiplier float64 `json:"coin_multiplier"`
	IsActive       bool    `json:"is_active"`
	PlayCount      int64   `json:"play_count"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	return Game{
		GameID:         string(g.ID),
		Name:           g.Name,
		Description:    g.Description,
		Category:       g.Category,
		Difficulty:     string(g.Difficulty),
		CoinMultiplier: g.CoinMultiplier,
		IsActive:       g.IsActive,
		PlayCount:      g.PlayCount,
	}
}

// GameList is the response for the catalog listing
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModel converts a slice of games
func GameListFromModel(games []*model.Game) GameList {
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = GameFromModel(g)
	}
	return GameList{Games: out}
}

// SessionStarted is the response for starting a session
type SessionStarted struct {
	SessionID      string  `json:"session_id"`
	GameID         string  `json:"game_id"`
	GameName       string  `json:"game_name"`
	CoinMultiplier float64 `json:"coin_multiplier"`
}

// SessionStartedFromModel converts a session.Started
func SessionStartedFromModel(s *session.Started) SessionStarted {
	return SessionStarted{
		SessionID:      string(s.SessionID),
		GameID:         string(s.GameID),
		GameName:       s.GameName,
		CoinMultiplier: s.CoinMultiplier,
	}
}

// ScoreSubmitted is the response for an accepted score
type ScoreSubmitted struct {
	ScoreID     string `json:"score_id"`
	Score       int    `json:"score"`
	CoinsEarned int    `json:"coins_earned"`
	IsHighScore bool   `json:"is_high_score"`
	Rank        *int   `json:"rank"`
}

// ScoreSubmittedFromResult converts a scoring.Result
func ScoreSubmittedFromResult(r *scoring.Result) ScoreSubmitted {
	return ScoreSubmitted{
		ScoreID:     string(r.ScoreID),
		Score:       r.Score,
		CoinsEarned: r.CoinsEarned,
		IsHighScore: r.IsHighScore,
		Rank:        r.Rank,
	}
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	Score    int       `json:"score"`
	PlayTime int       `json:"play_time"`
	PlayedAt time.Time `json:"played_at"`
}

// Leaderboard is the response for a game leaderboard
type Leaderboard struct {
	GameID   string             `json:"game_id"`
	Period   string             `json:"period"`
	Rankings []LeaderboardEntry `json:"rankings"`
	Total    int                `json:"total"`
}

// LeaderboardFromModel converts a model.Leaderboard
func LeaderboardFromModel(lb *model.Leaderboard) Leaderboard {
	rankings := make([]LeaderboardEntry, len(lb.Rankings))
	for i, e := range lb.Rankings {
		rankings[i] = LeaderboardEntry{
			Rank:     e.Rank,
			UserID:   string(e.UserID),
			Username: e.Username,
			Avatar:   e.Avatar,
			Score:    e.Score,
			PlayTime: e.PlayTimeSeconds,
			PlayedAt: e.PlayedAt,
		}
	}
	return Leaderboard{
		GameID:   string(lb.GameID),
		Period:   string(lb.Period),
		Rankings: rankings,
		Total:    lb.Total,
	}
}

// MyScore is the caller's best score for a game. A caller without a score
// gets {"score": 0, "rank": null}.
type MyScore struct {
	Score    int        `json:"score"`
	Rank     *int       `json:"rank"`
	PlayedAt *time.Time `json:"played_at,omitempty"`
	PlayTime *int       `json:"play_time,omitempty"`
}

// MyScoreFromModel converts a possibly nil model.HighScore
func MyScoreFromModel(hs *model.HighScore) MyScore {
	if hs == nil {
		return MyScore{}
	}
	rank := hs.Rank
	playedAt := hs.PlayedAt
	playTime := hs.PlayTimeSeconds
	return MyScore{
		Score:    hs.Score,
		Rank:     &rank,
		PlayedAt: &playedAt,
		PlayTime: &playTime,
	}
}

// RecentScore is one entry of a user's recent history
type RecentScore struct {
	Score       int       `json:"score"`
	CoinsEarned int       `json:"coins_earned"`
	PlayedAt    time.Time `json:"played_at"`
}

// Stats is the response for a user's per-game statistics
type Stats struct {
	GamesPlayed      int           `json:"games_played"`
	HighScore        int           `json:"high_score"`
	TotalCoinsEarned int           `json:"total_coins_earned"`
	AverageScore     int           `json:"average_score"`
	RecentScores     []RecentScore `json:"recent_scores"`
}

// StatsFromModel converts model.UserStats
func StatsFromModel(s *model.UserStats) Stats {
	recent := make([]RecentScore, len(s.RecentScores))
	for i, r := range s.RecentScores {
		recent[i] = RecentScore{Score: r.Score, CoinsEarned: r.CoinsEarned, PlayedAt: r.PlayedAt}
	}
	return Stats{
		GamesPlayed:      s.GamesPlayed,
		HighScore:        s.HighScore,
		TotalCoinsEarned: s.TotalCoinsEarned,
		AverageScore:     s.AverageScore,
		RecentScores:     recent,
	}
}
