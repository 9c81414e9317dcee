package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	case GameList:
		o.printGameList(v)
	case Game:
		o.printGame(v)
	case SessionStarted:
		o.printSessionStarted(v)
	case ScoreResult:
		o.printScoreResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case MyScore:
		o.printMyScore(v)
	case Stats:
		o.printStats(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Game response type (matches API)
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

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// SessionStarted response type
type SessionStarted struct {
	SessionID      string  `json:"session_id"`
	GameID         string  `json:"game_id"`
	GameName       string  `json:"game_name"`
	CoinMultiplier float64 `json:"coin_multiplier"`
}

// ScoreResult response type
type ScoreResult struct {
	ScoreID     string `json:"score_id"`
	Score       int    `json:"score"`
	CoinsEarned int    `json:"coins_earned"`
	IsHighScore bool   `json:"is_high_score"`
	Rank        *int   `json:"rank"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	PlayTime int       `json:"play_time"`
	PlayedAt time.Time `json:"played_at"`
}

// Leaderboard response type
type Leaderboard struct {
	GameID   string             `json:"game_id"`
	Period   string             `json:"period"`
	Rankings []LeaderboardEntry `json:"rankings"`
	Total    int                `json:"total"`
}

// MyScore response type
type MyScore struct {
	Score    int        `json:"score"`
	Rank     *int       `json:"rank"`
	PlayedAt *time.Time `json:"played_at,omitempty"`
	PlayTime *int       `json:"play_time,omitempty"`
}

// RecentScore response type
type RecentScore struct {
	Score       int       `json:"score"`
	CoinsEarned int       `json:"coins_earned"`
	PlayedAt    time.Time `json:"played_at"`
}

// Stats response type
type Stats struct {
	GamesPlayed      int           `json:"games_played"`
	HighScore        int           `json:"high_score"`
	TotalCoinsEarned int           `json:"total_coins_earned"`
	AverageScore     int           `json:"average_score"`
	RecentScores     []RecentScore `json:"recent_scores"`
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		o.printf("No games available\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDIFFICULTY\tMULTIPLIER\tPLAYS")
	for _, g := range l.Games {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\tx%g\t%d\n",
			g.GameID, g.Name, g.Category, g.Difficulty, g.CoinMultiplier, g.PlayCount)
	}
	_ = tw.Flush()
}

func (o *Output) printGame(g Game) {
	o.printf("Game: %s (%s)\n", g.Name, g.GameID)
	if g.Description != "" {
		o.printf("Description: %s\n", g.Description)
	}
	o.printf("Category: %s\n", g.Category)
	o.printf("Difficulty: %s\n", g.Difficulty)
	o.printf("Coin Multiplier: x%g\n", g.CoinMultiplier)
	o.printf("Active: %t\n", g.IsActive)
	o.printf("Plays: %d\n", g.PlayCount)
}

func (o *Output) printSessionStarted(s SessionStarted) {
	o.printf("Session: %s\n", s.SessionID)
	o.printf("Game: %s (%s)\n", s.GameName, s.GameID)
	o.printf("Coin Multiplier: x%g\n", s.CoinMultiplier)
}

func (o *Output) printScoreResult(r ScoreResult) {
	o.printf("Score: %d\n", r.Score)
	o.printf("Coins Earned: %d\n", r.CoinsEarned)
	if r.IsHighScore {
		o.printf("New high score!\n")
	}
	if r.Rank != nil {
		o.printf("Rank: #%d\n", *r.Rank)
	}
}

func (o *Output) printLeaderboard(lb Leaderboard) {
	o.printf("Leaderboard: %s (%s)\n", lb.GameID, lb.Period)
	if len(lb.Rankings) == 0 {
		o.printf("No scores yet\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tTIME\tPLAYED")
	for _, e := range lb.Rankings {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%ds\t%s\n",
			e.Rank, e.Username, e.Score, e.PlayTime, e.PlayedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func (o *Output) printMyScore(m MyScore) {
	if m.Rank == nil {
		o.printf("No score yet\n")
		return
	}
	o.printf("High Score: %d\n", m.Score)
	o.printf("Rank: #%d\n", *m.Rank)
	if m.PlayedAt != nil {
		o.printf("Played: %s\n", m.PlayedAt.Local().Format("2006-01-02 15:04"))
	}
}

func (o *Output) printStats(s Stats) {
	o.printf("Games Played: %d\n", s.GamesPlayed)
	o.printf("High Score: %d\n", s.HighScore)
	o.printf("Average Score: %d\n", s.AverageScore)
	o.printf("Coins Earned: %d\n", s.TotalCoinsEarned)
	if len(s.RecentScores) > 0 {
		o.printf("\nRecent:\n")
		for _, r := range s.RecentScores {
			o.printf("  %s  %d (+%d coins)\n", r.PlayedAt.Local().Format("2006-01-02 15:04"), r.Score, r.CoinsEarned)
		}
	}
}
