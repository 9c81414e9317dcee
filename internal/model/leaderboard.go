package model

import "time"

// Period selects the leaderboard time window
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodAllTime Period = "alltime"
)

// ParsePeriod parses a period name. An empty string means all time.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAllTime, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAllTime:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// LeaderboardEntry is one user's best record within a window
type LeaderboardEntry struct {
	Rank            int
	UserID          UserID
	Username        string
	Avatar          string
	Score           int
	PlayTimeSeconds int
	PlayedAt        time.Time
}

// Leaderboard is the ranked view of a game for a period
type Leaderboard struct {
	GameID   GameID
	Period   Period
	Rankings []LeaderboardEntry
	Total    int
}

// HighScore is a user's best record for a game along with its current rank
type HighScore struct {
	Score           int
	Rank            int
	PlayedAt        time.Time
	PlayTimeSeconds int
}

// RecentScore is a compact view of a past record
type RecentScore struct {
	Score       int
	CoinsEarned int
	PlayedAt    time.Time
}

// UserStats summarizes a user's history for one game
type UserStats struct {
	GamesPlayed      int
	HighScore        int
	TotalCoinsEarned int
	AverageScore     int
	RecentScores     []RecentScore
}
