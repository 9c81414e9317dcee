package redis

import (
	"fmt"

	"github.com/mcoot/arcade-go/internal/model"
)

// Key prefix for all arcade data
const keyPrefix = "arcade"

// gameKey returns the Redis key for a Game (JSON, without its play count)
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of all game IDs
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// playCountsKey returns the Redis key for the HASH of game ID -> play count
func playCountsKey() string {
	return fmt.Sprintf("%s:game_plays", keyPrefix)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// activeSessionsKey returns the Redis key for the ZSET of active session IDs scored by start time
func activeSessionsKey() string {
	return fmt.Sprintf("%s:idx:active_sessions", keyPrefix)
}

// scoreKey returns the Redis key for a ScoreRecord
func scoreKey(id model.ScoreID) string {
	return fmt.Sprintf("%s:score:%s", keyPrefix, id)
}

// gameScoresKey returns the Redis key for the ZSET of a game's score IDs scored by creation time
func gameScoresKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:game_scores:%s", keyPrefix, gameID)
}

// userScoresKey returns the Redis key for the ZSET of a user's score IDs for a game
func userScoresKey(gameID model.GameID, userID model.UserID) string {
	return fmt.Sprintf("%s:idx:user_scores:%s:%s", keyPrefix, gameID, userID)
}

// highScoreKey returns the Redis key holding the ID of the flagged high-score record.
// It is the WATCH key that serializes high-score swaps for the pair.
func highScoreKey(gameID model.GameID, userID model.UserID) string {
	return fmt.Sprintf("%s:high:%s:%s", keyPrefix, gameID, userID)
}

// highScoresKey returns the Redis key for the ZSET of user ID -> high score for a game
func highScoresKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:high_scores:%s", keyPrefix, gameID)
}
