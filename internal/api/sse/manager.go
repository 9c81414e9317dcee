package sse

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/arcade-go/internal/model"
)

// EventScoreSubmitted is sent after every accepted score
const EventScoreSubmitted = "score-submitted"

// scoreEventData is the JSON body of a score-submitted event
type scoreEventData struct {
	GameID      string    `json:"game_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	IsHighScore bool      `json:"is_high_score"`
	Rank        *int      `json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
}

// HubManager owns one hub per watched game
type HubManager struct {
	hubs   map[model.GameID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a game, starting one if needed
func (m *HubManager) GetOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}

	hub := NewHub(gameID, m.logger)
	m.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a game, or nil if nobody is watching it
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[gameID]
}

// PublishScore broadcasts a score-submitted event to the game's watchers.
// Games without watchers are skipped.
func (m *HubManager) PublishScore(event model.ScoreEvent) {
	hub := m.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(scoreEventData{
		GameID:      string(event.GameID),
		UserID:      string(event.UserID),
		Username:    event.Username,
		Score:       event.Score,
		IsHighScore: event.IsHighScore,
		Rank:        event.Rank,
		CreatedAt:   event.CreatedAt,
	})
	if err != nil {
		m.logger.Error("failed to encode score event", slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(EventScoreSubmitted, string(data))
}

// CleanupEmptyHubs stops and removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// Close stops every hub, disconnecting all clients
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
