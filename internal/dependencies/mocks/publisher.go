package mocks

import (
	"sync"

	"github.com/mcoot/arcade-go/internal/model"
)

// MockPublisher records published score events
type MockPublisher struct {
	mu     sync.Mutex
	events []model.ScoreEvent
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishScore records the event
func (m *MockPublisher) PublishScore(event model.ScoreEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of everything published so far
func (m *MockPublisher) Events() []model.ScoreEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScoreEvent(nil), m.events...)
}
