package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/arcade-go/internal/dependencies/idgen"
)

// MockIDs returns queued IDs first, then a predictable sequence (id-1, id-2, ...)
type MockIDs struct {
	mu     sync.Mutex
	queue  []string
	issued int
}

// Ensure MockIDs implements Generator
var _ idgen.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued ID, or the next sequence value
func (m *MockIDs) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	if len(m.queue) > 0 {
		id := m.queue[0]
		m.queue = m.queue[1:]
		return id
	}
	return fmt.Sprintf("id-%d", m.issued)
}

// Queue adds IDs to be returned before the sequence resumes
func (m *MockIDs) Queue(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, ids...)
}

// Issued returns how many IDs have been handed out
func (m *MockIDs) Issued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issued
}
