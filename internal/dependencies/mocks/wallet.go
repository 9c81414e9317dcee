package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/arcade-go/internal/wallet"
)

// MockCrediter records credits instead of sending them.
// It satisfies both wallet.Crediter and a dispatcher's Dispatch.
type MockCrediter struct {
	mu      sync.Mutex
	credits []wallet.Credit

	// Err is returned from Credit when set
	Err error
}

// Ensure MockCrediter implements Crediter
var _ wallet.Crediter = (*MockCrediter)(nil)

// NewMockCrediter creates a new MockCrediter
func NewMockCrediter() *MockCrediter {
	return &MockCrediter{}
}

// Credit records the credit and returns Err
func (m *MockCrediter) Credit(_ context.Context, credit wallet.Credit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits = append(m.credits, credit)
	return m.Err
}

// Dispatch records the credit synchronously
func (m *MockCrediter) Dispatch(credit wallet.Credit) {
	_ = m.Credit(context.Background(), credit)
}

// Credits returns a copy of everything recorded so far
func (m *MockCrediter) Credits() []wallet.Credit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]wallet.Credit(nil), m.credits...)
}
