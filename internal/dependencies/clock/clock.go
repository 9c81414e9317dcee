package clock

import "time"

// Clock provides the current time so services can be tested against a fixed instant
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC, truncated to the microsecond precision
// Postgres keeps, so createdAt tie-breaks agree across storage backends
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
