package shared

import "time"

// Clock is an abstraction for time operations, allowing time to be mocked in tests
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Since returns the wall time elapsed since t
func (r *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock implements Clock with a controllable time for testing.
// When Step is non-zero every call to Now advances the clock by Step, which
// lets tests simulate work that consumes the per-tick budget.
type MockClock struct {
	CurrentTime time.Time
	Step        time.Duration
}

// NewMockClock creates a MockClock starting at the given time
// If zero time is provided, starts at current time
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now()
	}
	return &MockClock{CurrentTime: startTime}
}

// Now returns the mock's current time, then advances it by Step
func (m *MockClock) Now() time.Time {
	now := m.CurrentTime
	m.CurrentTime = m.CurrentTime.Add(m.Step)
	return now
}

// Since measures against the mock's current time without advancing it
func (m *MockClock) Since(t time.Time) time.Duration {
	return m.CurrentTime.Sub(t)
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}
