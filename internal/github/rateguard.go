package github

import (
	"sync"
	"time"
)

// abuseThreshold is the number of consecutive sub-second calls that trips the
// guard. abuseWindow is the maximum gap that still counts as part of a burst.
const (
	abuseThreshold = 10
	abuseWindow    = time.Second
)

// Guard detects access bursts against the search endpoint. It is a pure
// self-protection heuristic, not a quota limiter: it only catches abnormally
// tight back-to-back calls, which almost always mean a runaway poller.
//
// The clock is injected so tests can control time, and a mutex serializes
// concurrent callers so the cadence detection stays accurate.
type Guard struct {
	mu       sync.Mutex
	now      func() time.Time
	lastCall time.Time
	warnings int
}

// NewGuard creates a Guard using the given clock. Pass nil for time.Now.
func NewGuard(now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{now: now, lastCall: now()}
}

// Check records one outgoing search call. Calls under a second apart
// increment the burst counter; a longer gap resets it. When the counter
// reaches the threshold, Check returns a *RateAbuseError and leaves the
// counter at the failing value.
func (g *Guard) Check() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.lastCall) < abuseWindow {
		g.warnings++
	} else {
		g.warnings = 0
	}
	g.lastCall = now

	if g.warnings >= abuseThreshold {
		return &RateAbuseError{Count: g.warnings}
	}
	return nil
}
