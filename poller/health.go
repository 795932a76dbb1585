package poller

import "sync"

// DefaultDegradedThreshold is the failure streak that triggers a reconnect.
const DefaultDegradedThreshold = 3

// Health is the tracker state derived from the failure counter.
type Health int

const (
	Healthy Health = iota
	Degraded
)

func (h Health) String() string {
	if h == Degraded {
		return "degraded"
	}
	return "healthy"
}

// Tracker counts consecutive failed or soft-disconnected polls. Crossing the
// threshold latches Degraded until the next Reset, so one failure streak
// produces exactly one reconnect.
type Tracker struct {
	mu        sync.RWMutex
	threshold int
	count     int
	latched   bool
}

// NewTracker returns a healthy tracker. A threshold below 1 falls back to
// DefaultDegradedThreshold.
func NewTracker(threshold int) *Tracker {
	if threshold < 1 {
		threshold = DefaultDegradedThreshold
	}
	return &Tracker{threshold: threshold}
}

// RecordFailure increments the counter and reports whether this failure is
// the Healthy -> Degraded crossing.
func (t *Tracker) RecordFailure() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	if t.count >= t.threshold && !t.latched {
		t.latched = true
		return true
	}
	return false
}

// Reset clears the counter and the Degraded latch. Called after a successful
// poll or a successful reconnect.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = 0
	t.latched = false
}

// Count returns the current failure streak.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// State returns Degraded once the streak has reached the threshold.
func (t *Tracker) State() Health {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.count >= t.threshold {
		return Degraded
	}
	return Healthy
}
