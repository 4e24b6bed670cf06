package runtime

import (
	"sync"
	"time"
)

// throttle rate-limits recoverable-failure logging per call site so a stuck
// routine cannot flood the log.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{interval: interval, last: make(map[string]time.Time)}
}

// Do runs fn unless the same key fired within the interval.
func (t *throttle) Do(key string, fn func()) {
	t.mu.Lock()
	now := time.Now()
	if last, ok := t.last[key]; ok && now.Sub(last) < t.interval {
		t.mu.Unlock()
		return
	}
	t.last[key] = now
	t.mu.Unlock()
	fn()
}
