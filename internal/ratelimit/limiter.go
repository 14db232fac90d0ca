// Package ratelimit throttles per-participant replies to a minimum interval.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks the last time a reply was sent to each participant and
// gates new replies behind a minimum interval. Entries are never removed;
// the map grows by one entry per distinct participant seen, which is small
// for a single group.
//
// The comparison assumes a non-decreasing clock; a wall-clock regression can
// let a reply through early.
type Limiter struct {
	mu       sync.Mutex
	lastSent map[int64]time.Time
	interval time.Duration
	now      func() time.Time
}

// NewLimiter creates a Limiter with the given minimum reply interval.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		lastSent: make(map[int64]time.Time),
		interval: interval,
		now:      time.Now,
	}
}

// CanReply reports whether enough time has passed since the last reply to
// the participant. A participant with no recorded reply is always eligible.
func (l *Limiter) CanReply(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.lastSent[userID]
	if !ok {
		return true
	}
	return l.now().Sub(last) >= l.interval
}

// MarkSent records the current time as the participant's last reply time,
// overwriting any prior value.
func (l *Limiter) MarkSent(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastSent[userID] = l.now()
}
