// Package ratelimit implements the sliding-window admission gate applied to
// all inbound chat events before they reach any handler logic.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks recent admission timestamps per actor and denies requests
// that exceed the configured limit within the window. State is process-local
// and rebuilt empty on restart; its only purpose is short-horizon abuse
// prevention.
type Limiter struct {
	limit  int
	window time.Duration

	mu         sync.Mutex
	timestamps map[int64][]time.Time
}

// New creates a Limiter allowing at most limit admissions per actor within
// window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:      limit,
		window:     window,
		timestamps: make(map[int64][]time.Time),
	}
}

// Admit decides whether an event from actorID at time now may proceed.
// A deny is a normal outcome, never an error; retryAfter is how long the
// actor must wait, padded by one second to avoid immediate re-admission
// races at the window edge.
func (l *Limiter) Admit(actorID int64, now time.Time) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.timestamps[actorID][:0]
	for _, ts := range l.timestamps[actorID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.timestamps[actorID] = kept
		// A non-positive limit denies everything; there is no oldest entry
		// to count down from, so the full window applies.
		retryAfter = l.window + time.Second
		if len(kept) > 0 {
			oldest := kept[0]
			for _, ts := range kept {
				if ts.Before(oldest) {
					oldest = ts
				}
			}
			retryAfter = l.window - now.Sub(oldest) + time.Second
		}
		return false, retryAfter
	}

	l.timestamps[actorID] = append(kept, now)
	return true, 0
}
