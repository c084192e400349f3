// Package slidinglog implements a sliding-log rate limiter: an exact
// per-key log of event timestamps, trimmed to a trailing window on every
// decision.
//
// The limiter never reads a clock. Time advances only through the `now`
// value the caller passes to Trigger, which keeps decisions deterministic
// and trivially testable. It is also not goroutine-safe: one evaluation
// reads and writes one key's log, and callers that share a Limiter across
// goroutines must serialize access themselves (see the memory store for
// the lock-wrapped integration).
package slidinglog

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration is returned by New for a negative capacity or a
// non-positive window.
var ErrInvalidConfiguration = errors.New("invalid limiter configuration")

// Limiter tracks, per key, the timestamps of recently admitted events.
// Capacity and window are fixed for the life of the instance.
type Limiter[K comparable] struct {
	capacity     int
	windowMillis int64
	logs         map[K][]int64
}

// New creates a limiter that admits at most capacity events per key within
// the trailing window. A zero capacity is legal and rejects everything.
func New[K comparable](capacity int, window time.Duration) (*Limiter[K], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: capacity %d is negative", ErrInvalidConfiguration, capacity)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window %v is not positive", ErrInvalidConfiguration, window)
	}
	// Timestamps compare at millisecond precision, so a sub-millisecond
	// window would truncate to zero and never bind the capacity.
	if window < time.Millisecond {
		return nil, fmt.Errorf("%w: window %v is shorter than one millisecond", ErrInvalidConfiguration, window)
	}
	return &Limiter[K]{
		capacity:     capacity,
		windowMillis: window.Milliseconds(),
		logs:         make(map[K][]int64),
	}, nil
}

// Capacity returns the maximum number of in-window events per key.
func (l *Limiter[K]) Capacity() int { return l.capacity }

// Window returns the trailing window length.
func (l *Limiter[K]) Window() time.Duration {
	return time.Duration(l.windowMillis) * time.Millisecond
}

// Trigger records an event attempt for key at time now and reports whether
// it is admitted.
//
// The key's log plus the new event is filtered to timestamps strictly
// greater than now minus the window (entries at exactly the cutoff are
// discarded). If the filtered log fits the capacity the event is admitted
// and the filtered log, including now, is stored. Otherwise the event is
// rejected and the stored log is left exactly as it was: a rejected event
// leaves no trace.
//
// Trigger never fails; rejection is an ordinary outcome, not an error.
// Timestamps are compared at millisecond precision.
func (l *Limiter[K]) Trigger(now time.Time, key K) bool {
	ts := now.UnixMilli()
	cutoff := ts - l.windowMillis

	old := l.logs[key]
	candidate := make([]int64, 0, len(old)+1)
	for _, e := range old {
		if e > cutoff {
			candidate = append(candidate, e)
		}
	}
	candidate = append(candidate, ts)

	if len(candidate) > l.capacity {
		return false
	}
	l.logs[key] = candidate
	return true
}

// Count returns how many admitted events for key are still inside the
// window as of now. It does not modify the log.
func (l *Limiter[K]) Count(now time.Time, key K) int {
	cutoff := now.UnixMilli() - l.windowMillis
	n := 0
	for _, e := range l.logs[key] {
		if e > cutoff {
			n++
		}
	}
	return n
}

// Reset forgets all recorded events for key.
func (l *Limiter[K]) Reset(key K) {
	delete(l.logs, key)
}

// Sweep evicts keys whose every entry has expired as of now. The trigger
// path corrects staleness lazily per key; Sweep exists so long-lived
// limiters with high key cardinality can reclaim memory for idle keys.
func (l *Limiter[K]) Sweep(now time.Time) {
	cutoff := now.UnixMilli() - l.windowMillis
	for k, log := range l.logs {
		live := false
		for _, e := range log {
			if e > cutoff {
				live = true
				break
			}
		}
		if !live {
			delete(l.logs, k)
		}
	}
}
