package memory

import (
	"context"
	"sync"
	"time"

	"github.com/slidinglog/rate-limiter/slidinglog"
)

type rule struct {
	capacity int
	window   time.Duration
}

// Store is the in-process sliding-log store. It keeps one core limiter per
// distinct rule and serializes every trigger behind a mutex, providing the
// per-key atomicity the core leaves to its host.
type Store struct {
	mu       sync.Mutex
	limiters map[rule]*slidinglog.Limiter[string]
}

func NewStore() *Store {
	return &Store{limiters: make(map[rule]*slidinglog.Limiter[string])}
}

func (s *Store) Trigger(_ context.Context, key string, capacity int, window time.Duration, now time.Time) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := rule{capacity: capacity, window: window}
	l, ok := s.limiters[r]
	if !ok {
		var err error
		l, err = slidinglog.New[string](capacity, window)
		if err != nil {
			return false, 0, err
		}
		s.limiters[r] = l
	}

	allowed := l.Trigger(now, key)
	return allowed, l.Count(now, key), nil
}

func (s *Store) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.limiters {
		l.Reset(key)
	}
	return nil
}

// Run sweeps expired keys on a ticker until ctx is cancelled. Intended to
// run as a background goroutine for the life of the process.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for _, l := range s.limiters {
				l.Sweep(now)
			}
			s.mu.Unlock()
		}
	}
}
