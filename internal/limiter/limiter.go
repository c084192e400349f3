package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/slidinglog/rate-limiter/config"
)

// Store evaluates one sliding-log trigger for a namespaced key. The store
// owns the per-key atomicity of the read-modify-write; a rejected trigger
// must leave the key's log unchanged. The returned count is the number of
// in-window events after the decision.
type Store interface {
	Trigger(ctx context.Context, key string, capacity int, window time.Duration, now time.Time) (allowed bool, count int, err error)
	Reset(ctx context.Context, key string) error
}

// Limiter resolves a client to its rule and delegates the decision to the
// store. Time is supplied by the caller on every call; the limiter never
// reads a clock.
type Limiter struct {
	store       Store
	rules       map[string]config.Rule
	defaultRule config.Rule
}

func New(s Store, rules map[string]config.Rule, defaultRule config.Rule) *Limiter {
	return &Limiter{store: s, rules: rules, defaultRule: defaultRule}
}

func keyForClient(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}

// Rule returns the policy applied to client.
func (l *Limiter) Rule(client string) config.Rule {
	if r, ok := l.rules[client]; ok {
		return r
	}
	return l.defaultRule
}

// Allow evaluates one event for client at time now. A false result with a
// nil error is an ordinary rejection; an error means the store failed and
// says nothing about the rate limit.
func (l *Limiter) Allow(ctx context.Context, client string, now time.Time) (bool, int, error) {
	rule := l.Rule(client)

	allowed, count, err := l.store.Trigger(ctx, keyForClient(client), rule.Capacity, rule.Window, now)
	if err != nil {
		return false, 0, fmt.Errorf("trigger %s: %w", client, err)
	}

	remaining := rule.Capacity - count
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, nil
}

// Reset drops all recorded events for client.
func (l *Limiter) Reset(ctx context.Context, client string) error {
	if err := l.store.Reset(ctx, keyForClient(client)); err != nil {
		return fmt.Errorf("reset %s: %w", client, err)
	}
	return nil
}
