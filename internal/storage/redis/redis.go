package redis

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slidinglog/rate-limiter/slidinglog"
)

// Store keeps one sorted set per key: member = "<millis>:<random>",
// score = the event's timestamp in milliseconds. The random suffix keeps
// concurrent same-millisecond events from colliding on the same member.
//
// A trigger pipelines ZAdd / ZRemRangeByScore / ZCard / Expire, then
// removes its own member again when the count exceeds capacity, so a
// rejected event leaves no trace in the log. The key TTL is twice the
// window so idle keys age out without a sweeper.
//
// The compensating ZRem is not transactional with the pipeline: a
// concurrent trigger on the same key can count the doomed member and be
// rejected one event early. Per-key serialization of in-flight triggers
// remains the caller's obligation, as it is for the memory store.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Trigger(ctx context.Context, key string, capacity int, window time.Duration, now time.Time) (bool, int, error) {
	// Scores are millisecond timestamps, so the window must be at least
	// one millisecond or the cutoff collapses onto now itself.
	if capacity < 0 || window < time.Millisecond {
		return false, 0, fmt.Errorf("%w: capacity %d window %v", slidinglog.ErrInvalidConfiguration, capacity, window)
	}

	ts := now.UnixMilli()
	sfx, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return false, 0, err
	}
	member := fmt.Sprintf("%d:%d", ts, sfx)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(ts), Member: member})
	// Entries at or before the cutoff leave the window; only strictly
	// newer scores survive.
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(ts-window.Milliseconds(), 10))
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, 2*window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("redis pipeline: %w", err)
	}

	count := int(card.Val())
	if count > capacity {
		if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
			return false, 0, fmt.Errorf("redis zrem: %w", err)
		}
		return false, count - 1, nil
	}
	return true, count, nil
}

func (s *Store) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
