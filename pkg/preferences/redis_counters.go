package preferences

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	hourlyKeyFormat = "pushkit:rate:%s:hourly"
	dailyKeyFormat  = "pushkit:rate:%s:daily"
)

// RedisCounterStore is a Redis-backed implementation of CounterStore.
// Window resets are delegated to key TTLs: the hourly key expires after
// one hour, the daily key after 24 hours, both measured from the first
// increment of the window. Counters survive process restarts.
type RedisCounterStore struct {
	client redis.UniversalClient
}

// NewRedisCounterStore creates a new Redis-backed counter store.
func NewRedisCounterStore(client redis.UniversalClient) (*RedisCounterStore, error) {
	if client == nil {
		return nil, ErrCounterStoreNil
	}
	return &RedisCounterStore{client: client}, nil
}

func (s *RedisCounterStore) Increment(ctx context.Context, userID string, now time.Time) (int, int, error) {
	hourKey := fmt.Sprintf(hourlyKeyFormat, userID)
	dayKey := fmt.Sprintf(dailyKeyFormat, userID)

	pipe := s.client.TxPipeline()
	hourIncr := pipe.Incr(ctx, hourKey)
	dayIncr := pipe.Incr(ctx, dayKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate counters: %w", err)
	}

	hourly := int(hourIncr.Val())
	daily := int(dayIncr.Val())

	// A TTL is attached only on the first increment of the window so
	// the window anchors to the first send, matching the reset-on-elapse
	// semantics of the in-memory store.
	if hourly == 1 {
		if err := s.client.Expire(ctx, hourKey, time.Hour).Err(); err != nil {
			return hourly, daily, fmt.Errorf("failed to set hourly counter expiry: %w", err)
		}
	}
	if daily == 1 {
		if err := s.client.Expire(ctx, dayKey, 24*time.Hour).Err(); err != nil {
			return hourly, daily, fmt.Errorf("failed to set daily counter expiry: %w", err)
		}
	}

	return hourly, daily, nil
}

func (s *RedisCounterStore) Decrement(ctx context.Context, userID string) error {
	hourKey := fmt.Sprintf(hourlyKeyFormat, userID)
	dayKey := fmt.Sprintf(dailyKeyFormat, userID)

	pipe := s.client.TxPipeline()
	hourDecr := pipe.Decr(ctx, hourKey)
	dayDecr := pipe.Decr(ctx, dayKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to decrement rate counters: %w", err)
	}

	// A decrement racing a TTL expiry can push a counter below zero;
	// clamp back so the next window starts clean.
	if hourDecr.Val() < 0 {
		_ = s.client.Set(ctx, hourKey, 0, redis.KeepTTL).Err()
	}
	if dayDecr.Val() < 0 {
		_ = s.client.Set(ctx, dayKey, 0, redis.KeepTTL).Err()
	}

	return nil
}
