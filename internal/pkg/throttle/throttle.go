// Package throttle provides a fixed-window rate gate backed by Redis.
//
// The gate is atomic: the first caller for a key within the window wins via
// SET NX, and losers learn how long the window has left from the key TTL.
package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result reports the outcome of an Allow call.
type Result struct {
	// Allowed is true when the caller won the window.
	Allowed bool
	// RetryAfter is how long until the window opens again. Zero when Allowed.
	RetryAfter time.Duration
}

// Throttler is the contract for atomic check-and-set rate gating.
type Throttler interface {
	// Allow attempts to claim the window for key. At most one caller per
	// window observes Allowed=true.
	Allow(ctx context.Context, key string, window time.Duration) (Result, error)
}

// RedisThrottler implements Throttler on a Redis client.
type RedisThrottler struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a RedisThrottler.
func NewRedis(client *redis.Client) *RedisThrottler {
	return &RedisThrottler{
		client: client,
		prefix: "throttle:",
	}
}

// Allow claims the window for key using SET NX with the window as TTL.
// When the key already exists, the remaining TTL is returned as RetryAfter.
func (t *RedisThrottler) Allow(ctx context.Context, key string, window time.Duration) (Result, error) {
	fk := t.prefix + key

	acquired, err := t.client.SetNX(ctx, fk, "1", window).Result()
	if err != nil {
		return Result{}, err
	}
	if acquired {
		return Result{Allowed: true}, nil
	}

	ttl, err := t.client.PTTL(ctx, fk).Result()
	if err != nil {
		return Result{}, err
	}
	if ttl <= 0 {
		// Key expired between SETNX and PTTL. Treat the full window as the
		// wait rather than racing a second claim.
		ttl = window
	}

	return Result{Allowed: false, RetryAfter: ttl}, nil
}
