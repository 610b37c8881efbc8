package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DistributedLimiter shares a counting-window limit across instances
// through Redis. The window is fixed rather than sliding: a counter per
// identifier is incremented and expired after one window.
type DistributedLimiter struct {
	redis  *redis.Client
	policy Policy
	prefix string
}

// NewDistributedLimiter creates a Redis-backed limiter. An empty prefix
// defaults to "ratelimit".
func NewDistributedLimiter(redisClient *redis.Client, policy Policy, prefix string) *DistributedLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &DistributedLimiter{
		redis:  redisClient,
		policy: policy,
		prefix: prefix,
	}
}

// CheckAndRecord increments the identifier's counter and checks it against
// the policy. On Redis failure it fails open and reports the error, so a
// cache outage degrades to unlimited rather than denying everyone.
func (l *DistributedLimiter) CheckAndRecord(ctx context.Context, identifier string) (Result, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, identifier)

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{Allowed: true, Remaining: l.policy.MaxRequests},
			fmt.Errorf("redis error: %w", err)
	}

	count := int(incr.Val())
	if count > l.policy.MaxRequests {
		retryAfter, err := l.redis.TTL(ctx, key).Result()
		if err != nil || retryAfter < 0 {
			retryAfter = l.policy.Window
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: l.policy.MaxRequests - count}, nil
}

// Reset clears the counter for an identifier.
func (l *DistributedLimiter) Reset(ctx context.Context, identifier string) error {
	key := fmt.Sprintf("%s:%s", l.prefix, identifier)
	return l.redis.Del(ctx, key).Err()
}

// TTL returns the time until the identifier's window resets.
func (l *DistributedLimiter) TTL(ctx context.Context, identifier string) (time.Duration, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, identifier)
	return l.redis.TTL(ctx, key).Result()
}
