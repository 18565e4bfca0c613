package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every replica. The first
// attempt in a window creates the key with a TTL of one window; the counter
// resets when the key expires.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  Limit
}

// NewRedisLimiter namespaces keys under prefix, e.g. "throttle:strict".
func NewRedisLimiter(client redis.UniversalClient, prefix string, l Limit) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: l}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := r.prefix + ":" + key

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, r.limit.Window)
		pttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("throttle: redis: %w", err)
	}

	count := int(incr.Val())
	if count <= r.limit.Requests {
		return Decision{
			Allowed:   true,
			Limit:     r.limit.Requests,
			Remaining: r.limit.Requests - count,
		}, nil
	}

	retry := pttl.Val()
	if retry <= 0 {
		retry = r.limit.Window
	}
	return Decision{
		Allowed:    false,
		Limit:      r.limit.Requests,
		RetryAfter: max(retry, time.Second),
	}, nil
}

var _ Limiter = (*RedisLimiter)(nil)
