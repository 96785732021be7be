package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter whose counters live in Redis, so every
// instance behind a load balancer shares one budget per key.
type Redis struct {
	client redis.UniversalClient
	cfg    Config
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client redis.UniversalClient, cfg Config) *Redis {
	return &Redis{client: client, cfg: cfg.withDefaults()}
}

// Consume adds points to key's counter for the current window.
func (l *Redis) Consume(ctx context.Context, key string, points int) error {
	if points <= 0 {
		points = 1
	}
	k := redisKeyPrefix + key

	// The TTL is only set when the key has none, so a window is never extended and
	// a counter cannot outlive a failed EXPIRE.
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, k, int64(points))
		pipe.ExpireNX(ctx, k, l.cfg.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	count := incr.Val()

	if count > int64(l.cfg.Points) {
		return ErrLimited
	}
	return nil
}
