package redis

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:embed scripts/sliding_window.lua
var slidingWindowScript string

// RateLimiter implements a sliding window rate limiter on Redis sorted sets.
// The window logic runs server-side as a Lua script, so concurrent callers
// across processes share one consistent counter.
type RateLimiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
}

// NewRateLimiter creates a RateLimiter. Keys are namespaced under prefix.
func NewRateLimiter(client *redis.Client, prefix string) *RateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RateLimiter{
		client: client,
		script: redis.NewScript(slidingWindowScript),
		prefix: prefix,
	}
}

// Allow reports whether a request for key is permitted under limit requests
// per window, recording the request when it is.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := r.script.Run(ctx, r.client,
		[]string{r.prefix + ":" + key},
		window.Milliseconds(), limit, now, member,
	).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit script: %w", err)
	}
	if len(res) < 1 {
		return false, fmt.Errorf("redis: rate limit script: empty result")
	}

	return res[0] == 1, nil
}
