package domain

import (
	"context"
	"time"
)

// ExecutionStore persists execution audit records.
type ExecutionStore interface {
	Create(ctx context.Context, rec ExecutionRecord) error
}

// RateLimiter enforces request rate limits per key.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under the limit
	// for the given window, counting the request if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
