package port

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one sliding-window check.
type RateLimitDecision struct {
	Allowed bool
	// Count includes the current attempt when it was allowed.
	Count int
	// Oldest is the earliest attempt still inside the window.
	Oldest time.Time
}

// RateLimitStore atomically trims, counts and records attempts for a key.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (RateLimitDecision, error)
}
