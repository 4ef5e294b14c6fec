package ratelimiter

import (
	"context"
	"time"
)

// Store persists window counters.
type Store interface {
	// Increment atomically bumps the counter for key, starting a fresh
	// window if none is active, and returns the new count together with
	// the window's reset time.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}
