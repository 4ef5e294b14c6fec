package ratelimiter

import (
	"context"
	"fmt"
)

// Limiter applies a fixed-window limit per (client IP, endpoint) pair.
type Limiter struct {
	store  Store
	config Config
}

// New creates a limiter over the given store.
func New(store Store, config Config) (*Limiter, error) {
	if !config.Disabled {
		if config.Max <= 0 {
			return nil, fmt.Errorf("%w: max must be positive, got %d", ErrInvalidConfig, config.Max)
		}
		if config.Window <= 0 {
			return nil, fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, config.Window)
		}
	}
	return &Limiter{store: store, config: config}, nil
}

// Allow records one attempt against the (ip, endpoint) key and reports
// whether it fits the window budget. Disabled limiters always allow.
func (l *Limiter) Allow(ctx context.Context, ip, endpoint string) (*Result, error) {
	if l.config.Disabled {
		return &Result{Allowed: true, Limit: l.config.Max, Remaining: l.config.Max}, nil
	}

	count, resetAt, err := l.store.Increment(ctx, ip+":"+endpoint, l.config.Window)
	if err != nil {
		return nil, err
	}

	remaining := l.config.Max - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= l.config.Max,
		Limit:     l.config.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for the (ip, endpoint) key.
func (l *Limiter) Reset(ctx context.Context, ip, endpoint string) error {
	return l.store.Reset(ctx, ip+":"+endpoint)
}
