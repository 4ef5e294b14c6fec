package ratelimiter

import "errors"

var (
	ErrInvalidConfig = errors.New("ratelimiter: invalid configuration")

	// ErrRateLimited is the user-visible rejection. Callers attach the
	// result's RetryAfter when surfacing it.
	ErrRateLimited = errors.New("ratelimiter: too many attempts")
)
