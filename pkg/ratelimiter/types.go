package ratelimiter

import "time"

// Config defines the fixed-window limits.
type Config struct {
	// Window is the length of the counting window.
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`

	// Max is the number of attempts allowed per key per window.
	Max int `env:"RATE_LIMIT_MAX" envDefault:"10"`

	// Disabled turns the limiter off entirely; every check allows.
	Disabled bool `env:"RATE_LIMIT_DISABLED" envDefault:"false"`
}

// Result is the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before the next attempt can succeed.
// Zero when the check allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	if d := time.Until(r.ResetAt); d > 0 {
		return d
	}
	// The window is about to roll over; report the smallest meaningful wait.
	return time.Second
}
