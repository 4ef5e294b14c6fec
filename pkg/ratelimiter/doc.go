// Package ratelimiter throttles the legacy authentication endpoints with a
// fixed-window counter keyed by client IP and endpoint name.
//
// The limiter is storage-agnostic: an in-memory store serves single-node
// deployments and tests, a Redis store serves multi-node deployments.
// Counter updates are atomic per key in both stores.
//
// When the configuration disables limiting, every check allows. When a key
// exceeds its window budget, the result reports zero remaining attempts
// and how long until the window resets; the caller surfaces that as a
// rate-limit error before any credential verification runs.
package ratelimiter
