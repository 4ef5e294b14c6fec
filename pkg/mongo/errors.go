package mongo

import "errors"

var (
	// ErrConnectFailed is returned when every connection attempt failed.
	ErrConnectFailed = errors.New("mongo: failed to connect")

	// ErrHealthcheckFailed wraps a failed readiness probe.
	ErrHealthcheckFailed = errors.New("mongo: healthcheck failed")
)
