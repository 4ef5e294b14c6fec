package store

import "errors"

var (
	ErrMissingID    = errors.New("store: record id is required")
	ErrMissingEmail = errors.New("store: email is required")
	ErrDuplicateKey = errors.New("store: unique constraint violated")
)
