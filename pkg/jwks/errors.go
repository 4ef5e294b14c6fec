package jwks

import "errors"

var (
	ErrMissingSecret  = errors.New("jwks: signing secret not configured")
	ErrNoKeyMaterial  = errors.New("jwks: no key found for kid")
	ErrUnsupportedKey = errors.New("jwks: unsupported key type")
	ErrInvalidToken   = errors.New("jwks: invalid token")
	ErrExpiredToken   = errors.New("jwks: token is expired")
)
