package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("cookie: secret is required")
	ErrCookieNotFound   = errors.New("cookie: cookie not found")
	ErrInvalidFormat    = errors.New("cookie: invalid signed value format")
	ErrInvalidSignature = errors.New("cookie: signature verification failed")
)
