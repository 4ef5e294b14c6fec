package httpcodec

import "errors"

var (
	ErrBodyTooLarge = errors.New("httpcodec: request body exceeds size limit")
)
