package passbridge

import "errors"

var (
	// ErrPasswordMismatch rejects a migration whose password proof failed.
	// Distinct from "nothing to migrate" so callers can tell the two apart.
	ErrPasswordMismatch = errors.New("passbridge: password does not match legacy hash")
)
