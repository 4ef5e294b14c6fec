// Package httpcodec converts between net/http requests/responses and the
// canonical representation handed to the IAM engine: a flat
// method/URL/headers/body tuple in, a status/headers/body tuple out.
//
// Request bodies are buffered with an incremental size cap (1 MiB by
// default) so a slow or oversized upload cannot balloon memory; bodies the
// framework already parsed as JSON are re-serialized instead of re-read.
//
// Response conversion treats Set-Cookie specially: multiple cookies are
// distinct header occurrences and must never be merged into one
// comma-joined value, and cookies the caller already queued on the
// ResponseWriter are appended to, not clobbered.
//
// The package also implements session-token extraction with the defined
// precedence: Authorization bearer (only when the token classifies as a
// session token — JWTs take a different verification path and must not be
// misrouted into session lookup), then the IAM session cookie, then the
// legacy token cookie.
package httpcodec
