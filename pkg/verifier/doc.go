// Package verifier authenticates a single bearer token through whichever
// mechanism its classification calls for: IAM JWTs go through signature
// verification (shared secret or published key set), opaque session tokens
// go through a session store lookup joined to the owning user.
//
// Legacy JWTs are deliberately out of this package's reach; the middleware
// defers them to the legacy verification path so the two systems cannot
// accept each other's tokens by accident.
//
// "Not authenticated" is a nil result, not an error. Errors are reserved
// for infrastructure failure (store unreachable) and for the one condition
// callers must distinguish: an expired credential, reported as
// ErrExpiredToken so the client can be told to re-authenticate.
package verifier
