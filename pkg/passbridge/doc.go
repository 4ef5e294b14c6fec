// Package passbridge keeps the two password stores mutually authenticable.
//
// The legacy system stores bcrypt hashes; the IAM system stores scrypt
// hashes. Both operate on a normalized form of the password: clients may
// send either the raw password or its SHA-256 hex digest, and a presented
// value that already looks like a 64-hex digest is taken as pre-hashed.
// This convention is a compatibility contract with deployed clients — the
// algorithms and parameters here must not change, or cross-system login
// breaks for every existing account.
//
// Migration from the legacy store into the IAM store requires password
// proof: the supplied password must match the stored bcrypt hash directly
// or in its sha256-then-bcrypt form (the legacy system historically
// accepted both). A mismatch is an explicit rejection, never a silent
// skip.
//
// Cross-system sync operations (password, email, account deletion) are
// best-effort and idempotent: they report success as a boolean and log
// failures instead of failing the primary operation, because the IAM
// mirror is a convenience bridge, not the source of truth.
package passbridge
