// Package jwks verifies JWTs issued by the IAM system.
//
// The IAM system signs either symmetrically (HS256 with the shared service
// secret) or asymmetrically, publishing its public keys to a jwks database
// collection rather than a well-known URL. Key lookup goes by the token's
// kid header; when the indexed lookup misses, a linear scan matches the kid
// against either the logical kid or the store's native id, because the two
// may differ depending on which IAM version wrote the entry.
//
// Issuer and audience are both pinned to the service's own base URL. Tokens
// signed with an unsupported algorithm or referencing unknown key material
// fail verification; they never fall through to a weaker check.
package jwks
