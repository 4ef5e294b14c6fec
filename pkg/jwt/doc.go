// Package jwt signs and verifies the legacy HS256 tokens issued by the
// Passport-era authentication path. The implementation is deliberately
// self-contained: the legacy format predates the IAM system and must stay
// bit-compatible with tokens already in the wild, so it does not share the
// IAM verifier's library stack.
//
// Legacy tokens carry an "id" claim (the user id) plus device and token
// identifiers, and never a "sub" claim. That claim shape is what the
// tokenkind classifier keys on to route tokens to this package.
package jwt
