// Package tokenkind classifies opaque bearer strings into the credential
// kinds the authentication bridge understands: legacy HS256 JWTs issued by
// the Passport-era token service, JWTs issued by the IAM system, and opaque
// session tokens that must be resolved through a database lookup.
//
// Classification is structural, not cryptographic. A token is considered
// JWT-shaped only if it splits into exactly three dot-separated segments
// whose middle segment decodes to a JSON object; the decoded claims then
// disambiguate legacy from IAM format. Anything else degrades to a session
// token so that opaque tokens containing dots are never misrouted into JWT
// verification.
//
// All downstream predicates (IsJWT, IsLegacyJWT, IsSessionToken) are derived
// from a single Classify call rather than re-implemented with separate
// heuristics, so the decision cannot drift between call sites.
package tokenkind
