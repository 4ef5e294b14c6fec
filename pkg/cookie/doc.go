// Package cookie implements the signed-cookie format shared with the IAM
// system: a cookie value is signed as "value.signature" where the signature
// is the standard-base64 HMAC-SHA256 of the value under a shared secret.
//
// The format is close enough to a JWT to be confused with one, so the
// package distinguishes the two structurally: a signed cookie has exactly
// one dot and a base64 tail, a JWT has two. SignIfUnsigned makes signing
// idempotent so values can pass through multiple layers without being
// double-signed.
//
// The package also derives the session cookie name from the IAM base path
// ("/iam" becomes "iam.session_token") and provides a small Manager for
// reading and writing cookies on net/http requests and responses.
package cookie
