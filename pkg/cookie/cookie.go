package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

// LegacyCookieName is the cookie the pre-IAM clients store their JWT in.
const LegacyCookieName = "token"

// sessionTokenSuffix is appended to the normalized base path to form the
// IAM session cookie name.
const sessionTokenSuffix = ".session_token"

// minSignatureLength guards against mistaking short dotted values (file
// names, version strings) for signed cookies. A base64 HMAC-SHA256
// signature is 44 characters, so 20 keeps plenty of margin.
const minSignatureLength = 20

// signatureShape matches a standard-base64 signature with optional padding.
var signatureShape = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)

// SessionCookieName derives the session cookie name from the IAM base path:
// the leading slash is stripped and remaining slashes become dots, so
// "/iam" yields "iam.session_token" and "/api/iam" yields
// "api.iam.session_token".
func SessionCookieName(basePath string) string {
	name := strings.TrimPrefix(basePath, "/")
	name = strings.ReplaceAll(name, "/", ".")
	return name + sessionTokenSuffix
}

// Sign produces the signed form "value.signature" where signature is the
// standard-base64 HMAC-SHA256 of value under secret.
func Sign(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return value + "." + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignURLEncoded signs value and percent-encodes the result for embedding
// in Cookie headers, where "+" and "=" are otherwise problematic.
func SignURLEncoded(value, secret string) string {
	return url.QueryEscape(Sign(value, secret))
}

// IsSigned reports whether value already carries a signature: exactly one
// dot, with the segment after it shaped like a base64 signature of at
// least minSignatureLength characters. A JWT has two dots and therefore
// never satisfies this, which keeps signing and JWT handling from
// misparsing each other's formats.
func IsSigned(value string) bool {
	if strings.Count(value, ".") != 1 {
		return false
	}
	_, sig, _ := strings.Cut(value, ".")
	return len(sig) >= minSignatureLength && signatureShape.MatchString(sig)
}

// SignIfUnsigned signs value unless it is already signed. Applying it
// twice yields the same result as applying it once.
func SignIfUnsigned(value, secret string) string {
	if IsSigned(value) {
		return value
	}
	return Sign(value, secret)
}

// Verify checks a signed value and returns the bare value on success.
// The comparison is constant-time.
func Verify(signed, secret string) (string, error) {
	idx := strings.LastIndex(signed, ".")
	if idx <= 0 || idx == len(signed)-1 {
		return "", ErrInvalidFormat
	}

	value, sig := signed[:idx], signed[idx+1:]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", ErrInvalidSignature
	}
	return value, nil
}
