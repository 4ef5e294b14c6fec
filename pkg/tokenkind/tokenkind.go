package tokenkind

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Kind identifies the credential format of a bearer token.
type Kind string

const (
	// LegacyJWT is a three-segment JWT whose payload carries an "id" claim
	// and no "sub" claim, as issued by the legacy token service.
	LegacyJWT Kind = "legacy_jwt"

	// IamJWT is a three-segment JWT whose payload carries a "sub" claim,
	// as issued by the IAM system.
	IamJWT Kind = "iam_jwt"

	// SessionToken is any non-JWT-shaped bearer string. It must be resolved
	// through a session store lookup.
	SessionToken Kind = "session_token"

	// Unknown is a structurally valid JWT whose claims match neither known
	// issuer. Verification of such tokens always fails.
	Unknown Kind = "unknown"
)

// Analysis is the result of classifying a single token. Payload is only
// populated for JWT-shaped tokens whose middle segment decoded to a JSON
// object. Results are produced fresh per attempt and must not be cached
// across requests.
type Analysis struct {
	Kind    Kind
	Payload map[string]any
}

// Classify inspects a bearer token and determines its kind.
//
// Tokens that do not split into exactly three dot-separated segments are
// session tokens. Tokens whose middle segment does not decode to JSON are
// also session tokens; some opaque tokens happen to contain dots. A decoded
// payload with an "id" claim and no "sub" claim is the legacy format, a
// payload with a "sub" claim is the IAM format, anything else is Unknown.
func Classify(token string) Analysis {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Analysis{Kind: SessionToken}
	}

	raw, err := base64URLDecode(parts[1])
	if err != nil {
		return Analysis{Kind: SessionToken}
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return Analysis{Kind: SessionToken}
	}

	_, hasSub := payload["sub"]
	_, hasID := payload["id"]

	switch {
	case hasSub:
		return Analysis{Kind: IamJWT, Payload: payload}
	case hasID:
		return Analysis{Kind: LegacyJWT, Payload: payload}
	default:
		return Analysis{Kind: Unknown, Payload: payload}
	}
}

// IsJWT reports whether the token is JWT-shaped, regardless of issuer.
func (a Analysis) IsJWT() bool {
	return a.Kind == LegacyJWT || a.Kind == IamJWT || a.Kind == Unknown
}

// IsLegacyJWT reports whether the token was issued by the legacy system.
func (a Analysis) IsLegacyJWT() bool {
	return a.Kind == LegacyJWT
}

// IsSessionToken reports whether the token must be resolved via session lookup.
func (a Analysis) IsSessionToken() bool {
	return a.Kind == SessionToken
}

// UserID extracts the user identifier from the decoded payload: "id" for
// legacy tokens, "sub" for IAM tokens. Returns an empty string when the
// token carries no usable identifier.
func (a Analysis) UserID() string {
	switch a.Kind {
	case LegacyJWT:
		if id, ok := a.Payload["id"].(string); ok {
			return id
		}
	case IamJWT:
		if sub, ok := a.Payload["sub"].(string); ok {
			return sub
		}
	}
	return ""
}

// base64URLDecode decodes base64url data, restoring padding as needed.
// JWT segments omit padding per RFC 7515, but Go's decoder requires it.
func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
