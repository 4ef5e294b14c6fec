package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lenneTech/nest-server-sub004/pkg/store"
)

// validMethods lists every algorithm the IAM system is known to sign with.
var validMethods = []string{"HS256", "EdDSA", "ES256", "RS256"}

// Claims is the verified claim set of an IAM token.
type Claims struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
	Raw           map[string]any
}

// Verifier verifies IAM-issued JWTs against the shared secret (HS256) or
// the published key set (asymmetric algorithms).
type Verifier struct {
	keys    store.KeyStore
	secret  string
	baseURL string
	logger  *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for verification diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// New creates a verifier. baseURL is used as both pinned issuer and
// audience; secret may be empty, in which case HS256 tokens fail
// verification rather than being accepted unchecked.
func New(keys store.KeyStore, secret, baseURL string, opts ...Option) *Verifier {
	v := &Verifier{
		keys:    keys,
		secret:  secret,
		baseURL: baseURL,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the token's signature, issuer, audience and expiry and
// returns its claims. Expired tokens return ErrExpiredToken so callers can
// surface a re-authentication signal distinct from a generic failure.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (any, error) { return v.resolveKey(ctx, t) },
		jwt.WithValidMethods(validMethods),
		jwt.WithIssuer(v.baseURL),
		jwt.WithAudience(v.baseURL),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{Raw: map[string]any(mapClaims)}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	claims.EmailVerified, _ = mapClaims["emailVerified"].(bool)

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// resolveKey selects the verification key for a parsed-but-unverified
// token: the shared secret for HS256, a published public key for
// asymmetric algorithms.
func (v *Verifier) resolveKey(ctx context.Context, t *jwt.Token) (any, error) {
	if t.Method.Alg() == "HS256" {
		if v.secret == "" {
			return nil, ErrMissingSecret
		}
		return []byte(v.secret), nil
	}

	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrNoKeyMaterial
	}

	entry, err := v.lookupKey(ctx, kid)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNoKeyMaterial
	}

	return parseJWK(entry.PublicKey)
}

// lookupKey tries the indexed kid lookup first, then falls back to a
// linear scan matching kid against either the logical kid or the store's
// native id.
func (v *Verifier) lookupKey(ctx context.Context, kid string) (*store.JWK, error) {
	entry, err := v.keys.FindByKid(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("jwks lookup: %w", err)
	}
	if entry != nil {
		return entry, nil
	}

	all, err := v.keys.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwks scan: %w", err)
	}
	for i := range all {
		if all[i].Kid == kid || all[i].ID == kid {
			v.logger.DebugContext(ctx, "jwks kid resolved via linear scan", slog.String("kid", kid))
			return &all[i], nil
		}
	}
	return nil, nil
}
