package authflow

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/lenneTech/nest-server-sub004/pkg/httpcodec"
	"github.com/lenneTech/nest-server-sub004/pkg/identity"
	"github.com/lenneTech/nest-server-sub004/pkg/jwt"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
	"github.com/lenneTech/nest-server-sub004/pkg/tokenkind"
	"github.com/lenneTech/nest-server-sub004/pkg/verifier"
)

// AuthResult is the outcome of one authentication run. A nil User means no
// strategy resolved one; that is a terminal state of the machine, not an
// error. HeaderFailed records that an Authorization header was present but
// its token did not verify, which the session-cookie pass uses to keep the
// broken bearer token out of session lookup.
type AuthResult struct {
	User          *identity.MappedUser
	Session       *store.Session
	HeaderPresent bool
	HeaderFailed  bool
}

// Authenticated reports whether a user was resolved.
func (r *AuthResult) Authenticated() bool {
	return r != nil && r.User != nil
}

// Flow authenticates requests against both token schemes.
type Flow struct {
	codec     *httpcodec.Codec
	verifier  *verifier.Verifier
	mapper    *identity.Mapper
	legacy    *jwt.Service
	users     store.UserStore
	sessions  store.SessionStore
	cookieJWT bool
	logger    *slog.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger used for strategy diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// WithCookieJWT toggles the cookie-JWT strategy. It is on by default; some
// deployments keep JWTs strictly in the Authorization header.
func WithCookieJWT(enabled bool) Option {
	return func(f *Flow) { f.cookieJWT = enabled }
}

// New creates a Flow. legacy may be nil when the legacy token scheme is
// retired; requests carrying legacy tokens then fall through to the cookie
// strategies.
func New(codec *httpcodec.Codec, v *verifier.Verifier, mapper *identity.Mapper, legacy *jwt.Service, users store.UserStore, sessions store.SessionStore, opts ...Option) *Flow {
	f := &Flow{
		codec:     codec,
		verifier:  v,
		mapper:    mapper,
		legacy:    legacy,
		users:     users,
		sessions:  sessions,
		cookieJWT: true,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Authenticate runs the strategy chain for one request: Authorization
// header, then JWTs stored in cookies, then the opaque session cookie.
// The first strategy that resolves a user wins; every failure is logged
// and the next strategy tried.
func (f *Flow) Authenticate(ctx context.Context, r *http.Request) *AuthResult {
	res := &AuthResult{}

	if token := httpcodec.BearerToken(r); token != "" {
		res.HeaderPresent = true
		analysis := tokenkind.Classify(token)
		switch {
		case analysis.IsLegacyJWT():
			if user := f.verifyLegacy(ctx, token); user != nil {
				res.User = user
				return res
			}
			res.HeaderFailed = true
		case analysis.Kind == tokenkind.IamJWT:
			if f.verifyIamJWT(ctx, token, res) {
				return res
			}
			res.HeaderFailed = true
		}
		// A session-token-shaped bearer is handled by the session pass
		// below, with the header still eligible.
	}

	if f.cookieJWT {
		for _, candidate := range f.codec.CookieTokens(r) {
			analysis := tokenkind.Classify(candidate)
			switch {
			case analysis.Kind == tokenkind.IamJWT:
				if f.verifyIamJWT(ctx, candidate, res) {
					return res
				}
			case analysis.IsLegacyJWT():
				if user := f.verifyLegacy(ctx, candidate); user != nil {
					res.User = user
					return res
				}
			}
		}
	}

	token := f.codec.ExtractSessionToken(r, res.HeaderFailed)
	if token == "" || !tokenkind.Classify(token).IsSessionToken() {
		return res
	}

	result, err := f.verifier.VerifySessionToken(ctx, token)
	if err != nil {
		f.logger.WarnContext(ctx, "session lookup failed", slog.String("error", err.Error()))
		return res
	}
	if result == nil {
		return res
	}

	user, err := f.mapper.MapSessionUser(ctx, result.User)
	if err != nil {
		f.logger.WarnContext(ctx, "session user mapping failed", slog.String("error", err.Error()))
		return res
	}
	if user == nil {
		return res
	}

	res.User = user
	res.Session = result.Session
	return res
}

// verifyIamJWT verifies an IAM JWT and fills res on success. A concrete
// database session for the same user is resolved best-effort because some
// sub-flows need a session token rather than a bearer JWT; its absence or
// a lookup error never fails the primary authentication.
func (f *Flow) verifyIamJWT(ctx context.Context, token string, res *AuthResult) bool {
	result, err := f.verifier.Verify(ctx, token)
	if err != nil {
		f.logger.DebugContext(ctx, "iam jwt rejected", slog.String("error", err.Error()))
		return false
	}
	if result == nil {
		return false
	}

	user, err := f.mapper.MapSessionUser(ctx, result.User)
	if err != nil {
		f.logger.WarnContext(ctx, "iam user mapping failed", slog.String("error", err.Error()))
		return false
	}
	if user == nil {
		return false
	}
	res.User = user

	session, err := f.sessions.FindActiveByUserID(ctx, result.Subject)
	if err != nil {
		f.logger.DebugContext(ctx, "session resolution failed",
			slog.String("userId", result.Subject), slog.String("error", err.Error()))
		return true
	}
	res.Session = session
	return true
}

// verifyLegacy parses a legacy HS256 token and resolves its user. Legacy
// tokens authenticate against the canonical store directly; the resulting
// user is not marked ViaIam, so downstream legacy guards still apply.
func (f *Flow) verifyLegacy(ctx context.Context, token string) *identity.MappedUser {
	if f.legacy == nil {
		return nil
	}

	var claims jwt.LegacyClaims
	if err := f.legacy.Parse(token, &claims); err != nil {
		f.logger.DebugContext(ctx, "legacy token rejected", slog.String("error", err.Error()))
		return nil
	}
	if claims.ID == "" {
		return nil
	}

	user, err := f.users.FindByFlexibleID(ctx, claims.ID)
	if err != nil {
		f.logger.WarnContext(ctx, "legacy user lookup failed", slog.String("error", err.Error()))
		return nil
	}
	if user == nil {
		return nil
	}

	return &identity.MappedUser{
		ID:       user.ID,
		IamID:    user.IamID,
		Email:    user.Email,
		Roles:    user.Roles,
		Verified: user.Verified,
	}
}
