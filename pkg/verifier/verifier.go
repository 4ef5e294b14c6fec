package verifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/lenneTech/nest-server-sub004/pkg/jwks"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
	"github.com/lenneTech/nest-server-sub004/pkg/tokenkind"
)

// ErrExpiredToken reports a credential that was valid once and has expired.
var ErrExpiredToken = errors.New("verifier: credential is expired")

// ErrLegacyToken is returned when a legacy JWT reaches Verify; those tokens
// belong to the legacy verification path.
var ErrLegacyToken = errors.New("verifier: legacy token must use the legacy path")

// SessionUser is the normalized identity a successful verification yields,
// regardless of which mechanism produced it.
type SessionUser struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
}

// Result combines the verified subject with whatever artifacts the chosen
// mechanism produced. Session is only set on the session-token path.
type Result struct {
	Kind    tokenkind.Kind
	Subject string
	Claims  map[string]any
	Session *store.Session
	User    *SessionUser
}

// Verifier authenticates classified tokens.
type Verifier struct {
	iam      *jwks.Verifier
	sessions store.SessionStore
	iamUsers store.IamUserStore
	users    store.UserStore
	logger   *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for verification diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// New creates a verifier over the given IAM JWT verifier and stores.
func New(iam *jwks.Verifier, sessions store.SessionStore, iamUsers store.IamUserStore, users store.UserStore, opts ...Option) *Verifier {
	v := &Verifier{
		iam:      iam,
		sessions: sessions,
		iamUsers: iamUsers,
		users:    users,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify classifies the token and authenticates it through the matching
// mechanism. A nil result with a nil error means "cannot authenticate".
func (v *Verifier) Verify(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, nil
	}

	analysis := tokenkind.Classify(token)
	switch analysis.Kind {
	case tokenkind.LegacyJWT:
		return nil, ErrLegacyToken
	case tokenkind.IamJWT:
		return v.verifyIamJWT(ctx, token)
	case tokenkind.SessionToken:
		return v.VerifySessionToken(ctx, token)
	default:
		return nil, nil
	}
}

// verifyIamJWT runs signature verification and lifts the claims into a
// SessionUser.
func (v *Verifier) verifyIamJWT(ctx context.Context, token string) (*Result, error) {
	claims, err := v.iam.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, jwks.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		v.logger.DebugContext(ctx, "iam jwt verification failed", slog.String("error", err.Error()))
		return nil, nil
	}

	return &Result{
		Kind:    tokenkind.IamJWT,
		Subject: claims.Subject,
		Claims:  claims.Raw,
		User: &SessionUser{
			ID:            claims.Subject,
			Email:         claims.Email,
			Name:          claims.Name,
			EmailVerified: claims.EmailVerified,
		},
	}, nil
}

// VerifySessionToken resolves an opaque token through the session store and
// joins it to the owning user. Expired and missing sessions both resolve to
// nil rather than an error.
func (v *Verifier) VerifySessionToken(ctx context.Context, token string) (*Result, error) {
	session, err := v.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || session.IsExpired() {
		return nil, nil
	}

	user, err := v.joinSessionUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		v.logger.DebugContext(ctx, "session has no resolvable owner", slog.String("userId", session.UserID))
		return nil, nil
	}

	return &Result{
		Kind:    tokenkind.SessionToken,
		Subject: user.ID,
		Session: session,
		User:    user,
	}, nil
}

// joinSessionUser resolves the session's user reference. The session store
// and the user stores may disagree on id representation, so the join tries
// the IAM user collection first (native and stringified ids are handled by
// the store), then falls back to the canonical collection's flexible
// lookup, which additionally matches the iamId string field.
func (v *Verifier) joinSessionUser(ctx context.Context, ref string) (*SessionUser, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	iamUser, err := v.iamUsers.FindByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if iamUser != nil {
		return &SessionUser{
			ID:            iamUser.ID,
			Email:         iamUser.Email,
			Name:          iamUser.Name,
			EmailVerified: iamUser.EmailVerified,
		}, nil
	}

	user, err := v.users.FindByFlexibleID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &SessionUser{
		ID:            ref,
		Email:         user.Email,
		Name:          user.Name(),
		EmailVerified: user.Verified,
	}, nil
}
