package authflow

import (
	"context"

	"github.com/lenneTech/nest-server-sub004/pkg/identity"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

// String returns the name of the context key.
func (c contextKey) String() string { return c.name }

var (
	userContextKey    = &contextKey{name: "auth_user"}
	sessionContextKey = &contextKey{name: "auth_session"}
)

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *identity.MappedUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*identity.MappedUser, bool) {
	user, ok := ctx.Value(userContextKey).(*identity.MappedUser)
	return user, ok
}

// WithSession attaches the resolved database session to the context.
func WithSession(ctx context.Context, session *store.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the resolved database session, if any. It is
// only present when the session-cookie path authenticated the request or a
// bearer-JWT request had an active session on file.
func SessionFromContext(ctx context.Context) (*store.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*store.Session)
	return session, ok
}
