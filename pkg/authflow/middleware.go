package authflow

import (
	"net/http"
	"strconv"

	"github.com/lenneTech/nest-server-sub004/pkg/clientip"
	"github.com/lenneTech/nest-server-sub004/pkg/identity"
	"github.com/lenneTech/nest-server-sub004/pkg/ratelimiter"
)

// Middleware adapts the flow to net/http. It attaches the resolved user
// and session to the request context and always calls through; requests
// without a user proceed unauthenticated.
func (f *Flow) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// An earlier middleware may have authenticated already.
			if _, ok := UserFromContext(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			res := f.Authenticate(ctx, r)
			if res.Authenticated() {
				ctx = WithUser(ctx, res.User)
				if res.Session != nil {
					ctx = WithSession(ctx, res.Session)
				}
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles rejects requests whose context user does not satisfy the
// role set: 401 without a user, 403 with one. Pseudo-roles apply, so
// RequireRoles() and RequireRoles(identity.RoleEveryone) admit everyone.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if identity.HasRole(user, roles) {
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// RateLimit guards an endpoint with the limiter, keyed by client IP. It
// runs before any credential verification and answers 429 with standard
// rate-limit headers when the window budget is exhausted.
func RateLimit(limiter *ratelimiter.Limiter, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), clientip.FromRequest(r), endpoint)
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				if retry := int(result.RetryAfter().Seconds()); retry > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retry))
				}
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
