// Package authflow runs the per-request authentication state machine that
// bridges the legacy token scheme and the IAM system.
//
// A request may carry credentials in three places: an Authorization bearer
// header, a JWT stored in a cookie, and an opaque session token in a signed
// cookie. Authenticate tries them in that order and stops at the first one
// that resolves to a user. The strategies are isolated from each other: a
// credential that fails verification is logged and skipped, it never aborts
// the chain. A request that exhausts every strategy simply proceeds without
// a user; rejecting it is the role guard's job, not the middleware's.
//
// The outcome of a run is an explicit AuthResult rather than hidden request
// mutation. The net/http adapter attaches the result to the request context
// at the edge:
//
//	flow := authflow.New(codec, verifier, mapper, legacySvc, mem.Users, mem.Sessions)
//	handler := flow.Middleware()(authflow.RequireRoles("admin")(adminHandler))
//
// Handlers read the authenticated user back with UserFromContext.
package authflow
