// Package store defines the persistence model shared by both authentication
// systems and provides MongoDB-backed and in-memory implementations.
//
// The canonical user collection is the single source of truth for identity
// and roles. The IAM system keeps its own user, account (credential), session
// and jwks collections alongside it; records are linked through the canonical
// user's iamId field. Lookups that cross the two systems must tolerate id
// representation mismatches: the session collection may hold the owning user
// reference as a native ObjectID or as a plain string, so joins try the
// native id, the stringified id, and the iamId field in that order.
//
// All Find methods resolve "not found" to a nil record and a nil error.
// Errors are reserved for infrastructure failure.
package store
