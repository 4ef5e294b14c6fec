// Package identity maps a verified external identity (an IAM session or
// JWT user) onto the canonical user record, producing the per-request
// MappedUser value downstream role guards authorize against.
//
// Role checking is a free function over the MappedUser value rather than a
// method closure attached to it. Four pseudo-roles have structural
// semantics evaluated without consulting the stored role list: everyone,
// any authenticated user, verified, and no-one. The no-one pseudo-role is
// a deny-override: its presence in a checked set loses even for admins.
//
// Unknown-but-verified users are never granted stored roles; they get a
// minimal mapped user that only the pseudo-roles can match, and
// LinkOrCreateUser persists them with an empty role list.
package identity
