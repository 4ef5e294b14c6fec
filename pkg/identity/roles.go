package identity

import "slices"

// Pseudo-roles with structural semantics. They are never persisted on a
// user record; the role guard evaluates them against the request's
// authentication state instead.
const (
	// RoleEveryone matches any request, authenticated or not.
	RoleEveryone = "S_EVERYONE"

	// RoleUser matches any authenticated user.
	RoleUser = "S_USER"

	// RoleVerified matches authenticated users whose email is verified in
	// either system.
	RoleVerified = "S_VERIFIED"

	// RoleNoOne never matches and overrides every other role in the checked
	// set, including stored roles the user actually has.
	RoleNoOne = "S_NO_ONE"
)

// RoleAdmin is the conventional elevated role stored on user records.
const RoleAdmin = "admin"

// HasRole reports whether the user satisfies a role requirement. The
// checked set is an OR of roles, except that RoleNoOne is a deny-override:
// if present, the check fails regardless of everything else. A nil user is
// an unauthenticated request and can only satisfy RoleEveryone. An empty
// checked set places no requirement and always passes.
func HasRole(user *MappedUser, roles []string) bool {
	if slices.Contains(roles, RoleNoOne) {
		return false
	}
	if len(roles) == 0 || slices.Contains(roles, RoleEveryone) {
		return true
	}
	if user == nil {
		return false
	}
	if slices.Contains(roles, RoleUser) {
		return true
	}
	if user.Verified && slices.Contains(roles, RoleVerified) {
		return true
	}
	for _, role := range roles {
		if slices.Contains(user.Roles, role) {
			return true
		}
	}
	return false
}
