package pipeline

import "hrgate/internal/verify/models"

// HasPermissions decides permission membership for a role against a required
// set. AND semantics: every required permission must be present.
//
// The wildcard check runs before any iteration over the required set so a
// wildcard role answers in O(1) regardless of how many permissions a policy
// demands. Pure function, safe for concurrent use across sessions.
func HasPermissions(role models.Role, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if role.HasWildcard() {
		return true
	}
	for _, perm := range required {
		if !role.HasPermission(perm) {
			return false
		}
	}
	return true
}

// MissingPermissions returns the required permissions the role lacks, in the
// order the policy declared them. Empty for wildcard roles.
func MissingPermissions(role models.Role, required []string) []string {
	if len(required) == 0 || role.HasWildcard() {
		return nil
	}
	var missing []string
	for _, perm := range required {
		if !role.HasPermission(perm) {
			missing = append(missing, perm)
		}
	}
	return missing
}
