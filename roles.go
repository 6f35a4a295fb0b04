package session

import "strings"

// Role is a user's global role as carried in the token's role claim.
// Comparisons are always case-insensitive; NormalizeRole is the canonical
// upper-case form used everywhere inside this package.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleHR          Role = "HR"
	RoleInterviewer Role = "INTERVIEWER"
)

// NormalizeRole upper-cases a raw role claim for comparison.
func NormalizeRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsValid checks if the role is one of the predefined roles. The gate does
// not require validity; unknown roles are still compared case-insensitively.
func (r Role) IsValid() bool {
	switch NormalizeRole(string(r)) {
	case RoleAdmin, RoleHR, RoleInterviewer:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role carries the blanket admin privilege.
func (r Role) IsAdmin() bool {
	return NormalizeRole(string(r)) == RoleAdmin
}

// Equals compares two roles ignoring case.
func (r Role) Equals(other Role) bool {
	return NormalizeRole(string(r)) == NormalizeRole(string(other))
}

// AllRoles returns the predefined roles.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleHR,
		RoleInterviewer,
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(raw string) (Role, bool) {
	role := NormalizeRole(raw)
	return role, role.IsValid()
}
