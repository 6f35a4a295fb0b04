package session

// Decision is the outcome of an authorization check. Deny and
// RedirectToLogin are deliberately distinct: the former renders an in-place
// forbidden notice, the latter leaves the protected page entirely.
type Decision int

const (
	// DecisionRedirectToLogin means no identity is present.
	DecisionRedirectToLogin Decision = iota
	// DecisionAllow grants access to the route.
	DecisionAllow
	// DecisionDeny means the identity lacks the required role.
	DecisionDeny
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	case DecisionRedirectToLogin:
		return "redirect_to_login"
	default:
		return "unknown"
	}
}

// Authorize maps a signed-in identity and a route's role requirement to a
// decision. Pass a nil identity for "not signed in" and an empty
// requiredRole for routes that only require authentication.
//
// Admin supersedes every specific role requirement; this mirrors intended
// product behavior, not an oversight. All role comparison is
// case-insensitive.
func Authorize(identity *Identity, requiredRole Role) Decision {
	if identity == nil {
		return DecisionRedirectToLogin
	}

	if identity.Role.IsAdmin() {
		return DecisionAllow
	}

	if requiredRole == "" {
		return DecisionAllow
	}

	if identity.Role.Equals(requiredRole) {
		return DecisionAllow
	}

	return DecisionDeny
}
