package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the fields of interest embedded in a bearer token payload.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserRole string `json:"role,omitempty"`
}

// Email returns the subject claim; the issuing service puts the account's
// email address in sub.
func (c *TokenClaims) Email() string {
	return c.RegisteredClaims.Subject
}

// Role returns the normalized global role.
func (c *TokenClaims) Role() Role {
	return NormalizeRole(c.UserRole)
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Identity derives the ephemeral identity the session manager owns.
func (c *TokenClaims) Identity() Identity {
	return Identity{
		Email: c.Email(),
		Role:  c.Role(),
	}
}
