package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the read side of a validated token payload.
type Claims interface {
	Subject() string
	Expires() time.Time
	IssuedAt() time.Time
}

// AccessClaims is the concrete claim set carried by issued tokens. The wire
// payload is intentionally small: {sub, exp} plus iat/jti/iss/aud metadata.
type AccessClaims struct {
	jwt.RegisteredClaims
}

var _ Claims = (*AccessClaims)(nil)

// Subject returns the subject claim, the user identifier the token
// represents.
func (c *AccessClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
