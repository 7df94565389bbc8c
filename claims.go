package supportdesk

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload we accept from the external identity provider.
// Only the email claim is consulted for identity resolution.
type JWTClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time, zero when the claim is absent
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time, zero when the claim is absent
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
