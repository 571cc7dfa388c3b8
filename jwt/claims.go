package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the token_type claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the registered claims plus the cpipeline extensions.
type Claims struct {
	jwt.RegisteredClaims

	TokenType   string `json:"token_type"`
	UserID      uint   `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// IssuedAtTime returns iat, or the zero time when absent
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// TTL returns remaining valid time
func (c *Claims) TTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}

// Identity is the user data copied into access tokens
type Identity struct {
	Subject     string
	UserID      uint
	Email       string
	IsSuperuser bool
}

func (c *Claims) identity() Identity {
	return Identity{
		Subject:     c.Subject,
		UserID:      c.UserID,
		Email:       c.Email,
		IsSuperuser: c.IsSuperuser,
	}
}
