package jwt

import (
	"context"
	"time"
)

// TokenStore records revoked tokens by JTI and per-subject revocation times.
type TokenStore interface {
	// IsBlacklisted reports whether the token with this JTI was revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// AddToBlacklist revokes a JTI until ttl elapses
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// BlacklistUserTokens revokes every token of subject issued at or before at
	BlacklistUserTokens(ctx context.Context, subject string, at time.Time, ttl time.Duration) error

	// IsUserBlacklisted reports whether a token issued at issuedAt falls under a subject revocation
	IsUserBlacklisted(ctx context.Context, subject string, issuedAt time.Time) (bool, error)

	Close() error
}
