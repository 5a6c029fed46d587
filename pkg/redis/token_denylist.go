package redis

import (
	"context"
	"time"
)

// TokenDenylist records revoked token ids until they would have expired anyway.
type TokenDenylist struct {
	prefix string
}

// NewTokenDenylist creates a denylist whose keys start with prefix.
func NewTokenDenylist(prefix string) *TokenDenylist {
	if prefix == "" {
		prefix = "revoked"
	}
	return &TokenDenylist{prefix: prefix}
}

func (d *TokenDenylist) key(jti string) string {
	return d.prefix + ":" + jti
}

// Revoke denylists jti until expiresAt. Already expired tokens are ignored.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return nil
	}
	return Set(ctx, d.key(jti), 1, ttl)
}

// IsRevoked reports whether jti has been revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return Exists(ctx, d.key(jti))
}
