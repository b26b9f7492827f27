// Package revocation tracks logged-out access tokens by JTI until their
// natural expiry. Redis is the production implementation so every instance
// sees a logout immediately; the memory list serves tests and single-node
// dev mode.
package revocation

import (
	"context"
	"time"
)

// List is the token revocation contract.
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
