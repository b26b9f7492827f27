package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemory is a process-local revocation list.
type InMemory struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
}

// WithClock overrides the clock for expiry tests.
func (l *InMemory) WithClock(clock func() time.Time) *InMemory {
	l.clock = clock
	return l
}

func (l *InMemory) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.clock().Add(ttl)
	return nil
}

func (l *InMemory) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	expiry, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if l.clock().After(expiry) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}
