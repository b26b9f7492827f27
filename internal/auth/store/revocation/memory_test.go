package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	list := NewInMemory()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestInMemory_EntryExpiresWithTokenLifetime(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	list := NewInMemory().WithClock(func() time.Time { return now })

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "an expired token needs no revocation entry")
}

func TestInMemory_IgnoresEmptyAndExpired(t *testing.T) {
	ctx := context.Background()
	list := NewInMemory()

	require.NoError(t, list.Revoke(ctx, "", time.Hour))
	require.NoError(t, list.Revoke(ctx, "jti-past", -time.Minute))

	revoked, err := list.IsRevoked(ctx, "jti-past")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = list.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}
