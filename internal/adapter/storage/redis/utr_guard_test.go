package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTRGuard_Acquire(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	guard := NewUTRGuard(client)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "UTR123", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first delivery should hold the slot")

	ok, err = guard.Acquire(ctx, "UTR123", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second delivery must see the slot taken")
}

func TestUTRGuard_DifferentUTRsIndependent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	guard := NewUTRGuard(client)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "UTR-A", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, "UTR-B", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUTRGuard_ReleaseFreesSlot(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	guard := NewUTRGuard(client)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "UTR123", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, guard.Release(ctx, "UTR123"))

	ok, err = guard.Acquire(ctx, "UTR123", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released slot should be reusable")
}

func TestUTRGuard_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	guard := NewUTRGuard(client)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "UTR123", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A crashed handler never releases; the TTL unblocks redelivery.
	s.FastForward(2 * time.Minute)

	ok, err = guard.Acquire(ctx, "UTR123", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
