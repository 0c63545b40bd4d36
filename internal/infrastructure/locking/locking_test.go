package locking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Locker{Rdb: rdb, TTL: 5 * time.Second}, mr
}

func TestAcquire_Exclusive(t *testing.T) {
	l, _ := setupLocker(t)
	ctx := context.Background()

	lk, err := l.Acquire(ctx, "cliente:1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "cliente:1")
	assert.ErrorIs(t, err, ErrHeld)

	other, err := l.Acquire(ctx, "cliente:2")
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lk.Release(ctx))
	again, err := l.Acquire(ctx, "cliente:1")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestAcquire_ExpiresAfterTTL(t *testing.T) {
	l, mr := setupLocker(t)
	ctx := context.Background()

	_, err := l.Acquire(ctx, "cliente:1")
	require.NoError(t, err)
	mr.FastForward(6 * time.Second)

	_, err = l.Acquire(ctx, "cliente:1")
	assert.NoError(t, err)
}

func TestRelease_DoesNotDropForeignLock(t *testing.T) {
	l, mr := setupLocker(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "cliente:1")
	require.NoError(t, err)
	mr.FastForward(6 * time.Second)
	_, err = l.Acquire(ctx, "cliente:1")
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists("lock:cliente:1"))
}

func TestNilLocker_AlwaysGrants(t *testing.T) {
	var l *Locker
	lk, err := l.Acquire(context.Background(), "x")
	require.NoError(t, err)
	assert.NoError(t, lk.Release(context.Background()))
}
