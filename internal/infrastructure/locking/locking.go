package locking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another holder owns the key.
var ErrHeld = errors.New("lock already held")

const keyPrefix = "lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker hands out short-lived redis locks (SET NX PX). A nil Locker or nil
// client grants every lock, so callers run unchanged without redis.
type Locker struct {
	Rdb *redis.Client
	TTL time.Duration
}

// Lock is a held lock; Release is safe to call more than once.
type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

// Acquire takes the lock for name or returns ErrHeld.
func (l *Locker) Acquire(ctx context.Context, name string) (*Lock, error) {
	if l == nil || l.Rdb == nil {
		return &Lock{}, nil
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	token := uuid.New().String()
	ok, err := l.Rdb.SetNX(ctx, keyPrefix+name, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lock{rdb: l.Rdb, key: keyPrefix + name, token: token}, nil
}

// Release deletes the key only if this lock still owns it.
func (lk *Lock) Release(ctx context.Context) error {
	if lk == nil || lk.rdb == nil {
		return nil
	}
	return releaseScript.Run(ctx, lk.rdb, []string{lk.key}, lk.token).Err()
}
