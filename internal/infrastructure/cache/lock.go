package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agriloan-backend/pkg/id"
)

var (
	ErrLockHeld = errors.New("lock held by another owner")
	ErrLockLost = errors.New("lock ownership lost")
)

// only the owner's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// only the owner's token may extend the key
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Lock is a distributed mutex over a single redis key. While held, the TTL is
// renewed every ttl/3; the TTL only bounds how long a crashed owner blocks
// others.
type Lock struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	every time.Duration
}

func NewLock(rdb *redis.Client, key string, ttl time.Duration) *Lock {
	every := ttl / 3
	if every <= 0 {
		every = time.Millisecond
	}
	return &Lock{rdb: rdb, key: key, ttl: ttl, every: every}
}

// Acquire takes the lock or fails with ErrLockHeld. The returned context is
// cancelled with ErrLockLost as its cause once ownership can no longer be
// guaranteed; work guarded by the lock should run under it. release stops the
// renewal and deletes the key if still owned.
func (l *Lock) Acquire(ctx context.Context) (context.Context, func(context.Context) error, error) {
	token := id.NewID32()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrLockHeld
	}

	held, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	go l.keepAlive(held, cancel, token, done)

	release := func(ctx context.Context) error {
		cancel(nil)
		<-done
		return releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}
	return held, release, nil
}

func (l *Lock) keepAlive(ctx context.Context, lose context.CancelCauseFunc, token string, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(l.every)
	defer t.Stop()

	renewed := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		n, err := refreshScript.Run(ctx, l.rdb, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		switch {
		case ctx.Err() != nil:
			return
		case err == nil && n == 1:
			renewed = time.Now()
		case err == nil:
			lose(ErrLockLost)
			return
		case time.Since(renewed) >= l.ttl:
			// key has expired on the server by now
			lose(fmt.Errorf("%w: %w", ErrLockLost, err))
			return
		}
	}
}
