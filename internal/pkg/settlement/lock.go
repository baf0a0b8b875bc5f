package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/donote/donote/internal/pkg/cache"
)

// RunLockKey is the Redis key that serializes settlement runs.
const RunLockKey = "settlement:run"

// Lock is a held run lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker excludes overlapping runs. Acquire returns ErrRunInProgress when
// another run holds the lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type redisLocker struct {
	locker *cache.Locker
}

// NewRedisLocker adapts a cache.Locker.
func NewRedisLocker(l *cache.Locker) Locker {
	return &redisLocker{locker: l}
}

func (r *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := r.locker.Acquire(ctx, key, ttl)
	if errors.Is(err, cache.ErrLockHeld) {
		return nil, ErrRunInProgress
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}
