package lock

import (
	"context"
	"errors"
	"time"
)

var ErrNotAcquired = errors.New("lock is held by another owner")

// Release gives the lock back. Releasing a lock that already expired and was
// taken by someone else is a no-op.
type Release func(ctx context.Context) error

// Locker hands out named, expiring, non-reentrant locks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
