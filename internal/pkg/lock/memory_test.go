package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_ExclusivePerKey(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	release, err := locker.Acquire(ctx, "payroll:calculate:p1", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "payroll:calculate:p1", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	otherRelease, err := locker.Acquire(ctx, "payroll:calculate:p2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, otherRelease(ctx))

	require.NoError(t, release(ctx))

	again, err := locker.Acquire(ctx, "payroll:calculate:p1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestMemoryLocker_ExpiredLockCanBeTaken(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()
	now := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return now }

	staleRelease, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	freshRelease, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the stale owner must not drop the fresh owner's lock
	require.NoError(t, staleRelease(ctx))
	_, err = locker.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, freshRelease(ctx))
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryLocker().Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
