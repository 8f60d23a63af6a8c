package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexLocker(t *testing.T) {
	locker := NewMutexLocker()

	require.NoError(t, locker.Acquire(context.Background()))

	acquired, err := locker.TryAcquire()
	require.NoError(t, err)
	assert.False(t, acquired)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = locker.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, locker.Release())
	assert.ErrorIs(t, locker.Release(), ErrNotLocked)

	acquired, err = locker.TryAcquire()
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMutexLocker_MaxWait(t *testing.T) {
	locker := NewMutexLocker().WithMaxWait(20 * time.Millisecond)
	require.NoError(t, locker.Acquire(context.Background()))

	start := time.Now()
	assert.ErrorIs(t, locker.Acquire(context.Background()), ErrLockTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestLocker_CallerCancellationIsNotTimeout(t *testing.T) {
	lockers := map[string]func(t *testing.T) (held, waiting Locker){
		"mutex": func(t *testing.T) (Locker, Locker) {
			locker := NewMutexLocker().WithMaxWait(time.Second)
			return locker, locker
		},
		"arquivo": func(t *testing.T) (Locker, Locker) {
			path := filepath.Join(t.TempDir(), "state.lock")
			return NewFileLocker(path, time.Millisecond, 0), NewFileLocker(path, time.Millisecond, time.Second)
		},
	}

	for name, build := range lockers {
		t.Run(name, func(t *testing.T) {
			held, waiting := build(t)
			require.NoError(t, held.Acquire(context.Background()))
			defer held.Release()

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()

			err := waiting.Acquire(ctx)
			assert.ErrorIs(t, err, context.Canceled)
			assert.NotErrorIs(t, err, ErrLockTimeout)
		})
	}
}

func TestFileLocker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.lock")
	first := NewFileLocker(path, time.Millisecond, 0)
	second := NewFileLocker(path, time.Millisecond, 30*time.Millisecond)

	require.NoError(t, first.Acquire(context.Background()))

	acquired, err := second.TryAcquire()
	require.NoError(t, err)
	assert.False(t, acquired)

	assert.ErrorIs(t, second.Acquire(context.Background()), ErrLockTimeout)

	released := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		assert.NoError(t, first.Release())
		close(released)
	}()

	waiting := NewFileLocker(path, time.Millisecond, 0)
	require.NoError(t, waiting.Acquire(context.Background()))
	<-released

	require.NoError(t, waiting.Release())
	assert.ErrorIs(t, waiting.Release(), ErrNotLocked)
}
