package taskz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsInPool(t *testing.T) {
	assert.False(t, RunsInPool(context.Background()))

	pool, err := NewPool(PoolSize(1))
	require.NoError(t, err)
	defer pool.Shutdown(context.Background()) //nolint:errcheck

	h, err := Submit(context.Background(), pool, "check-runs-in-pool", func(ctx context.Context) (bool, error) {
		return RunsInPool(ctx), nil
	})
	require.NoError(t, err)
	v, err := h.Get()
	require.NoError(t, err)
	assert.True(t, v)
}

func TestYield(t *testing.T) {
	t.Run("panics outside a pool worker", func(t *testing.T) {
		assert.Panics(t, func() {
			Yield(context.Background())
		})
	})

	t.Run("suspends and resumes a running task", func(t *testing.T) {
		pool, err := NewPool(PoolSize(1))
		require.NoError(t, err)
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		h, err := Submit(context.Background(), pool, "yields-twice", func(ctx context.Context) (int, error) {
			ticks := 0
			Yield(ctx)
			ticks++
			Yield(ctx)
			ticks++
			return ticks, nil
		})
		require.NoError(t, err)
		v, err := h.Get()
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})
}

func TestWorkerID(t *testing.T) {
	t.Run("false outside a pool worker", func(t *testing.T) {
		id, ok := WorkerID(context.Background())
		assert.False(t, ok)
		assert.Equal(t, 0, id)
	})

	t.Run("reports a valid worker index inside a pool", func(t *testing.T) {
		pool, err := NewPool(PoolSize(3))
		require.NoError(t, err)
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		h, err := Submit(context.Background(), pool, "reports-worker-id", func(ctx context.Context) (int, error) {
			id, ok := WorkerID(ctx)
			if !ok {
				return -1, nil
			}
			return id, nil
		})
		require.NoError(t, err)
		v, err := h.Get()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
	})
}

func TestInterruptionRequestedThisTask(t *testing.T) {
	t.Run("false outside a pool worker", func(t *testing.T) {
		assert.False(t, InterruptionRequested(context.Background()))
	})

	t.Run("observes Handle.Interrupt at a cooperative checkpoint", func(t *testing.T) {
		pool, err := NewPool(PoolSize(1))
		require.NoError(t, err)
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		started := make(chan struct{})
		h, err := Submit(context.Background(), pool, "checks-interruption", func(ctx context.Context) (int, error) {
			close(started)
			for {
				Yield(ctx)
				if InterruptionRequested(ctx) {
					return 0, ErrInterrupted
				}
			}
		})
		require.NoError(t, err)

		<-started
		require.NoError(t, h.Interrupt())
		err = h.Wait()
		assert.ErrorIs(t, err, ErrInterrupted)
	})
}
