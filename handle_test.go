package taskz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandle[R any](fn taskFunc) Handle[R] {
	t := newTask("test", 0, nil, context.Background(), fn)
	return newHandle[R](t)
}

func TestHandle(t *testing.T) {
	t.Run("zero handle reports ErrTaskUninitialized or false from every method", func(t *testing.T) {
		var h Handle[int]
		assert.False(t, h.IsReady())
		assert.False(t, h.HasValue())
		assert.False(t, h.HasException())
		assert.False(t, h.InterruptionRequested())

		_, err := h.Get()
		assert.ErrorIs(t, err, ErrTaskUninitialized)
		assert.ErrorIs(t, h.Wait(), ErrTaskUninitialized)
		assert.ErrorIs(t, h.Interrupt(), ErrTaskUninitialized)
		assert.False(t, h.WaitFor(time.Millisecond))
		assert.False(t, h.WaitUntil(time.Now()))
		assert.False(t, h.InterruptAndWaitFor(time.Millisecond))
		assert.False(t, h.InterruptAndWaitUntil(time.Now()))
	})

	t.Run("Get returns the typed value on success", func(t *testing.T) {
		h := newTestHandle[int](func(context.Context) (interface{}, error) {
			return 42, nil
		})
		h.t.ec.start()

		v, err := h.Get()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.True(t, h.HasValue())
		assert.False(t, h.HasException())
	})

	t.Run("Get surfaces the exception", func(t *testing.T) {
		boom := errors.New("boom")
		h := newTestHandle[int](func(context.Context) (interface{}, error) {
			return nil, boom
		})
		h.t.ec.start()

		_, err := h.Get()
		assert.ErrorIs(t, err, boom)
		var te *TaskError
		assert.ErrorAs(t, err, &te)
		assert.False(t, te.Interrupted)
		assert.True(t, h.HasException())
	})

	t.Run("Get reports a wrong-type assertion as ErrLockError", func(t *testing.T) {
		h := newTestHandle[string](func(context.Context) (interface{}, error) {
			return 42, nil
		})
		h.t.ec.start()

		_, err := h.Get()
		assert.ErrorIs(t, err, ErrLockError)
	})

	t.Run("Interrupt before start causes the task to end interrupted", func(t *testing.T) {
		h := newTestHandle[int](func(context.Context) (interface{}, error) {
			t.Fatal("task body should not run once interrupted before start")
			return 0, nil
		})
		require.NoError(t, h.Interrupt())
		h.t.ec.start()

		_, err := h.Get()
		assert.ErrorIs(t, err, ErrInterrupted)
	})

	t.Run("WaitFor reports false before completion and true after", func(t *testing.T) {
		h := newTestHandle[int](func(context.Context) (interface{}, error) {
			return 1, nil
		})

		assert.False(t, h.WaitFor(20*time.Millisecond))

		go h.t.ec.start()
		assert.True(t, h.WaitFor(time.Second))
	})

	t.Run("Wait discards the value and reports nil on success", func(t *testing.T) {
		h := newTestHandle[int](func(context.Context) (interface{}, error) {
			return 9, nil
		})
		h.t.ec.start()
		assert.NoError(t, h.Wait())
	})
}
