package taskz

import (
	"context"
	"fmt"
)

// OwnThread executes fn synchronously on the caller's goroutine before
// returning, per spec.md §4.9's own_thread adapter. The returned handle is
// already ready by the time OwnThread returns. Per spec.md §4.9's
// precondition, calling this from inside a pool worker panics.
func OwnThread[R any](ctx context.Context, name string, fn func(context.Context) (R, error)) Handle[R] {
	if _, ok := taskContextFrom(ctx); ok {
		panic(fmt.Errorf("taskz: OwnThread called from inside a pool worker: %w", ErrLockError))
	}

	t := newTask(name, 0, nil, ctx, func(c context.Context) (interface{}, error) {
		return fn(c)
	})
	t.ec.start()
	return newHandle[R](t)
}

// NewThread spawns a dedicated goroutine to run fn, per spec.md §4.9's
// new_thread adapter, grounded on the teacher's Scaffold fire-and-forget
// goroutine + context.WithoutCancel idiom (scaffold.go) — adapted here from
// fire-and-forget into a joinable, result-bearing thread: the returned
// handle's Get/Wait block on the task's own sink rather than discarding the
// outcome. Per spec.md §4.9's precondition, calling this from inside a pool
// worker panics.
func NewThread[R any](ctx context.Context, name string, fn func(context.Context) (R, error)) Handle[R] {
	if _, ok := taskContextFrom(ctx); ok {
		panic(fmt.Errorf("taskz: NewThread called from inside a pool worker: %w", ErrLockError))
	}

	bgCtx := context.WithoutCancel(ctx)
	t := newTask(name, 0, nil, bgCtx, func(c context.Context) (interface{}, error) {
		return fn(c)
	})

	go t.ec.start()

	return newHandle[R](t)
}
