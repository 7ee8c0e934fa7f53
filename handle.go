package taskz

import (
	"context"
	"time"
)

// Handle is the public, typed future half of spec.md §3's sink/future pair.
// It wraps a *task so the untyped scheduler (queues, deques, workers) can
// hold heterogeneous tasks while callers still get back a concretely typed
// result, the same type-erase-internally/type-assert-at-the-edge shape the
// teacher uses for its Result[T]/chain outputs.
//
// The zero value of Handle is not usable: Get, GetContext, Wait, Interrupt
// and InterruptAndWait report ErrTaskUninitialized, and the bool-returning
// methods report false (they have no error to return), mirroring the teacher's nil-receiver guards (see
// Error.Unwrap in the original error.go).
type Handle[R any] struct {
	t *task
}

func newHandle[R any](t *task) Handle[R] {
	return Handle[R]{t: t}
}

// IsReady reports whether the task has produced an outcome (value,
// exception, or interruption) without blocking.
func (h Handle[R]) IsReady() bool {
	if h.t == nil {
		return false
	}
	return h.t.sink.isReady()
}

// HasValue reports whether the task completed with a value. False while
// pending or if it ended in exception/interruption.
func (h Handle[R]) HasValue() bool {
	if h.t == nil {
		return false
	}
	return h.t.sink.hasValue()
}

// HasException reports whether the task ended in an exception or an
// interruption.
func (h Handle[R]) HasException() bool {
	if h.t == nil {
		return false
	}
	return h.t.sink.hasException()
}

// InterruptionRequested reports whether Interrupt has been called on this
// handle, regardless of whether the task has observed it yet.
func (h Handle[R]) InterruptionRequested() bool {
	if h.t == nil {
		return false
	}
	return h.t.sink.interruptionRequested()
}

// Get blocks until the task produces an outcome and returns its value,
// type-asserted back to R. A task that ended in exception or interruption
// reports that error; a zero handle reports ErrTaskUninitialized.
func (h Handle[R]) Get() (R, error) {
	var zero R
	if h.t == nil {
		return zero, ErrTaskUninitialized
	}

	v, kind, err := h.t.sink.wait()
	return h.resolve(v, kind, err, zero)
}

// GetContext is Get's pool-aware counterpart, per spec.md §5's "waiters
// inside the pool must use the pool-aware future, which suspends the
// hosting context rather than blocking the thread": when ctx is a task body
// currently running inside a pool worker, GetContext cooperatively yields
// instead of parking the worker's goroutine, so a parent task that forks
// children and waits on them never occupies its worker while they run.
// Outside a pool worker it behaves exactly like Get.
//
// Waiting on a just-Forked child this way requires a pool of at least two
// workers: yielding re-pushes the parent to the bottom of its own local
// deque, so on a single-worker pool the owner pops itself straight back off
// and the child can only run via a steal that never comes.
func (h Handle[R]) GetContext(ctx context.Context) (R, error) {
	var zero R
	if h.t == nil {
		return zero, ErrTaskUninitialized
	}

	tc, ok := taskContextFrom(ctx)
	if !ok || tc.task.pool == nil {
		return h.Get()
	}

	for !h.t.sink.isReady() {
		tc.yield()
	}
	v, kind, err := h.t.sink.wait()
	return h.resolve(v, kind, err, zero)
}

// Wait blocks until the task produces an outcome, discarding the value.
// Equivalent to Get but avoids the type assertion when the caller only
// cares about completion.
func (h Handle[R]) Wait() error {
	if h.t == nil {
		return ErrTaskUninitialized
	}
	_, _, err := h.t.sink.wait()
	return err
}

// WaitUntil blocks until the task produces an outcome or deadline passes,
// reporting false in the latter case. A zero handle always reports false.
func (h Handle[R]) WaitUntil(deadline time.Time) bool {
	if h.t == nil {
		return false
	}
	_, _, _, ok := h.t.sink.waitDeadline(deadline)
	return ok
}

// WaitFor blocks until the task produces an outcome or d elapses, reporting
// false in the latter case.
func (h Handle[R]) WaitFor(d time.Duration) bool {
	if h.t == nil {
		return false
	}
	return h.WaitUntil(h.t.clock.Now().Add(d))
}

// Interrupt sets the sticky interruption flag. A task that has not started
// yet ends interrupted without running its body; a running body sees the
// flag only by calling this_task.InterruptionRequested (Yield itself does
// not check it). It does not block and does not guarantee the task stops
// promptly; a running body that never calls InterruptionRequested runs to
// completion.
func (h Handle[R]) Interrupt() error {
	if h.t == nil {
		return ErrTaskUninitialized
	}
	h.t.sink.requestInterrupt()
	return nil
}

// InterruptAndWait requests interruption and blocks until the task reaches
// an outcome, per spec.md §4.6.
func (h Handle[R]) InterruptAndWait() error {
	if err := h.Interrupt(); err != nil {
		return err
	}
	return h.Wait()
}

// InterruptAndWaitFor requests interruption and waits up to d for an
// outcome, reporting false if d elapses first.
func (h Handle[R]) InterruptAndWaitFor(d time.Duration) bool {
	if h.t == nil {
		return false
	}
	h.t.sink.requestInterrupt()
	return h.WaitFor(d)
}

// InterruptAndWaitUntil requests interruption and waits until deadline for
// an outcome, reporting false if the deadline passes first.
func (h Handle[R]) InterruptAndWaitUntil(deadline time.Time) bool {
	if h.t == nil {
		return false
	}
	h.t.sink.requestInterrupt()
	return h.WaitUntil(deadline)
}

func (h Handle[R]) resolve(v interface{}, kind outcomeKind, err error, zero R) (R, error) {
	switch kind {
	case outcomeValue:
		if v == nil {
			return zero, nil
		}
		r, ok := v.(R)
		if !ok {
			return zero, ErrLockError
		}
		return r, nil
	case outcomeInterrupted, outcomeError:
		return zero, err
	default:
		return zero, ErrLockError
	}
}
