package taskz

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// anonTaskSeq numbers tasks created without a Pool (OwnThread/NewThread),
// which have no Pool.nextTaskSeq counter of their own to draw from.
var anonTaskSeq atomic.Uint64

// taskFunc is the type-erased body a task wraps: the public, generic
// Submit/Fork/OwnThread/NewThread entry points adapt a typed
// func(context.Context) (R, error) into this shape so heterogeneous result
// types can share one scheduler, one set of queues, and one deque.
type taskFunc func(context.Context) (interface{}, error)

// task is the internal, type-erased unit of scheduling: spec.md §3's Task
// plus §4.4's Callable, merged into one struct because in this port the
// callable IS the thing queues and deques hold (the original's separate
// "work item" wrapping a callable-or-live-context collapses: the execContext
// itself is always live once a task is minted).
//
//nolint:govet // fieldalignment: clarity over a few bytes of padding
type task struct {
	id       string
	name     string
	priority int

	sink      *sink
	ec        *execContext
	clock     clockz.Clock
	tc        *taskContext
	createdAt time.Time

	// lifetimeCtx covers the task from enqueue to sink completion
	// (Pool.Submit/Fork opens the span carried by it); worker.execute
	// opens a child span from lifetimeCtx for each resume. finishLifetime
	// closes the parent span; it is a no-op if Pool never set one.
	lifetimeCtx    context.Context
	finishLifetime func()

	pool *Pool
}

// newTask wraps fn as a Callable per spec.md §4.4: invoking it runs fn once
// and posts exactly one outcome (value, exception, or interruption) to the
// sink. baseCtx is the context the task body observes; it carries
// cancellation from the submitter but is extended with a *taskContext so
// this_task primitives work from inside fn.
func newTask(name string, priority int, pool *Pool, baseCtx context.Context, fn taskFunc) *task {
	clock := clockz.Clock(clockz.RealClock)
	var seq uint64
	if pool != nil {
		clock = pool.getClock()
		seq = pool.nextTaskSeq.Add(1)
	} else {
		seq = anonTaskSeq.Add(1)
	}

	t := &task{
		id:             fmt.Sprintf("%s-%d", name, seq),
		name:           name,
		priority:       priority,
		sink:           newSink(),
		pool:           pool,
		clock:          clock,
		createdAt:      clock.Now(),
		lifetimeCtx:    baseCtx,
		finishLifetime: func() {},
	}
	t.tc = &taskContext{task: t, workerID: -1}

	t.ec = newExecContext(func(yield func()) {
		if t.sink.interruptionRequested() {
			_ = t.sink.setInterrupted(t.wrapError(fmt.Errorf("%s: %w", name, ErrInterrupted), true, t.createdAt))
			return
		}

		tc := t.tc
		tc.yield = yield
		ctx := context.WithValue(baseCtx, taskContextKey{}, tc)

		start := t.clock.Now()
		var (
			result interface{}
			err    error
		)
		func() {
			defer recoverFromPanic(&err, name)
			result, err = fn(ctx)
		}()

		switch {
		case err != nil && errors.Is(err, ErrInterrupted):
			_ = t.sink.setInterrupted(t.wrapError(err, true, start))
		case err != nil:
			var pe *panicError
			if errors.As(err, &pe) {
				capitan.Error(ctx, SignalTaskPanicked,
					FieldName.Field(name),
					FieldTaskID.Field(t.id),
					FieldError.Field(err.Error()),
				)
			}
			_ = t.sink.setException(t.wrapError(err, false, start))
		default:
			_ = t.sink.setValue(result)
		}
	})

	return t
}

// path renders the pool -> worker -> task chain a failure traveled through,
// the Go rendition of the teacher's processor-chain Path but naming the
// scheduling chain instead: a pool-less task (OwnThread/NewThread) has no
// worker to name.
func (t *task) path() []string {
	if t.pool == nil {
		return []string{t.name}
	}
	return []string{"pool", fmt.Sprintf("worker-%d", t.tc.workerID), t.name}
}

// wrapError builds the TaskError a failed, panicked, or interrupted task
// delivers through its sink, grounded on the teacher's Apply/apply.go
// start-then-time.Since(start) construction of Error[T].
func (t *task) wrapError(err error, interrupted bool, start time.Time) *TaskError {
	now := t.clock.Now()
	return &TaskError{
		Timestamp:   now,
		Err:         err,
		Path:        t.path(),
		Duration:    now.Sub(start),
		Timeout:     errors.Is(err, context.DeadlineExceeded),
		Canceled:    errors.Is(err, context.Canceled),
		Interrupted: interrupted,
	}
}

// taskContextKey is the unexported context.Context key under which a
// *taskContext is stashed, the Go rendition of spec.md §9's "thread-local
// current-worker pointer becomes explicit worker context stored in a
// task-local slot."
type taskContextKey struct{}

// taskContext is the task-local slot installed on the context.Context
// handed to a running task body, backing the this_task primitives of
// spec.md §4.10.
type taskContext struct {
	task     *task
	yield    func()
	workerID int
}

func taskContextFrom(ctx context.Context) (*taskContext, bool) {
	tc, ok := ctx.Value(taskContextKey{}).(*taskContext)
	return tc, ok
}
