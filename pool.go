package taskz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys for Pool observability, grounded on retry.go's
// metricz.Key/registry.Counter/registry.Gauge pattern.
const (
	MetricTasksSubmitted    = metricz.Key("taskz.tasks.submitted")
	MetricTasksCompleted    = metricz.Key("taskz.tasks.completed")
	MetricTasksRejected     = metricz.Key("taskz.tasks.rejected")
	MetricTasksInterrupted  = metricz.Key("taskz.tasks.interrupted")
	MetricActiveWorkers     = metricz.Key("taskz.workers.active")
	MetricGlobalQueueDepth  = metricz.Key("taskz.queue.global_depth")
	MetricStealAttempts     = metricz.Key("taskz.steal.attempts")
	MetricStealSuccesses    = metricz.Key("taskz.steal.successes")
)

// Span names and tags, grounded on retry.go's RetryProcessSpan/
// RetryAttemptSpan parent/child pair: task.lifetime covers a task from
// enqueue to sink completion; task.attempt covers one start/resume.
const (
	TaskLifetimeSpan = tracez.Key("task.lifetime")
	TaskAttemptSpan  = tracez.Key("task.attempt")

	TagTaskName = tracez.Tag("task.name")
	TagTaskID   = tracez.Tag("task.id")
	TagWorkerID = tracez.Tag("task.worker_id")
	TagOutcome  = tracez.Tag("task.outcome")
	TagPoolSize = tracez.Tag("pool.size")
)

// PoolEventKind classifies a PoolEvent.
type PoolEventKind int

const (
	EventSubmitted PoolEventKind = iota
	EventCompleted
	EventRejected
	EventInterrupted
)

// PoolEvent is delivered through the hooks registered by OnSubmitted/
// OnCompleted/OnRejected/OnInterrupted, grounded on the teacher's
// RetryEvent/BackoffEvent hook-payload shape.
type PoolEvent struct {
	Kind      PoolEventKind
	TaskName  string
	Err       error
	Timestamp time.Time
}

// Hook event keys, grounded on retry.go's hookz.Key constants.
const (
	HookSubmitted   = hookz.Key("pool.submitted")
	HookCompleted   = hookz.Key("pool.completed")
	HookRejected    = hookz.Key("pool.rejected")
	HookInterrupted = hookz.Key("pool.interrupted")
)

// Pool is the fixed-size worker pool of spec.md §4.7, grounded on the
// teacher's WorkerPool[T] semaphore-gated concurrency structure
// (workerpool.go) generalized from a per-call semaphore into a real
// fixed-size goroutine pool with its own global queue and work-stealing
// deques.
//
//nolint:govet // fieldalignment: clarity over a few bytes of padding
type Pool struct {
	mu      sync.RWMutex
	workers []*worker
	wg      sync.WaitGroup

	globalQueue workQueue
	fsem        *fastSemaphore
	clock       clockz.Clock

	drain atomic.Bool
	abort atomic.Bool

	busyWorkers atomic.Int64

	shutdownOnce sync.Once

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PoolEvent]

	nextTaskSeq atomic.Uint64
}

// NewPool constructs a Pool from spec.md §4.7's configuration values,
// starting all workers immediately. Returns ErrInvalidPoolSize,
// ErrInvalidStackSize, or ErrInvalidWatermark if an Option rejects its
// argument.
func NewPool(opts ...Option) (*Pool, error) {
	cfg := defaultPoolConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	registry := metricz.New()
	registry.Counter(MetricTasksSubmitted)
	registry.Counter(MetricTasksCompleted)
	registry.Counter(MetricTasksRejected)
	registry.Counter(MetricTasksInterrupted)
	registry.Gauge(MetricActiveWorkers)
	registry.Gauge(MetricGlobalQueueDepth)
	registry.Counter(MetricStealAttempts)
	registry.Counter(MetricStealSuccesses)

	fsem := newFastSemaphore("pool", 0)

	var (
		global workQueue
		err    error
	)
	switch {
	case cfg.bounded && cfg.priority:
		bp, e := NewBoundedPriority(cfg.hwm, cfg.lwm, fsem)
		global, err = bp, e
		if e == nil {
			bp.setClock(cfg.clock)
		}
	case cfg.bounded:
		bf, e := NewBoundedFIFO(cfg.hwm, cfg.lwm, fsem)
		global, err = bf, e
		if e == nil {
			bf.setClock(cfg.clock)
		}
	case cfg.priority:
		global = NewUnboundedPriority(fsem)
	default:
		global = NewUnboundedFIFO(fsem)
	}
	if err != nil {
		return nil, err
	}

	p := &Pool{
		globalQueue: global,
		fsem:        fsem,
		clock:       cfg.clock,
		metrics:     registry,
		tracer:      tracez.New(),
		hooks:       hookz.New[PoolEvent](),
	}

	p.workers = make([]*worker, cfg.size)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}
	registry.Gauge(MetricActiveWorkers).Set(float64(cfg.size))

	p.wg.Add(cfg.size)
	for _, w := range p.workers {
		go w.run()
	}

	return p, nil
}

func (p *Pool) getClock() clockz.Clock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

func (p *Pool) snapshotWorkers() []*worker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ws := make([]*worker, len(p.workers))
	copy(ws, p.workers)
	return ws
}

// Metrics returns the pool's metrics registry.
func (p *Pool) Metrics() *metricz.Registry { return p.metrics }

// Tracer returns the pool's tracer.
func (p *Pool) Tracer() *tracez.Tracer { return p.tracer }

// OnSubmitted registers a hook fired after every successful Submit/Fork.
func (p *Pool) OnSubmitted(handler func(context.Context, PoolEvent) error) error {
	_, err := p.hooks.Hook(HookSubmitted, handler)
	return err
}

// OnCompleted registers a hook fired after a task's sink is filled with a
// value.
func (p *Pool) OnCompleted(handler func(context.Context, PoolEvent) error) error {
	_, err := p.hooks.Hook(HookCompleted, handler)
	return err
}

// OnRejected registers a hook fired when Submit/Fork rejects a task.
func (p *Pool) OnRejected(handler func(context.Context, PoolEvent) error) error {
	_, err := p.hooks.Hook(HookRejected, handler)
	return err
}

// OnInterrupted registers a hook fired when a task's sink is filled with an
// interruption.
func (p *Pool) OnInterrupted(handler func(context.Context, PoolEvent) error) error {
	_, err := p.hooks.Hook(HookInterrupted, handler)
	return err
}

// submitTask is the shared body of Submit/SubmitPriority: construct a task,
// enqueue it on the global queue, and return its handle. Per spec.md §4.7,
// submission from inside a pool worker would use a lighter-weight
// pool-internal future; taskz's sink is already lock-guarded and equally
// cheap either way, so no separate fast path exists (documented as an Open
// Question resolution in DESIGN.md).
func submitTask[R any](ctx context.Context, p *Pool, name string, priority int, fn func(context.Context) (R, error)) (Handle[R], error) {
	var zero Handle[R]

	if p.drain.Load() || p.abort.Load() {
		p.metrics.Counter(MetricTasksRejected).Inc()
		p.emitReject(ctx, name, ErrTaskRejected)
		return zero, ErrTaskRejected
	}

	lifetimeCtx, span := p.tracer.StartSpan(ctx, TaskLifetimeSpan)
	span.SetTag(TagTaskName, name)

	t := newTask(name, priority, p, lifetimeCtx, func(c context.Context) (interface{}, error) {
		return fn(c)
	})
	t.finishLifetime = span.Finish
	span.SetTag(TagTaskID, t.id)

	if err := p.globalQueue.put(ctx, t); err != nil {
		span.SetTag(TagOutcome, "rejected")
		span.Finish()
		p.metrics.Counter(MetricTasksRejected).Inc()
		p.emitReject(ctx, name, err)
		return zero, err
	}

	p.metrics.Counter(MetricTasksSubmitted).Inc()
	p.metrics.Gauge(MetricGlobalQueueDepth).Set(float64(p.approxGlobalDepth()))
	if p.hooks.ListenerCount(HookSubmitted) > 0 {
		_ = p.hooks.Emit(ctx, HookSubmitted, PoolEvent{ //nolint:errcheck
			Kind:      EventSubmitted,
			TaskName:  name,
			Timestamp: p.getClock().Now(),
		})
	}

	return newHandle[R](t), nil
}

// approxGlobalDepth reports the global queue's size for the depth gauge when
// the queue exposes one; priority/unbounded FIFO queues report 0 rather
// than via a non-uniform interface method (Size is only meaningful on
// bounded variants in this port).
func (p *Pool) approxGlobalDepth() int {
	if bf, ok := p.globalQueue.(*BoundedFIFO); ok {
		return bf.Size()
	}
	return 0
}

func (p *Pool) emitReject(ctx context.Context, name string, err error) {
	capitan.Warn(ctx, SignalQueueRejected,
		FieldName.Field(name),
		FieldError.Field(err.Error()),
	)
	if p.hooks.ListenerCount(HookRejected) > 0 {
		_ = p.hooks.Emit(ctx, HookRejected, PoolEvent{ //nolint:errcheck
			Kind:      EventRejected,
			TaskName:  name,
			Err:       err,
			Timestamp: p.getClock().Now(),
		})
	}
}

// onTaskSettled is called by a worker once a task's execution context
// completes (sink filled), closing its lifetime span and firing the
// matching completion/interruption hook and metric.
func (p *Pool) onTaskSettled(t *task) {
	t.finishLifetime()

	_, kind, err := t.sink.wait()

	switch kind {
	case outcomeValue:
		p.metrics.Counter(MetricTasksCompleted).Inc()
		if p.hooks.ListenerCount(HookCompleted) > 0 {
			_ = p.hooks.Emit(t.lifetimeCtx, HookCompleted, PoolEvent{ //nolint:errcheck
				Kind:      EventCompleted,
				TaskName:  t.name,
				Timestamp: p.getClock().Now(),
			})
		}
	case outcomeInterrupted:
		p.metrics.Counter(MetricTasksInterrupted).Inc()
		capitan.Info(t.lifetimeCtx, SignalTaskInterrupted, FieldName.Field(t.name), FieldTaskID.Field(t.id))
		if p.hooks.ListenerCount(HookInterrupted) > 0 {
			_ = p.hooks.Emit(t.lifetimeCtx, HookInterrupted, PoolEvent{ //nolint:errcheck
				Kind:      EventInterrupted,
				TaskName:  t.name,
				Err:       err,
				Timestamp: p.getClock().Now(),
			})
		}
	case outcomeError:
		p.metrics.Counter(MetricTasksCompleted).Inc()
	}
}

// Submit enqueues fn on the global queue per spec.md §4.7/§6's
// submit(pool, fn) form.
func Submit[R any](ctx context.Context, p *Pool, name string, fn func(context.Context) (R, error)) (Handle[R], error) {
	return submitTask(ctx, p, name, 0, fn)
}

// SubmitPriority enqueues fn with an explicit priority attribute, per
// spec.md §6's submit(pool, fn, attribute) form (attributed queues only;
// meaningless on a FIFO pool, where it is accepted but ignored).
func SubmitPriority[R any](ctx context.Context, p *Pool, name string, priority int, fn func(context.Context) (R, error)) (Handle[R], error) {
	return submitTask(ctx, p, name, priority, fn)
}

// Fork submits fn onto the calling worker's own local deque, per spec.md
// §4.9/§6's fork(fn). Must be called from inside a pool worker; calling it
// from outside panics with ErrLockError, matching spec.md §4.9's
// precondition on in-pool-only operations.
//
// A caller that immediately waits on the returned Handle (GetContext) from a
// single-worker pool will starve: the parent gets suspended and re-pushed to
// the bottom of its own local deque, which the owning worker pops right back
// off (LIFO) before the forked child is ever reached, and there is no second
// worker to steal it. Fork followed by a blocking wait needs PoolSize >= 2.
func Fork[R any](ctx context.Context, name string, fn func(context.Context) (R, error)) (Handle[R], error) {
	tc, ok := taskContextFrom(ctx)
	if !ok || tc.task.pool == nil {
		panic(fmt.Errorf("taskz: Fork called outside a pool worker: %w", ErrLockError))
	}

	p := tc.task.pool
	lifetimeCtx, span := p.tracer.StartSpan(tc.task.lifetimeCtx, TaskLifetimeSpan)
	span.SetTag(TagTaskName, name)

	t := newTask(name, tc.task.priority, p, lifetimeCtx, func(c context.Context) (interface{}, error) {
		return fn(c)
	})
	t.finishLifetime = span.Finish
	span.SetTag(TagTaskID, t.id)

	w := p.workers[tc.workerID]
	w.deque.pushBottom(t)
	// Wake a parked worker so it can steal the child.
	p.fsem.post(1)

	p.metrics.Counter(MetricTasksSubmitted).Inc()
	if p.hooks.ListenerCount(HookSubmitted) > 0 {
		_ = p.hooks.Emit(ctx, HookSubmitted, PoolEvent{ //nolint:errcheck
			Kind:      EventSubmitted,
			TaskName:  name,
			Timestamp: p.getClock().Now(),
		})
	}

	return newHandle[R](t), nil
}

// Shutdown sets the drain flag and deactivates the global queue and
// fast-semaphore so idle workers wake, then blocks until every worker has
// exited, per spec.md §4.7's shutdown(). Queued and locally-held tasks
// still run to completion; only further Submit/Fork calls are rejected.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		p.drain.Store(true)
		capitan.Info(ctx, SignalPoolShutdownStarted, FieldWorkerCount.Field(len(p.workers)))
		p.globalQueue.deactivate(ctx)
		p.wg.Wait()
		capitan.Info(ctx, SignalPoolShutdownComplete, FieldWorkerCount.Field(len(p.workers)))
	})
	return nil
}

// ShutdownNow sets the abort flag, deactivates the global queue and
// fast-semaphore, and blocks until every worker has exited, per spec.md
// §4.7's shutdown_now(). Queued and locally-held tasks are dropped; their
// sinks complete with an interruption exception instead of running. A task
// that is running when ShutdownNow is called is dropped the same way the
// next time it yields. ShutdownNow does not set any task's interruption
// flag, so a running task that never yields runs to completion.
func (p *Pool) ShutdownNow(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		p.abort.Store(true)
		capitan.Warn(ctx, SignalPoolShutdownAborted, FieldWorkerCount.Field(len(p.workers)))
		p.globalQueue.deactivate(ctx)

		for {
			t, ok := p.globalQueue.tryTake()
			if !ok {
				break
			}
			_ = t.sink.setInterrupted(t.wrapError(fmt.Errorf("%s: %w", t.name, ErrInterrupted), true, t.createdAt))
			p.onTaskSettled(t)
		}

		p.wg.Wait()
		capitan.Info(ctx, SignalPoolShutdownComplete, FieldWorkerCount.Field(len(p.workers)))
	})
	return nil
}

// Size returns the fixed number of workers.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}

// HighWatermark and LowWatermark pass through to the bounded global queue;
// they return (0, false) on an unbounded pool, per spec.md §4.7's
// "unbounded pools do not expose them."
func (p *Pool) HighWatermark() (int, bool) {
	switch q := p.globalQueue.(type) {
	case *BoundedFIFO:
		return q.hwm, true
	case *BoundedPriority:
		return q.hwm, true
	default:
		return 0, false
	}
}

func (p *Pool) LowWatermark() (int, bool) {
	switch q := p.globalQueue.(type) {
	case *BoundedFIFO:
		return q.lwm, true
	case *BoundedPriority:
		return q.lwm, true
	default:
		return 0, false
	}
}
