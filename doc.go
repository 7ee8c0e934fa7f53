// Package taskz provides a cooperative worker-pool task scheduler: a
// fixed-size pool of goroutine-backed workers that execute user-supplied
// callables concurrently and return handles on which callers await results,
// cancellation, or timeouts.
//
// # Overview
//
// Unlike a conventional thread pool, each submitted task runs on top of a
// cooperatively suspendable execution context. A task can yield, fork child
// tasks into the same pool, and wait on those children without tying up a
// worker — the worker picks up other work in the interim. A per-worker
// work-stealing deque with a shared fallback queue balances load across
// workers; when a worker runs dry it first checks its own deque, then the
// pool's global queue, then tries to steal from a random peer before
// parking on a semaphore.
//
// # Core Concepts
//
// A submitted task is a callable plus a result sink (a promise/future pair)
// plus an interruption flag:
//
//	pool, err := taskz.NewPool(taskz.PoolSize(4))
//	defer pool.Shutdown(ctx)
//
//	h, err := taskz.Submit(ctx, pool, "answer", func(ctx context.Context) (int, error) {
//	    return 42, nil
//	})
//	v, err := h.Get()
//
// # Fork / Join
//
// From inside a running task, Fork submits a child task onto the current
// worker's own local deque (cheap, cache-local) rather than the pool's
// global queue:
//
//	var fib func(context.Context, int) (int, error)
//	fib = func(ctx context.Context, n int) (int, error) {
//	    if n < 2 {
//	        return n, nil
//	    }
//	    left, _ := taskz.Fork(ctx, "left", func(ctx context.Context) (int, error) { return fib(ctx, n-1) })
//	    right, _ := taskz.Fork(ctx, "right", func(ctx context.Context) (int, error) { return fib(ctx, n-2) })
//	    a, err := left.GetContext(ctx)
//	    if err != nil {
//	        return 0, err
//	    }
//	    b, err := right.GetContext(ctx)
//	    if err != nil {
//	        return 0, err
//	    }
//	    return a + b, nil
//	}
//
// Handle.GetContext, called from inside a pool task, suspends the hosting
// task's execution context rather than blocking the worker's OS thread, so
// the worker is free to run other work while the fork is outstanding.
// Handle.Get blocks the calling goroutine normally and is meant for callers
// outside a pool worker.
//
// # Submission Forms
//
// Besides Submit (route to a Pool) and Fork (route to the current worker's
// local deque), taskz provides two convenience adapters for running a
// callable outside any pool:
//
//	h := taskz.OwnThread(ctx, "inline", func(ctx context.Context) (int, error) { return 1, nil })  // runs inline, already ready
//	h := taskz.NewThread(ctx, "bg", func(ctx context.Context) (int, error) { return 1, nil })      // runs on a fresh goroutine
//
// # Cancellation
//
// Handle.Interrupt sets a sticky interruption flag. A task that has not
// started when the flag is set ends interrupted without running its body; a
// running body reads the flag with InterruptionRequested (typically right
// after Yield) and decides whether to return. Yield, GetContext and
// bounded-queue puts do not check the flag. It does not itself preempt a
// running task.
//
// # Work Queues
//
// The pool's global-queue variants (bounded/unbounded, FIFO/priority) are
// exported types with exported constructors: UnboundedFIFO, BoundedFIFO,
// UnboundedPriority, BoundedPriority. Their queue operations (put, tryTake,
// deactivate) are unexported, so outside this package they can be
// constructed but not used as queues; BoundedFIFO.Size is the only exported
// method.
//
// # Observability
//
// Pool wires github.com/zoobzio/metricz counters/gauges, a
// github.com/zoobzio/tracez span per task lifetime, github.com/zoobzio/hookz
// event hooks (OnSubmitted/OnCompleted/OnRejected/OnInterrupted), and
// github.com/zoobzio/capitan structured signals for saturation, rejection,
// and shutdown events — the same ambient stack its teacher pipeline library
// wires for its connectors.
package taskz
