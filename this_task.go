package taskz

import "context"

// RunsInPool reports whether ctx is the context handed to a task body
// currently executing inside a pool worker, the Go rendition of spec.md
// §4.10's this_task::runs_in_pool. A task started via OwnThread/NewThread
// also carries a *taskContext (so this_task.Yield/WorkerID have something to
// look up) but has no owning Pool, so it reports false here, matching
// spec.md §4.10's "whether the current thread is a pool worker."
func RunsInPool(ctx context.Context) bool {
	tc, ok := taskContextFrom(ctx)
	if !ok {
		return false
	}
	return tc.task.pool != nil
}

// Yield suspends the calling task, returning control to the worker that
// resumed it, per spec.md §4.10's this_task::yield. The worker may pick up
// other work before resuming this task. Calling Yield outside a pool worker
// panics, matching spec.md §4.9's precondition on in-pool-only operations:
// an OwnThread/NewThread task has no worker to resume it, so suspending
// there would hang forever rather than fail, which is worse than a panic.
func Yield(ctx context.Context) {
	tc, ok := taskContextFrom(ctx)
	if !ok || tc.task.pool == nil {
		panic(ErrLockError)
	}
	tc.yield()
}

// InterruptionRequested reports whether the handle holding the calling
// task has had Interrupt called on it. The task body observes this at its
// own cooperative checkpoints (typically right after Yield) and decides
// whether to unwind early; taskz never forces a body to stop. Returns false
// when ctx is not a task body's context; inside an OwnThread/NewThread body
// it reports that task's own flag.
func InterruptionRequested(ctx context.Context) bool {
	tc, ok := taskContextFrom(ctx)
	if !ok {
		return false
	}
	return tc.task.sink.interruptionRequested()
}

// WorkerID returns the identifier of the worker currently running the
// calling task, per spec.md §4.10's this_task::worker_id. The second return
// value is false when called outside a pool worker, including from an
// OwnThread/NewThread task body, which has a *taskContext but no owning
// Pool and so no worker slot to report.
func WorkerID(ctx context.Context) (int, bool) {
	tc, ok := taskContextFrom(ctx)
	if !ok || tc.task.pool == nil {
		return 0, false
	}
	return tc.workerID, true
}
