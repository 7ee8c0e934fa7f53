package taskz

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/zoobzio/capitan"
)

// worker owns one goroutine standing in for spec.md §4.6's platform thread,
// and one work-stealing deque. Its scheduling loop is grounded directly on
// detail/worker.hpp's worker_function: local pop, then the pool's global
// queue, then a random-victim steal round, then block on the pool's
// fast-semaphore.
type worker struct {
	id    int
	pool  *Pool
	deque *workStealingDeque
	rng   *rand.Rand
}

func newWorker(id int, pool *Pool) *worker {
	return &worker{
		id:    id,
		pool:  pool,
		deque: newWorkStealingDeque(),
		rng:   rand.New(rand.NewSource(int64(id)*2654435761 + 1)), //nolint:gosec // victim selection, not security sensitive
	}
}

// run is the worker_function loop of spec.md §4.6.
func (w *worker) run() {
	defer w.pool.wg.Done()

	for {
		if w.pool.abort.Load() {
			w.discardAll()
			return
		}
		if w.pool.drain.Load() && w.pool.globalQueue.empty() && w.deque.isEmpty() {
			return
		}

		if t, ok := w.deque.popBottom(); ok {
			w.execute(t)
			continue
		}
		if t, ok := w.pool.globalQueue.tryTake(); ok {
			w.execute(t)
			continue
		}
		if t, ok := w.steal(); ok {
			w.execute(t)
			continue
		}

		capitan.Info(context.Background(), SignalWorkerParked, FieldWorkerID.Field(w.id))
		w.pool.fsem.wait()
	}
}

// steal probes the rest of the pool's workers starting from a random index,
// skipping itself, per spec.md §4.6's victim-selection rule.
func (w *worker) steal() (*task, bool) {
	workers := w.pool.snapshotWorkers()
	n := len(workers)
	if n <= 1 {
		return nil, false
	}

	start := w.rng.Intn(n)
	tries := 0
	for i := 0; i < n; i++ {
		victim := workers[(start+i)%n]
		if victim == w {
			continue
		}
		tries++
		w.pool.metrics.Counter(MetricStealAttempts).Inc()
		if t, ok := victim.deque.steal(); ok {
			w.pool.metrics.Counter(MetricStealSuccesses).Inc()
			capitan.Info(t.lifetimeCtx, SignalWorkerStealSucceeded,
				FieldWorkerID.Field(w.id),
				FieldVictimID.Field(victim.id),
				FieldStealTries.Field(tries),
			)
			return t, true
		}
	}
	return nil, false
}

// execute runs execute(w) of spec.md §4.6: install the worker slot, start or
// resume the task's execution context, and either finish it (sink filled)
// or re-push it onto the local deque for a later resume.
func (w *worker) execute(t *task) {
	t.tc.workerID = w.id

	ctx, span := w.pool.tracer.StartSpan(t.lifetimeCtx, TaskAttemptSpan)
	span.SetTag(TagTaskName, t.name)
	span.SetTag(TagWorkerID, fmt.Sprintf("%d", w.id))
	span.SetTag(TagPoolSize, fmt.Sprintf("%d", len(w.pool.workers)))

	busy := w.pool.busyWorkers.Add(1)
	capitan.Info(ctx, SignalWorkerPoolAcquired,
		FieldWorkerCount.Field(len(w.pool.workers)),
		FieldActiveWorkers.Field(int(busy)),
	)
	if int(busy) >= len(w.pool.workers) {
		capitan.Warn(ctx, SignalWorkerPoolSaturated,
			FieldWorkerCount.Field(len(w.pool.workers)),
			FieldActiveWorkers.Field(int(busy)),
		)
	}

	if !t.ec.isStarted() {
		t.ec.start()
	} else {
		t.ec.resume()
	}
	span.Finish()

	remaining := w.pool.busyWorkers.Add(-1)
	capitan.Info(ctx, SignalWorkerPoolReleased,
		FieldWorkerCount.Field(len(w.pool.workers)),
		FieldActiveWorkers.Field(int(remaining)),
	)

	if t.ec.isComplete() {
		w.pool.onTaskSettled(t)
		return
	}

	w.deque.pushBottom(t)
}

// discardAll is shutdown_now's worker-local half: every task still sitting
// in this worker's local deque is dropped, its sink completed with an
// interruption exception instead of being allowed to run, per spec.md
// §4.6's abort contract.
func (w *worker) discardAll() {
	for {
		t, ok := w.deque.popBottom()
		if !ok {
			return
		}
		_ = t.sink.setInterrupted(t.wrapError(fmt.Errorf("%s: %w", t.name, ErrInterrupted), true, t.createdAt))
		w.pool.onTaskSettled(t)
	}
}
