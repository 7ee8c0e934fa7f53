package taskz

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// workQueue is the shared contract of spec.md §4.2's four queue variants,
// grounded on bounded_fifo.hpp/unbounded_fifo.hpp/*_prio_queue.hpp.
type workQueue interface {
	put(ctx context.Context, item *task) error
	putDeadline(ctx context.Context, item *task, deadline time.Time) error
	tryTake() (*task, bool)
	deactivate(ctx context.Context)
	empty() bool
	active() bool
}

// UnboundedFIFO is a lock-guarded FIFO queue with no capacity limit,
// grounded on unbounded_fifo.hpp's two-lock queue shape (single mutex here,
// since Go's runtime scheduler makes the head/tail split of the original
// uncontended-fast-path optimization unnecessary for this port).
type UnboundedFIFO struct {
	mu     sync.Mutex
	items  []*task
	isDone bool
	fsem   *fastSemaphore
}

// NewUnboundedFIFO creates an unbounded FIFO work queue, optionally signaling
// a fast semaphore on every successful put.
func NewUnboundedFIFO(fsem *fastSemaphore) *UnboundedFIFO {
	return &UnboundedFIFO{fsem: fsem}
}

func (q *UnboundedFIFO) put(_ context.Context, item *task) error {
	q.mu.Lock()
	if q.isDone {
		q.mu.Unlock()
		return ErrTaskRejected
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	if q.fsem != nil {
		q.fsem.post(1)
	}
	return nil
}

func (q *UnboundedFIFO) putDeadline(ctx context.Context, item *task, _ time.Time) error {
	return q.put(ctx, item)
}

func (q *UnboundedFIFO) tryTake() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *UnboundedFIFO) deactivate(ctx context.Context) {
	q.mu.Lock()
	q.isDone = true
	q.mu.Unlock()
	capitan.Info(ctx, SignalQueueDeactivated, FieldQueueKind.Field("unbounded-fifo"))
	if q.fsem != nil {
		q.fsem.deactivate(ctx)
	}
}

func (q *UnboundedFIFO) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

func (q *UnboundedFIFO) active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.isDone
}

// BoundedFIFO is a FIFO queue enforcing high/low watermark backpressure,
// grounded on bounded_fifo.hpp: put blocks while active and size >= HWM,
// failing with ErrTaskRejected if deactivated while waiting or if a timed
// put expires; try_take wakes blocked producers once size falls <= LWM.
type BoundedFIFO struct {
	mu        sync.Mutex
	notFullCh chan struct{}
	items     []*task
	isDone    bool
	hwm       int
	lwm       int
	fsem      *fastSemaphore
	clock     clockz.Clock
}

// NewBoundedFIFO creates a bounded FIFO queue. Returns ErrInvalidWatermark
// if lwm > hwm.
func NewBoundedFIFO(hwm, lwm int, fsem *fastSemaphore) (*BoundedFIFO, error) {
	if lwm > hwm {
		return nil, ErrInvalidWatermark
	}
	return &BoundedFIFO{
		hwm:       hwm,
		lwm:       lwm,
		fsem:      fsem,
		clock:     clockz.RealClock,
		notFullCh: make(chan struct{}),
	}, nil
}

// setClock overrides the queue's clock, used by Pool to inject a fake clock
// for deterministic deadline tests (WithClock option).
func (q *BoundedFIFO) setClock(c clockz.Clock) {
	q.mu.Lock()
	q.clock = c
	q.mu.Unlock()
}

func (q *BoundedFIFO) full() bool {
	return len(q.items) >= q.hwm
}

// wakeProducers closes the current not-full broadcast channel and installs a
// fresh one, waking every producer currently selecting on it. Must be called
// with q.mu held.
func (q *BoundedFIFO) wakeProducersLocked() {
	close(q.notFullCh)
	q.notFullCh = make(chan struct{})
}

func (q *BoundedFIFO) put(ctx context.Context, item *task) error {
	for {
		q.mu.Lock()
		if q.isDone {
			q.mu.Unlock()
			return ErrTaskRejected
		}
		if !q.full() {
			q.items = append(q.items, item)
			q.mu.Unlock()
			if q.fsem != nil {
				q.fsem.post(1)
			}
			return nil
		}
		wait := q.notFullCh
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ErrTaskRejected
		}
	}
}

// putDeadline blocks for at most until deadline. If the queue is still full
// when the deadline passes, it fails with ErrTaskRejected.
func (q *BoundedFIFO) putDeadline(ctx context.Context, item *task, deadline time.Time) error {
	for {
		q.mu.Lock()
		if q.isDone {
			q.mu.Unlock()
			return ErrTaskRejected
		}
		if !q.full() {
			q.items = append(q.items, item)
			q.mu.Unlock()
			if q.fsem != nil {
				q.fsem.post(1)
			}
			return nil
		}
		wait := q.notFullCh
		q.mu.Unlock()

		remaining := deadline.Sub(q.clock.Now())
		if remaining <= 0 {
			return ErrTaskRejected
		}

		select {
		case <-wait:
		case <-q.clock.After(remaining):
			return ErrTaskRejected
		case <-ctx.Done():
			return ErrTaskRejected
		}
	}
}

func (q *BoundedFIFO) tryTake() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]

	if len(q.items) <= q.lwm {
		q.wakeProducersLocked()
	}
	return item, true
}

func (q *BoundedFIFO) deactivate(ctx context.Context) {
	q.mu.Lock()
	q.isDone = true
	q.wakeProducersLocked()
	q.mu.Unlock()
	capitan.Info(ctx, SignalQueueDeactivated, FieldQueueKind.Field("bounded-fifo"))
	if q.fsem != nil {
		q.fsem.deactivate(ctx)
	}
}

func (q *BoundedFIFO) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

func (q *BoundedFIFO) active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.isDone
}

// Size reports the current element count.
func (q *BoundedFIFO) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// priorityItem pairs a task with the attribute its priority queue orders by.
type priorityItem struct {
	item     *task
	priority int
}

// priorityHeap implements container/heap.Interface. Per spec.md §9's
// resolved open question, the default ordering treats the smallest
// attribute value as the highest priority (a min-heap on priority).
type priorityHeap []*priorityItem

func (h priorityHeap) Len() int            { return len(h) }
func (h priorityHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h priorityHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x interface{}) { *h = append(*h, x.(*priorityItem)) }
func (h *priorityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// UnboundedPriority is a heap-ordered queue with no capacity limit, grounded
// on unbounded_prio_queue.hpp. container/heap is the standard library's only
// priority-queue primitive and no example repo in the pack wires a
// third-party alternative, so it is used directly — see DESIGN.md.
type UnboundedPriority struct {
	mu     sync.Mutex
	h      priorityHeap
	isDone bool
	fsem   *fastSemaphore
}

// NewUnboundedPriority creates an unbounded priority work queue.
func NewUnboundedPriority(fsem *fastSemaphore) *UnboundedPriority {
	return &UnboundedPriority{fsem: fsem}
}

func (q *UnboundedPriority) putPriority(item *task, priority int) error {
	q.mu.Lock()
	if q.isDone {
		q.mu.Unlock()
		return ErrTaskRejected
	}
	heap.Push(&q.h, &priorityItem{item: item, priority: priority})
	q.mu.Unlock()

	if q.fsem != nil {
		q.fsem.post(1)
	}
	return nil
}

func (q *UnboundedPriority) put(ctx context.Context, item *task) error {
	return q.putPriority(item, item.priority)
}

func (q *UnboundedPriority) putDeadline(ctx context.Context, item *task, _ time.Time) error {
	return q.put(ctx, item)
}

func (q *UnboundedPriority) tryTake() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return nil, false
	}
	pi, _ := heap.Pop(&q.h).(*priorityItem)
	return pi.item, true
}

func (q *UnboundedPriority) deactivate(ctx context.Context) {
	q.mu.Lock()
	q.isDone = true
	q.mu.Unlock()
	capitan.Info(ctx, SignalQueueDeactivated, FieldQueueKind.Field("unbounded-priority"))
	if q.fsem != nil {
		q.fsem.deactivate(ctx)
	}
}

func (q *UnboundedPriority) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len() == 0
}

func (q *UnboundedPriority) active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.isDone
}

// BoundedPriority is a heap-ordered queue with HWM/LWM backpressure,
// identical semantics to BoundedFIFO but ordered by priority instead of
// arrival, grounded on bounded_prio_queue.hpp.
type BoundedPriority struct {
	mu        sync.Mutex
	notFullCh chan struct{}
	h         priorityHeap
	isDone    bool
	hwm       int
	lwm       int
	fsem      *fastSemaphore
	clock     clockz.Clock
}

// NewBoundedPriority creates a bounded priority queue. Returns
// ErrInvalidWatermark if lwm > hwm.
func NewBoundedPriority(hwm, lwm int, fsem *fastSemaphore) (*BoundedPriority, error) {
	if lwm > hwm {
		return nil, ErrInvalidWatermark
	}
	return &BoundedPriority{
		hwm:       hwm,
		lwm:       lwm,
		fsem:      fsem,
		clock:     clockz.RealClock,
		notFullCh: make(chan struct{}),
	}, nil
}

// setClock overrides the queue's clock, used by Pool to inject a fake clock
// for deterministic deadline tests (WithClock option).
func (q *BoundedPriority) setClock(c clockz.Clock) {
	q.mu.Lock()
	q.clock = c
	q.mu.Unlock()
}

func (q *BoundedPriority) full() bool {
	return q.h.Len() >= q.hwm
}

func (q *BoundedPriority) wakeProducersLocked() {
	close(q.notFullCh)
	q.notFullCh = make(chan struct{})
}

func (q *BoundedPriority) putPriority(ctx context.Context, item *task, priority int) error {
	for {
		q.mu.Lock()
		if q.isDone {
			q.mu.Unlock()
			return ErrTaskRejected
		}
		if !q.full() {
			heap.Push(&q.h, &priorityItem{item: item, priority: priority})
			q.mu.Unlock()
			if q.fsem != nil {
				q.fsem.post(1)
			}
			return nil
		}
		wait := q.notFullCh
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ErrTaskRejected
		}
	}
}

func (q *BoundedPriority) put(ctx context.Context, item *task) error {
	return q.putPriority(ctx, item, item.priority)
}

func (q *BoundedPriority) putDeadline(ctx context.Context, item *task, deadline time.Time) error {
	for {
		q.mu.Lock()
		if q.isDone {
			q.mu.Unlock()
			return ErrTaskRejected
		}
		if !q.full() {
			heap.Push(&q.h, &priorityItem{item: item, priority: item.priority})
			q.mu.Unlock()
			if q.fsem != nil {
				q.fsem.post(1)
			}
			return nil
		}
		wait := q.notFullCh
		q.mu.Unlock()

		remaining := deadline.Sub(q.clock.Now())
		if remaining <= 0 {
			return ErrTaskRejected
		}

		select {
		case <-wait:
		case <-q.clock.After(remaining):
			return ErrTaskRejected
		case <-ctx.Done():
			return ErrTaskRejected
		}
	}
}

func (q *BoundedPriority) tryTake() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return nil, false
	}
	pi, _ := heap.Pop(&q.h).(*priorityItem)

	if q.h.Len() <= q.lwm {
		q.wakeProducersLocked()
	}
	return pi.item, true
}

func (q *BoundedPriority) deactivate(ctx context.Context) {
	q.mu.Lock()
	q.isDone = true
	q.wakeProducersLocked()
	q.mu.Unlock()
	capitan.Info(ctx, SignalQueueDeactivated, FieldQueueKind.Field("bounded-priority"))
	if q.fsem != nil {
		q.fsem.deactivate(ctx)
	}
}

func (q *BoundedPriority) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len() == 0
}

func (q *BoundedPriority) active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.isDone
}
