package taskz

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// defaultSpinCount bounds the busy-wait fast path of fastSemaphore.wait
// before parking on the condition variable, mirroring fast_semaphore's
// spin-then-block contract.
const defaultSpinCount = 64

// fastSemaphore is a counting semaphore with a spin-then-block fast path and
// an activation flag, grounded on include/boost/task/fast_semaphore.hpp: a
// thin atomic count in front of an OS-level blocking semaphore, here built
// from a sync.Mutex/sync.Cond pair since Go has no raw semaphore primitive
// in the standard library.
type fastSemaphore struct {
	mu         sync.Mutex
	cond       *sync.Cond
	count      int
	waiters    int
	active     atomic.Bool
	spinCount  int
	clock      clockz.Clock
	name       string
}

// newFastSemaphore creates a fast semaphore with an initial count.
func newFastSemaphore(name string, initial int) *fastSemaphore {
	s := &fastSemaphore{
		count:     initial,
		spinCount: defaultSpinCount,
		clock:     clockz.RealClock,
		name:      name,
	}
	s.cond = sync.NewCond(&s.mu)
	s.active.Store(true)
	return s
}

// post increments the count by n and wakes waiters, one per unit posted.
func (s *fastSemaphore) post(n int) {
	s.mu.Lock()
	prior := s.count
	s.count += n
	s.mu.Unlock()

	if prior <= 0 {
		for i := 0; i < n; i++ {
			s.cond.Signal()
		}
	}
}

// wait decrements the count, returning immediately if the prior count was
// >= 1; otherwise it spins briefly, then blocks until woken by post or
// deactivate.
func (s *fastSemaphore) wait() {
	if s.tryWaitFast() {
		return
	}

	for i := 0; i < s.spinCount; i++ {
		if s.tryWaitFast() {
			return
		}
	}

	s.mu.Lock()
	s.waiters++
	for s.count <= 0 && s.active.Load() {
		s.cond.Wait()
	}
	s.waiters--
	if s.count > 0 {
		s.count--
	}
	s.mu.Unlock()
}

func (s *fastSemaphore) tryWaitFast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// tryWait is the non-blocking variant of wait.
func (s *fastSemaphore) tryWait() bool {
	return s.tryWaitFast()
}

// deactivate sets the activity flag and wakes every blocked waiter without
// granting a permit. Subsequent wait calls return immediately.
func (s *fastSemaphore) deactivate(ctx context.Context) {
	s.mu.Lock()
	s.active.Store(false)
	waiters := s.waiters
	s.mu.Unlock()

	s.cond.Broadcast()

	capitan.Info(ctx, SignalSemaphoreDeactivated,
		FieldName.Field(s.name),
		FieldWaiters.Field(waiters),
		FieldTimestamp.Field(float64(s.clock.Now().Unix())),
	)
}

// isActive reports whether deactivate has not yet been called.
func (s *fastSemaphore) isActive() bool {
	return s.active.Load()
}
