package taskz

import (
	"sync"
	"time"
)

// outcomeKind tags which of the three at-most-once outcomes a sink was
// filled with, the Go rendition of spec.md §9's "exceptions captured into
// futures become a result enum with value/error/interruption variants."
type outcomeKind int

const (
	outcomePending outcomeKind = iota
	outcomeValue
	outcomeError
	outcomeInterrupted
)

// sink is the write end of a task's result slot: an at-most-once
// producer-to-consumer handoff grounded on the teacher's sync.RWMutex +
// sync.Cond mutable-state pattern (workerpool.go, circuitbreaker.go), typed
// generically per spec.md §3's result sink. The value is stored as any and
// recovered with its original type by the typed Handle[R] that wraps it,
// since a *task held in a queue/deque must be type-erased to let
// heterogeneous result types share one scheduler.
type sink struct {
	mu    sync.Mutex
	ready *sync.Cond

	kind  outcomeKind
	value interface{}
	err   error

	interruptRequested bool
}

func newSink() *sink {
	s := &sink{}
	s.ready = sync.NewCond(&s.mu)
	return s
}

// setValue is the single successful producer call on the happy path.
// Calling it twice (or after setException/setInterrupted) is a protocol
// violation and is reported, not silently ignored.
func (s *sink) setValue(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != outcomePending {
		return ErrLockError
	}
	s.kind = outcomeValue
	s.value = v
	s.ready.Broadcast()
	return nil
}

func (s *sink) setException(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != outcomePending {
		return ErrLockError
	}
	s.kind = outcomeError
	s.err = err
	s.ready.Broadcast()
	return nil
}

func (s *sink) setInterrupted(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != outcomePending {
		return ErrLockError
	}
	s.kind = outcomeInterrupted
	s.err = err
	s.ready.Broadcast()
	return nil
}

// requestInterrupt sets the sticky interruption flag observed at cooperative
// checkpoints. Idempotent: a second call has no additional effect.
func (s *sink) requestInterrupt() {
	s.mu.Lock()
	s.interruptRequested = true
	s.mu.Unlock()
}

func (s *sink) interruptionRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interruptRequested
}

func (s *sink) isReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind != outcomePending
}

func (s *sink) hasValue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind == outcomeValue
}

func (s *sink) hasException() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind == outcomeError || s.kind == outcomeInterrupted
}

// wait blocks until the sink is filled, then returns the outcome.
func (s *sink) wait() (interface{}, outcomeKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.kind == outcomePending {
		s.ready.Wait()
	}
	return s.value, s.kind, s.err
}

// waitDeadline blocks until the sink is filled or the deadline passes,
// reporting false in the latter case.
func (s *sink) waitDeadline(deadline time.Time) (interface{}, outcomeKind, error, bool) {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.kind == outcomePending {
			s.ready.Wait()
		}
		s.mu.Unlock()
		close(done)
	}()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-done:
		s.mu.Lock()
		v, k, e := s.value, s.kind, s.err
		s.mu.Unlock()
		return v, k, e, true
	case <-timer.C:
		return nil, outcomePending, nil, false
	}
}
