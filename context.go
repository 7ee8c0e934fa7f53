package taskz

import "sync"

// execContext is the Go rendition of spec.md §4.3's suspendable execution
// context. Per spec.md §9's design note ("custom stackful user-space
// contexts become a coroutine/fiber abstraction... an object with
// resume/suspend/is_complete"), it is built from a goroutine paired with two
// unbuffered channels: the goroutine itself supplies the suspendable stack
// (the Go runtime multiplexes it onto an OS thread), and the channel
// handoff enforces the single-owner resume/suspend discipline the original
// stackful context required — only the goroutine that called start or
// resume may be "running" the body at any instant.
type execContext struct {
	mu       sync.Mutex
	started  bool
	complete bool

	resumeCh  chan struct{}
	suspendCh chan struct{}

	run func(yield func())
}

// newExecContext wraps run, which receives a yield function it may call from
// inside the body to suspend. run is invoked at most once, in its own
// goroutine, starting on the first call to start.
func newExecContext(run func(yield func())) *execContext {
	return &execContext{
		resumeCh:  make(chan struct{}),
		suspendCh: make(chan struct{}),
		run:       run,
	}
}

// start transitions the context fresh -> running, launching the backing
// goroutine, and blocks the caller until the body either suspends or
// completes. Must be invoked on the worker that will host the task.
func (c *execContext) start() {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	yield := func() {
		c.suspendCh <- struct{}{}
		<-c.resumeCh
	}

	go func() {
		c.run(yield)
		c.mu.Lock()
		c.complete = true
		c.mu.Unlock()
		c.suspendCh <- struct{}{}
	}()

	<-c.suspendCh
}

// resume transitions suspended -> running on the calling goroutine and
// blocks until the body suspends again or completes. Precondition: the
// context must be started and not yet complete.
func (c *execContext) resume() {
	c.resumeCh <- struct{}{}
	<-c.suspendCh
}

func (c *execContext) isStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *execContext) isComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.complete
}
