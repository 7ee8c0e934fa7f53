package taskz

import "github.com/zoobzio/clockz"

// minStackSize is the implementation-defined minimum from spec.md §6's
// stacksize(n) configuration value. taskz tasks run on goroutines rather
// than fixed-size user stacks, but the value is still validated and
// threaded through so callers porting from the original API get the same
// construction-time failure instead of a silently ignored knob.
const minStackSize = 4096

// poolConfig accumulates the validated configuration values of spec.md §6
// before a Pool is constructed, the Go rendition of the original's
// poolsize.hpp/stacksize.hpp/watermark.hpp value types: each Option
// validates its own argument eagerly and reports invalid input through the
// error NewPool returns, rather than threading raw ints through positional
// constructor arguments.
type poolConfig struct {
	size      int
	stackSize int
	hwm       int
	lwm       int
	bounded   bool
	priority  bool
	clock     clockz.Clock
}

func defaultPoolConfig() *poolConfig {
	return &poolConfig{
		size:      4,
		stackSize: minStackSize,
		clock:     clockz.RealClock,
	}
}

// Option configures a Pool at construction, in the teacher's WithTimeout/
// WithClock fluent-option idiom (workerpool.go, timeout.go).
type Option func(*poolConfig) error

// PoolSize sets the fixed number of workers. n must be >= 1.
func PoolSize(n int) Option {
	return func(c *poolConfig) error {
		if n < 1 {
			return ErrInvalidPoolSize
		}
		c.size = n
		return nil
	}
}

// StackSize sets the per-worker stack size hint. n must be >= the
// implementation minimum.
func StackSize(n int) Option {
	return func(c *poolConfig) error {
		if n < minStackSize {
			return ErrInvalidStackSize
		}
		c.stackSize = n
		return nil
	}
}

// HighWatermark switches the global queue to a bounded variant with the
// given high watermark. Must be paired with LowWatermark (or defaults to
// the same value) such that low <= high.
func HighWatermark(h int) Option {
	return func(c *poolConfig) error {
		c.bounded = true
		c.hwm = h
		if c.lwm == 0 {
			c.lwm = h
		}
		if c.lwm > c.hwm {
			return ErrInvalidWatermark
		}
		return nil
	}
}

// LowWatermark sets the wake threshold for producers blocked on a bounded
// global queue. Must satisfy low <= high.
func LowWatermark(l int) Option {
	return func(c *poolConfig) error {
		c.bounded = true
		c.lwm = l
		if c.hwm != 0 && c.lwm > c.hwm {
			return ErrInvalidWatermark
		}
		return nil
	}
}

// WithPriorityQueue switches the global queue to the priority-ordered
// variant of spec.md §4.2 (smallest attribute value runs first).
func WithPriorityQueue() Option {
	return func(c *poolConfig) error {
		c.priority = true
		return nil
	}
}

// WithClock injects a clockz.Clock, matching the teacher's WithClock
// testing hook (workerpool.go, timeout.go, backoff.go).
func WithClock(clock clockz.Clock) Option {
	return func(c *poolConfig) error {
		c.clock = clock
		return nil
	}
}
