package taskz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Configuration errors, raised synchronously at construction time and
// unrecoverable by the caller.
var (
	ErrInvalidPoolSize  = errors.New("taskz: pool size must be >= 1")
	ErrInvalidStackSize = errors.New("taskz: stack size below implementation minimum")
	ErrInvalidWatermark = errors.New("taskz: low watermark must be <= high watermark")
)

// Submission and protocol-misuse errors.
var (
	// ErrTaskRejected is returned by a queue's put or a Pool's Submit when the
	// queue/pool has been deactivated, when a bounded producer's deadline
	// expired, or when a blocked producer's context is done.
	ErrTaskRejected = errors.New("taskz: task rejected")

	// ErrTaskUninitialized is returned by any operation on a zero-value Handle.
	ErrTaskUninitialized = errors.New("taskz: handle is uninitialized")

	// ErrLockError reports protocol misuse: a sink written twice, or an
	// in-pool-only API (Fork, Yield) called from outside a worker.
	ErrLockError = errors.New("taskz: protocol violation")

	// ErrInterrupted is the sentinel stored in a task's sink when
	// cancellation beats completion, either via Handle.Interrupt observed
	// at a cooperative checkpoint or via Pool.ShutdownNow discarding
	// queued/in-flight work.
	ErrInterrupted = errors.New("taskz: task interrupted")
)

// TaskError provides rich context about a failed or interrupted task,
// grounded on the teacher pipeline library's Error[T]: the same
// Path/Timestamp/Duration/Timeout/Canceled shape, adapted so Path names the
// pool/worker/task chain that produced the failure instead of a pipeline's
// processor chain.
type TaskError struct {
	Timestamp   time.Time
	Err         error
	Path        []string
	Duration    time.Duration
	Timeout     bool
	Canceled    bool
	Interrupted bool
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e == nil {
		return "<nil>"
	}
	path := strings.Join(e.Path, " -> ")
	if path == "" {
		path = "unknown"
	}

	switch {
	case e.Timeout:
		return fmt.Sprintf("%s timed out after %v: %v", path, e.Duration, e.Err)
	case e.Interrupted:
		return fmt.Sprintf("%s interrupted after %v: %v", path, e.Duration, e.Err)
	case e.Canceled:
		return fmt.Sprintf("%s canceled after %v: %v", path, e.Duration, e.Err)
	default:
		return fmt.Sprintf("%s failed after %v: %v", path, e.Duration, e.Err)
	}
}

// Unwrap supports errors.Is/errors.As against the underlying cause.
func (e *TaskError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTimeout reports whether the failure was caused by a timeout, whether
// explicit or via context.DeadlineExceeded.
func (e *TaskError) IsTimeout() bool {
	if e == nil {
		return false
	}
	return e.Timeout || errors.Is(e.Err, context.DeadlineExceeded)
}

// IsCanceled reports whether the failure was caused by cancellation.
func (e *TaskError) IsCanceled() bool {
	if e == nil {
		return false
	}
	return e.Canceled || errors.Is(e.Err, context.Canceled)
}

// IsInterrupted reports whether the task was interrupted (Handle.Interrupt
// observed at a checkpoint, or discarded by Pool.ShutdownNow) rather than
// having failed or been canceled through the context.
func (e *TaskError) IsInterrupted() bool {
	if e == nil {
		return false
	}
	return e.Interrupted || errors.Is(e.Err, ErrInterrupted)
}
