package taskz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskError(t *testing.T) {
	t.Run("Error Message Formatting", func(t *testing.T) {
		baseErr := errors.New("something went wrong")

		t.Run("Basic Error", func(t *testing.T) {
			err := &TaskError{
				Err:       baseErr,
				Path:      []string{"pool", "worker-0"},
				Duration:  100 * time.Millisecond,
				Timestamp: time.Now(),
			}

			msg := err.Error()
			assert.Contains(t, msg, "pool -> worker-0")
			assert.Contains(t, msg, "failed after 100ms")
			assert.Contains(t, msg, "something went wrong")
		})

		t.Run("Timeout Error", func(t *testing.T) {
			err := &TaskError{
				Err:       context.DeadlineExceeded,
				Path:      []string{"pool", "worker-3", "task-7"},
				Timeout:   true,
				Duration:  5 * time.Second,
				Timestamp: time.Now(),
			}

			msg := err.Error()
			assert.Contains(t, msg, "pool -> worker-3 -> task-7 timed out after 5s")
		})

		t.Run("Canceled Error", func(t *testing.T) {
			err := &TaskError{
				Err:       context.Canceled,
				Path:      []string{"worker", "task"},
				Canceled:  true,
				Duration:  200 * time.Millisecond,
				Timestamp: time.Now(),
			}

			msg := err.Error()
			assert.Contains(t, msg, "worker -> task canceled after 200ms")
		})

		t.Run("Interrupted Error", func(t *testing.T) {
			err := &TaskError{
				Err:         ErrInterrupted,
				Path:        []string{"pool", "worker-1"},
				Interrupted: true,
				Duration:    10 * time.Millisecond,
				Timestamp:   time.Now(),
			}

			msg := err.Error()
			assert.Contains(t, msg, "pool -> worker-1 interrupted after 10ms")
		})

		t.Run("Single Path Element Error", func(t *testing.T) {
			err := &TaskError{
				Err:       errors.New("boom"),
				Path:      []string{"pool"},
				Duration:  75 * time.Millisecond,
				Timestamp: time.Now(),
			}

			msg := err.Error()
			assert.Contains(t, msg, "pool failed after 75ms")
			assert.NotContains(t, msg, " -> ")
		})
	})

	t.Run("Unwrap", func(t *testing.T) {
		baseErr := errors.New("base error")
		taskErr := &TaskError{
			Err:       baseErr,
			Path:      []string{"pool", "worker-2"},
			Timestamp: time.Now(),
		}

		assert.Equal(t, baseErr, taskErr.Unwrap())
		assert.True(t, errors.Is(taskErr, baseErr))
	})

	t.Run("IsTimeout", func(t *testing.T) {
		tests := []struct {
			err      error
			name     string
			timeout  bool
			expected bool
		}{
			{name: "explicit timeout flag", err: errors.New("some error"), timeout: true, expected: true},
			{name: "deadline exceeded error", err: context.DeadlineExceeded, timeout: false, expected: true},
			{name: "wrapped deadline exceeded", err: fmt.Errorf("wrapper: %w", context.DeadlineExceeded), timeout: false, expected: true},
			{name: "regular error", err: errors.New("regular error"), timeout: false, expected: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := &TaskError{Err: tt.err, Timeout: tt.timeout, Path: []string{"test"}, Timestamp: time.Now()}
				assert.Equal(t, tt.expected, err.IsTimeout())
			})
		}
	})

	t.Run("IsCanceled", func(t *testing.T) {
		tests := []struct {
			err      error
			name     string
			canceled bool
			expected bool
		}{
			{name: "explicit canceled flag", err: errors.New("some error"), canceled: true, expected: true},
			{name: "context canceled error", err: context.Canceled, canceled: false, expected: true},
			{name: "wrapped canceled", err: fmt.Errorf("wrapper: %w", context.Canceled), canceled: false, expected: true},
			{name: "regular error", err: errors.New("regular error"), canceled: false, expected: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := &TaskError{Err: tt.err, Canceled: tt.canceled, Path: []string{"test"}, Timestamp: time.Now()}
				assert.Equal(t, tt.expected, err.IsCanceled())
			})
		}
	})

	t.Run("IsInterrupted", func(t *testing.T) {
		tests := []struct {
			err      error
			name     string
			flag     bool
			expected bool
		}{
			{name: "explicit interrupted flag", err: errors.New("some error"), flag: true, expected: true},
			{name: "sentinel error", err: ErrInterrupted, flag: false, expected: true},
			{name: "wrapped sentinel", err: fmt.Errorf("wrapper: %w", ErrInterrupted), flag: false, expected: true},
			{name: "regular error", err: errors.New("regular error"), flag: false, expected: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := &TaskError{Err: tt.err, Interrupted: tt.flag, Path: []string{"test"}, Timestamp: time.Now()}
				assert.Equal(t, tt.expected, err.IsInterrupted())
			})
		}
	})

	t.Run("Zero Values", func(t *testing.T) {
		err := &TaskError{Err: errors.New("error"), Timestamp: time.Now()}
		assert.Contains(t, err.Error(), "unknown failed after 0s")
	})

	t.Run("Nil Receiver", func(t *testing.T) {
		var err *TaskError

		assert.Equal(t, "<nil>", err.Error())
		assert.Nil(t, err.Unwrap())
		assert.False(t, err.IsTimeout())
		assert.False(t, err.IsCanceled())
		assert.False(t, err.IsInterrupted())
	})

	t.Run("PanicError", func(t *testing.T) {
		t.Run("panicError implements error", func(t *testing.T) {
			pe := &panicError{
				taskName:  "test_proc",
				sanitized: "test panic message",
			}

			expected := `panic in task "test_proc": test panic message`
			assert.Equal(t, expected, pe.Error())
		})
	})

	t.Run("PanicMessageSanitization", func(t *testing.T) {
		testCases := []struct {
			name     string
			panic    interface{}
			expected string
		}{
			{name: "simple string panic", panic: "simple error", expected: "panic occurred: simple error"},
			{name: "nil panic", panic: nil, expected: "unknown panic (nil value)"},
			{name: "memory address sanitization", panic: "error at 0x1234567890abcdef", expected: "panic occurred: error at 0x***"},
			{name: "file path sanitization", panic: "/sensitive/path/file.go:123 error", expected: "panic occurred (file path sanitized)"},
			{name: "windows path sanitization", panic: `C:\sensitive\path\file.go:123 error`, expected: "panic occurred (file path sanitized)"},
			{name: "long message truncation", panic: strings.Repeat("a", 250), expected: "panic occurred (message truncated for security)"},
			{name: "stack trace sanitization", panic: "error\ngoroutine 1 [running]:\nruntime.main()", expected: "panic occurred (stack trace sanitized)"},
			{name: "runtime function sanitization", panic: "runtime.doPanic called", expected: "panic occurred (stack trace sanitized)"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.expected, sanitizePanicMessage(tc.panic))
			})
		}
	})

	t.Run("recoverFromPanic", func(t *testing.T) {
		var err error
		func() {
			defer recoverFromPanic(&err, "worker-0")
			panic("boom")
		}()

		require := assert.New(t)
		require.Error(err)
		var pe *panicError
		require.True(errors.As(err, &pe))
		require.Equal("worker-0", pe.taskName)
		require.Equal("panic occurred: boom", pe.sanitized)
	})
}
