package taskz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastSemaphore(t *testing.T) {
	t.Run("wait returns immediately when count positive", func(t *testing.T) {
		s := newFastSemaphore("test", 1)
		done := make(chan struct{})
		go func() {
			s.wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("wait did not return promptly")
		}
	})

	t.Run("tryWait is non-blocking", func(t *testing.T) {
		s := newFastSemaphore("test", 0)
		assert.False(t, s.tryWait())

		s.post(1)
		assert.True(t, s.tryWait())
		assert.False(t, s.tryWait())
	})

	t.Run("post wakes a blocked waiter", func(t *testing.T) {
		s := newFastSemaphore("test", 0)
		var wg sync.WaitGroup
		wg.Add(1)

		go func() {
			defer wg.Done()
			s.wait()
		}()

		time.Sleep(50 * time.Millisecond)
		s.post(1)

		waited := make(chan struct{})
		go func() {
			wg.Wait()
			close(waited)
		}()

		select {
		case <-waited:
		case <-time.After(time.Second):
			t.Fatal("post did not wake waiter")
		}
	})

	t.Run("deactivate wakes all waiters without granting a permit", func(t *testing.T) {
		s := newFastSemaphore("test", 0)
		const waiters = 4
		var wg sync.WaitGroup
		wg.Add(waiters)

		for i := 0; i < waiters; i++ {
			go func() {
				defer wg.Done()
				s.wait()
			}()
		}

		time.Sleep(50 * time.Millisecond)
		s.deactivate(context.Background())

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("deactivate did not wake all waiters")
		}

		require.False(t, s.isActive())
	})

	t.Run("wait after deactivate returns immediately", func(t *testing.T) {
		s := newFastSemaphore("test", 0)
		s.deactivate(context.Background())

		done := make(chan struct{})
		go func() {
			s.wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("wait should return immediately once deactivated")
		}
	})
}
