package taskz

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink(t *testing.T) {
	t.Run("setValue then wait returns value", func(t *testing.T) {
		s := newSink()
		require.NoError(t, s.setValue(42))

		v, kind, err := s.wait()
		assert.Equal(t, 42, v)
		assert.Equal(t, outcomeValue, kind)
		assert.NoError(t, err)
	})

	t.Run("setValue twice is a protocol violation", func(t *testing.T) {
		s := newSink()
		require.NoError(t, s.setValue(1))
		err := s.setValue(2)
		assert.ErrorIs(t, err, ErrLockError)
	})

	t.Run("setException surfaces through wait", func(t *testing.T) {
		s := newSink()
		boom := errors.New("boom")
		require.NoError(t, s.setException(boom))

		_, kind, err := s.wait()
		assert.Equal(t, outcomeError, kind)
		assert.Equal(t, boom, err)
		assert.True(t, s.hasException())
		assert.False(t, s.hasValue())
	})

	t.Run("setInterrupted surfaces through wait", func(t *testing.T) {
		s := newSink()
		require.NoError(t, s.setInterrupted(ErrInterrupted))

		_, kind, err := s.wait()
		assert.Equal(t, outcomeInterrupted, kind)
		assert.ErrorIs(t, err, ErrInterrupted)
	})

	t.Run("wait blocks until filled", func(t *testing.T) {
		s := newSink()
		done := make(chan struct{})
		go func() {
			s.wait()
			close(done)
		}()

		select {
		case <-done:
			t.Fatal("wait returned before sink was filled")
		case <-time.After(50 * time.Millisecond):
		}

		require.NoError(t, s.setValue("ok"))

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("wait did not return after setValue")
		}
	})

	t.Run("waitDeadline reports false on expiry", func(t *testing.T) {
		s := newSink()
		_, _, _, ok := s.waitDeadline(time.Now().Add(20 * time.Millisecond))
		assert.False(t, ok)
	})

	t.Run("waitDeadline reports true when filled before deadline", func(t *testing.T) {
		s := newSink()
		go func() {
			time.Sleep(10 * time.Millisecond)
			s.setValue(7)
		}()

		v, kind, _, ok := s.waitDeadline(time.Now().Add(time.Second))
		assert.True(t, ok)
		assert.Equal(t, outcomeValue, kind)
		assert.Equal(t, 7, v)
	})

	t.Run("requestInterrupt is idempotent", func(t *testing.T) {
		s := newSink()
		s.requestInterrupt()
		s.requestInterrupt()
		assert.True(t, s.interruptionRequested())
	})

	t.Run("isReady false until filled", func(t *testing.T) {
		s := newSink()
		assert.False(t, s.isReady())
		require.NoError(t, s.setValue(1))
		assert.True(t, s.isReady())
	})
}
