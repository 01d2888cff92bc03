package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArm_Fires(t *testing.T) {
	s := New()
	fired := make(chan struct{})
	tok := s.Arm("r1", 10*time.Millisecond, func() { close(fired) })
	assert.Equal(t, "r1", tok.Room())
	assert.False(t, tok.IsZero())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.False(t, s.Pending("r1"))
	assert.False(t, s.Cancel(tok), "cancel after fire is a no-op")
}

func TestCancel_Idempotent(t *testing.T) {
	s := New()
	var calls atomic.Int32
	tok := s.Arm("r1", 20*time.Millisecond, func() { calls.Add(1) })

	assert.True(t, s.Cancel(tok))
	assert.False(t, s.Cancel(tok))
	assert.False(t, s.CancelRoom("r1"))

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestRearm_ReplacesPending(t *testing.T) {
	s := New()
	var first, second atomic.Int32
	old := s.Arm("r1", 20*time.Millisecond, func() { first.Add(1) })
	done := make(chan struct{})
	s.Arm("r1", 30*time.Millisecond, func() { second.Add(1); close(done) })

	assert.False(t, s.Cancel(old), "old token no longer cancels the room")
	<-done
	assert.Zero(t, first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestStaleFire_Dropped(t *testing.T) {
	s := New()
	tok := s.Arm("r1", time.Hour, func() {})

	var ran bool
	s.fire("r1", tok.gen-1, func() { ran = true })
	assert.False(t, ran)
	assert.True(t, s.Pending("r1"))

	s.fire("r1", tok.gen, func() { ran = true })
	assert.True(t, ran)
	assert.False(t, s.Pending("r1"))

	ran = false
	s.fire("r1", tok.gen, func() { ran = true })
	assert.False(t, ran, "a generation fires at most once")
}

func TestCancel_DoesNotWaitForRunningCallback(t *testing.T) {
	s := New()
	started := make(chan struct{})
	release := make(chan struct{})
	tok := s.Arm("r1", time.Millisecond, func() {
		close(started)
		<-release
	})
	<-started

	done := make(chan bool)
	go func() { done <- s.Cancel(tok) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Cancel blocked on a running callback")
	}

	// Arming the room again is also unaffected.
	s.Arm("r1", time.Hour, func() {})
	close(release)
	assert.True(t, s.Pending("r1"))
}

func TestCancelAll(t *testing.T) {
	s := New()
	var calls atomic.Int32
	for _, room := range []string{"a", "b", "c"} {
		s.Arm(room, 20*time.Millisecond, func() { calls.Add(1) })
	}
	require.Equal(t, 3, s.CancelAll())
	assert.Zero(t, s.CancelAll())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
