// Package timer schedules per-room round timeouts.
//
// Each Arm issues a new generation. A fire whose generation is no longer
// current is dropped, so a callback can never act on a round that was
// already cancelled or replaced.
package timer

import (
	"sync"
	"time"
)

// Token identifies one armed timer.
type Token struct {
	room string
	gen  uint64
}

// Room returns the room the token was armed for.
func (t Token) Room() string { return t.room }

// IsZero reports whether t was never issued by Arm.
func (t Token) IsZero() bool { return t.gen == 0 }

type entry struct {
	gen   uint64
	timer *time.Timer
}

// Scheduler holds at most one pending timer per room. Safe for concurrent
// use.
type Scheduler struct {
	mu      sync.Mutex
	gen     uint64
	pending map[string]*entry
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{pending: make(map[string]*entry)}
}

// Arm schedules fn to run after d. Any timer already pending for room is
// cancelled first.
func (s *Scheduler) Arm(room string, d time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[room]; ok {
		old.timer.Stop()
	}
	s.gen++
	gen := s.gen
	// fire takes s.mu, so it cannot observe the entry before it is stored.
	s.pending[room] = &entry{
		gen:   gen,
		timer: time.AfterFunc(d, func() { s.fire(room, gen, fn) }),
	}
	return Token{room: room, gen: gen}
}

func (s *Scheduler) fire(room string, gen uint64, fn func()) {
	s.mu.Lock()
	e, ok := s.pending[room]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, room)
	s.mu.Unlock()

	fn()
}

// Cancel stops the timer identified by tok. It reports whether the timer
// was still pending; cancelling twice, or after the timer fired, is a
// no-op. Cancel never waits for a running callback.
func (s *Scheduler) Cancel(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[tok.room]
	if !ok || e.gen != tok.gen {
		return false
	}
	e.timer.Stop()
	delete(s.pending, tok.room)
	return true
}

// CancelRoom stops whatever timer is pending for room.
func (s *Scheduler) CancelRoom(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[room]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, room)
	return true
}

// CancelAll stops every pending timer and returns how many there were.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pending)
	for room, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, room)
	}
	return n
}

// Pending reports whether room has a timer that has not fired yet.
func (s *Scheduler) Pending(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[room]
	return ok
}
