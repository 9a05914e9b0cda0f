// Package toolbartest provides helpers for testing toolbars without real
// timers.
package toolbartest

import (
	"sort"
	"time"
)

// Scheduler is a manual clock. Calls registered with After run only when
// Advance moves the clock past their deadline.
type Scheduler struct {
	now     time.Duration
	seq     int
	pending []*timer
}

type timer struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewScheduler creates a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// After schedules fn to run d after the current time.
func (s *Scheduler) After(d time.Duration, fn func()) func() {
	s.seq++
	t := &timer{at: s.now + d, seq: s.seq, fn: fn}
	s.pending = append(s.pending, t)
	return func() { t.cancelled = true }
}

// Advance moves the clock forward by d, running every due call in deadline
// order. Calls scheduled while advancing run too if they fall due.
func (s *Scheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		t := s.next(end)
		if t == nil {
			break
		}
		s.now = t.at
		t.fn()
	}
	s.now = end
}

func (s *Scheduler) next(end time.Duration) *timer {
	s.prune()
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].at != s.pending[j].at {
			return s.pending[i].at < s.pending[j].at
		}
		return s.pending[i].seq < s.pending[j].seq
	})
	if len(s.pending) == 0 || s.pending[0].at > end {
		return nil
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	return t
}

func (s *Scheduler) prune() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.pending = live
}

// Pending returns the number of calls not yet run or cancelled.
func (s *Scheduler) Pending() int {
	s.prune()
	return len(s.pending)
}

// Now returns the elapsed manual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}
