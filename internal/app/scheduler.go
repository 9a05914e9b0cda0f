package app

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerMsg brings a due call back onto the UI loop.
type timerMsg struct {
	t *timer
}

type timer struct {
	fn        func()
	cancelled bool
}

// scheduler runs toolbar timers on the program's loop: the timer goroutine
// only posts a message and Update runs the call.
type scheduler struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (s *scheduler) setSender(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *scheduler) post(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// After implements toolbar.Scheduler.
func (s *scheduler) After(d time.Duration, fn func()) func() {
	t := &timer{fn: fn}
	tm := time.AfterFunc(d, func() { s.post(timerMsg{t: t}) })
	return func() {
		t.cancelled = true
		tm.Stop()
	}
}

func (m timerMsg) run() {
	if m.t == nil || m.t.cancelled {
		return
	}
	m.t.cancelled = true
	m.t.fn()
}
