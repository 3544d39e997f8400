package usecases_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/samirrijal/metropass/internal/core/ports"
)

// --- Manual scheduler ---

type manualTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// FireAll runs every timer that has not been stopped.
func (s *manualScheduler) FireAll() {
	for _, t := range s.snapshot() {
		t.mu.Lock()
		run := !t.stopped && !t.fired
		t.fired = true
		t.mu.Unlock()
		if run {
			t.f()
		}
	}
}

// FireStopped runs timers even if they were stopped, as a timer that was
// already running when Stop was called would.
func (s *manualScheduler) FireStopped() {
	for _, t := range s.snapshot() {
		t.f()
	}
}

func (s *manualScheduler) snapshot() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*manualTimer(nil), s.timers...)
}

func (s *manualScheduler) Pending() int {
	n := 0
	for _, t := range s.snapshot() {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// --- Sequential transaction ids ---

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewTransactionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("METRO-%08d", g.n)
}
