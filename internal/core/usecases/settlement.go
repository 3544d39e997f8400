package usecases

import (
	"sync"
	"time"

	"github.com/samirrijal/metropass/internal/core/ports"
)

// DefaultSettlementDelay is how long the simulated gateway takes to settle.
const DefaultSettlementDelay = 2 * time.Second

// SettlementSimulator stands in for the payment gateway: every settlement
// succeeds after a fixed delay.
type SettlementSimulator struct {
	scheduler ports.Scheduler
	delay     time.Duration
}

// NewSettlementSimulator creates a simulator. A non-positive delay falls back
// to DefaultSettlementDelay.
func NewSettlementSimulator(scheduler ports.Scheduler, delay time.Duration) *SettlementSimulator {
	if delay <= 0 {
		delay = DefaultSettlementDelay
	}
	return &SettlementSimulator{scheduler: scheduler, delay: delay}
}

// Delay returns the configured settlement delay.
func (s *SettlementSimulator) Delay() time.Duration {
	return s.delay
}

// Settle schedules onSettled to run once after the delay.
func (s *SettlementSimulator) Settle(onSettled func()) *SettlementHandle {
	h := &SettlementHandle{}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timer = s.scheduler.AfterFunc(s.delay, func() {
		h.mu.Lock()
		if h.cancelled || h.fired {
			h.mu.Unlock()
			return
		}
		h.fired = true
		h.mu.Unlock()
		onSettled()
	})
	return h
}

// SettlementHandle controls one scheduled settlement.
type SettlementHandle struct {
	mu        sync.Mutex
	timer     ports.Timer
	cancelled bool
	fired     bool
}

// Cancel prevents the settlement callback from running. It reports false when
// the callback already ran.
func (h *SettlementHandle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fired {
		return false
	}
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
	return true
}
