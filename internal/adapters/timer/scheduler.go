package timer

import (
	"time"

	"github.com/samirrijal/metropass/internal/core/ports"
)

// Scheduler implements ports.Scheduler on the runtime timer.
type Scheduler struct{}

// New creates a Scheduler.
func New() Scheduler {
	return Scheduler{}
}

// AfterFunc runs f in its own goroutine once d has elapsed.
func (Scheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
