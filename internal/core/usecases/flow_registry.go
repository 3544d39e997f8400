package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/pkg/metrics"
)

var (
	ErrFlowNotFound = errors.New("purchase flow not found")
	ErrTooManyFlows = errors.New("too many open purchase flows")
)

// FlowFactory builds the flow for a newly created id.
type FlowFactory func(id string) *PurchaseFlow

// RegistryOption customises a FlowRegistry.
type RegistryOption func(*FlowRegistry)

// WithIdleTimeout expires flows that have not been looked up for d.
// Zero keeps flows until they are discarded.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *FlowRegistry) { r.idleTimeout = d }
}

// WithRegistryClock overrides the clock used for idle tracking.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *FlowRegistry) { r.now = now }
}

type registryEntry struct {
	flow     *PurchaseFlow
	lastSeen time.Time
}

// FlowRegistry holds the purchase flows opened through the host API.
// Flows are independent; the registry only maps ids to them.
type FlowRegistry struct {
	mu          sync.RWMutex
	flows       map[string]*registryEntry
	newFlow     FlowFactory
	maxFlows    int
	idleTimeout time.Duration
	now         func() time.Time
}

// NewFlowRegistry creates a registry. maxFlows <= 0 means unbounded.
func NewFlowRegistry(newFlow FlowFactory, maxFlows int, opts ...RegistryOption) *FlowRegistry {
	r := &FlowRegistry{
		flows:    make(map[string]*registryEntry),
		newFlow:  newFlow,
		maxFlows: maxFlows,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create opens a new flow and returns its id. When the registry is full,
// idle flows are expired first.
func (r *FlowRegistry) Create() (string, *PurchaseFlow, error) {
	r.mu.Lock()
	var expired []*PurchaseFlow
	if r.maxFlows > 0 && len(r.flows) >= r.maxFlows {
		expired = r.expireLocked()
	}
	if r.maxFlows > 0 && len(r.flows) >= r.maxFlows {
		r.mu.Unlock()
		resetAll(expired)
		return "", nil, ErrTooManyFlows
	}

	id := ulid.Make().String()
	flow := r.newFlow(id)
	r.flows[id] = &registryEntry{flow: flow, lastSeen: r.now()}
	metrics.ActiveFlows.Set(float64(len(r.flows)))
	r.mu.Unlock()

	resetAll(expired)
	return id, flow, nil
}

// Get returns the flow with the given id and marks it as active.
func (r *FlowRegistry) Get(id string) (*PurchaseFlow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	e.lastSeen = r.now()
	return e.flow, nil
}

// Discard removes a flow and resets it so that a settlement still in flight
// cannot complete against it.
func (r *FlowRegistry) Discard(id string) error {
	r.mu.Lock()
	e, ok := r.flows[id]
	if ok {
		delete(r.flows, id)
		metrics.ActiveFlows.Set(float64(len(r.flows)))
	}
	r.mu.Unlock()

	if !ok {
		return ErrFlowNotFound
	}
	e.flow.Reset()
	return nil
}

// Sweep discards every flow idle for longer than the idle timeout and
// returns how many were removed. Flows awaiting settlement are kept.
func (r *FlowRegistry) Sweep() int {
	r.mu.Lock()
	expired := r.expireLocked()
	r.mu.Unlock()

	resetAll(expired)
	return len(expired)
}

// RunJanitor sweeps idle flows every interval until ctx is done.
func (r *FlowRegistry) RunJanitor(ctx context.Context, interval time.Duration) {
	if r.idleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("expired idle purchase flows", "count", n, "open_flows", r.Len())
			}
		}
	}
}

// Len returns the number of open flows.
func (r *FlowRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// expireLocked removes idle flows from the map. The caller resets the
// returned flows after releasing r.mu.
func (r *FlowRegistry) expireLocked() []*PurchaseFlow {
	if r.idleTimeout <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.idleTimeout)
	var expired []*PurchaseFlow
	for id, e := range r.flows {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if e.flow.Session().Status == domain.StatusProcessing {
			continue
		}
		delete(r.flows, id)
		expired = append(expired, e.flow)
	}
	if len(expired) > 0 {
		metrics.ExpiredFlows.Add(float64(len(expired)))
		metrics.ActiveFlows.Set(float64(len(r.flows)))
	}
	return expired
}

func resetAll(flows []*PurchaseFlow) {
	for _, f := range flows {
		f.Reset()
	}
}
