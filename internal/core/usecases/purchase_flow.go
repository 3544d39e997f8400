package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/ports"
	"github.com/samirrijal/metropass/internal/pkg/metrics"
	"github.com/samirrijal/metropass/internal/pkg/telemetry"
)

var tracer = otel.Tracer("github.com/samirrijal/metropass/internal/core/usecases")

// CompletionFunc receives the record of a completed purchase. It is called
// exactly once per completion, from the settlement goroutine.
type CompletionFunc func(record domain.ConfirmationRecord)

// FlowOption customises a PurchaseFlow.
type FlowOption func(*PurchaseFlow)

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) FlowOption {
	return func(f *PurchaseFlow) { f.now = now }
}

// WithLogger sets the logger used for settlement events.
func WithLogger(l *slog.Logger) FlowOption {
	return func(f *PurchaseFlow) { f.logger = l }
}

// PurchaseFlow drives one ticket purchase wizard. All operations are
// serialised on the flow, including the deferred settlement completion.
type PurchaseFlow struct {
	mu         sync.Mutex
	session    domain.PurchaseSession
	generation uint64
	pending    *SettlementHandle

	settlement *SettlementSimulator
	ids        ports.TransactionIDGenerator
	onComplete CompletionFunc
	now        func() time.Time
	logger     *slog.Logger
}

// NewPurchaseFlow creates a flow with a fresh session. onComplete may be nil.
func NewPurchaseFlow(settlement *SettlementSimulator, ids ports.TransactionIDGenerator, onComplete CompletionFunc, opts ...FlowOption) *PurchaseFlow {
	f := &PurchaseFlow{
		session:    domain.NewSession(),
		settlement: settlement,
		ids:        ids,
		onComplete: onComplete,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Session returns a snapshot of the current session.
func (f *PurchaseFlow) Session() domain.PurchaseSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Steps returns the step list for the current ticket type.
func (f *PurchaseFlow) Steps() []domain.Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.StepsFor(f.session.TicketTypeID)
}

// CanAdvance reports whether Next would move the wizard on.
func (f *PurchaseFlow) CanAdvance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.CanAdvance(f.session)
}

// SelectTicketType chooses the ticket type.
func (f *PurchaseFlow) SelectTicketType(id string) error {
	return f.apply(func(s domain.PurchaseSession) (domain.PurchaseSession, error) {
		return domain.SelectTicketType(s, id)
	})
}

// SelectStation chooses the origin or destination station.
func (f *PurchaseFlow) SelectStation(end domain.StationEnd, id string) error {
	return f.apply(func(s domain.PurchaseSession) (domain.PurchaseSession, error) {
		return domain.SelectStation(s, end, id)
	})
}

// SetDiscountInput stores the national id used for the discount check.
func (f *PurchaseFlow) SetDiscountInput(input string) error {
	return f.apply(func(s domain.PurchaseSession) (domain.PurchaseSession, error) {
		return domain.SetDiscountInput(s, input)
	})
}

// ApplyDiscount validates the stored national id and reports whether the
// discount is now applied.
func (f *PurchaseFlow) ApplyDiscount() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session.Status != domain.StatusCollecting {
		return f.session.DiscountApplied, domain.ErrSessionLocked
	}
	var ok bool
	f.session, ok = domain.ApplyDiscount(f.session)
	if ok {
		metrics.DiscountChecks.WithLabelValues("eligible").Inc()
	} else {
		metrics.DiscountChecks.WithLabelValues("ineligible").Inc()
	}
	return ok, nil
}

// SelectPaymentMethod chooses how the purchase is paid.
func (f *PurchaseFlow) SelectPaymentMethod(id string) error {
	return f.apply(func(s domain.PurchaseSession) (domain.PurchaseSession, error) {
		return domain.SelectPaymentMethod(s, id)
	})
}

// Next moves to the following step. On the payment step moving on means
// paying, so Next submits the purchase. On the confirmation step it is a no-op.
func (f *PurchaseFlow) Next(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session.CurrentStep == domain.StepConfirmation {
		return nil
	}
	if !domain.CanAdvance(f.session) {
		return domain.ErrStepIncomplete
	}
	if f.session.CurrentStep == domain.StepPayment {
		return f.submitLocked(ctx)
	}
	f.session = domain.Advance(f.session)
	return nil
}

// Back moves to the previous step. It is refused once settlement has begun.
func (f *PurchaseFlow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session.Status != domain.StatusCollecting {
		return domain.ErrSessionLocked
	}
	f.session = domain.Retreat(f.session)
	return nil
}

// Submit starts settlement of the purchase.
func (f *PurchaseFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitLocked(ctx)
}

func (f *PurchaseFlow) submitLocked(ctx context.Context) error {
	_, span := tracer.Start(ctx, telemetry.SpanPurchaseSubmit)
	defer span.End()

	next, err := domain.BeginSettlement(f.session)
	if err != nil {
		span.RecordError(err)
		return err
	}
	f.session = next
	span.SetAttributes(
		attribute.String(telemetry.AttrTicketType, next.TicketTypeID),
		attribute.String(telemetry.AttrPaymentMethod, next.PaymentMethodID),
	)

	gen := f.generation
	f.pending = f.settlement.Settle(func() { f.complete(gen) })

	metrics.PurchasesSubmitted.WithLabelValues(next.TicketTypeID).Inc()
	f.logger.Info("purchase submitted",
		"ticket_type", next.TicketTypeID,
		"payment_method", next.PaymentMethodID,
		"settlement_delay", f.settlement.Delay().String(),
	)
	return nil
}

// complete runs when the settlement for generation gen fires.
func (f *PurchaseFlow) complete(gen uint64) {
	_, span := tracer.Start(context.Background(), telemetry.SpanPurchaseSettle)
	defer span.End()

	f.mu.Lock()
	if gen != f.generation || f.session.Status != domain.StatusProcessing {
		f.mu.Unlock()
		metrics.StaleSettlements.Inc()
		f.logger.Warn("dropping stale settlement", "generation", gen)
		return
	}

	next, err := domain.CompleteSettlement(f.session, f.ids.NewTransactionID(), f.now().UTC())
	if err != nil {
		f.mu.Unlock()
		span.RecordError(err)
		f.logger.Error("complete settlement", "error", err)
		return
	}
	f.session = next
	f.pending = nil
	record := domain.BuildConfirmation(next)
	f.mu.Unlock()

	span.SetAttributes(attribute.String(telemetry.AttrTransactionID, record.TransactionID))
	metrics.PurchasesCompleted.WithLabelValues(record.TicketTypeID, record.PaymentMethodID).Inc()
	f.logger.Info("purchase complete",
		"ticket_type", record.TicketTypeID,
		"transaction_id", record.TransactionID,
		"price", record.Price,
	)

	if f.onComplete != nil {
		f.onComplete(record)
	}
}

// Restart begins a new purchase. Only a completed purchase can be restarted.
func (f *PurchaseFlow) Restart() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session.Status != domain.StatusComplete {
		return domain.ErrNotComplete
	}
	f.resetLocked()
	return nil
}

// Reset discards the session whatever its status. A settlement still in
// flight is cancelled and can no longer touch the flow.
func (f *PurchaseFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *PurchaseFlow) resetLocked() {
	if f.pending != nil {
		f.pending.Cancel()
		f.pending = nil
	}
	f.generation++
	f.session = domain.NewSession()
}

func (f *PurchaseFlow) apply(fn func(domain.PurchaseSession) (domain.PurchaseSession, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := fn(f.session)
	if err != nil {
		return err
	}
	f.session = next
	return nil
}
