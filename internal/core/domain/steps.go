package domain

import "fmt"

// Step identifies a wizard step. Values are canonical slots: the numbering
// is fixed whether or not the stations step is present for a ticket type.
type Step int

const (
	StepSelectTicketType Step = iota
	StepSelectStations
	StepPayment
	StepConfirmation
)

var stepLabels = map[Step]Text{
	StepSelectTicketType: {Vi: "Chọn Loại Vé", En: "Select Ticket Type"},
	StepSelectStations:   {Vi: "Chọn Ga", En: "Select Stations"},
	StepPayment:          {Vi: "Thanh Toán", En: "Payment"},
	StepConfirmation:     {Vi: "Xác Nhận", En: "Confirmation"},
}

func (s Step) String() string {
	switch s {
	case StepSelectTicketType:
		return "select-ticket-type"
	case StepSelectStations:
		return "select-stations"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// MarshalText encodes the step as its identifier.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Label returns the display name of the step.
func (s Step) Label(l Locale) string {
	return stepLabels[s].In(l)
}

// RequiresStations reports whether the ticket type needs origin and
// destination stations.
func RequiresStations(ticketTypeID string) bool {
	return ticketTypeID == TicketSingleTrip
}

// StepsFor derives the ordered step list for a ticket type (or none).
func StepsFor(ticketTypeID string) []Step {
	steps := []Step{StepSelectTicketType}
	if RequiresStations(ticketTypeID) {
		steps = append(steps, StepSelectStations)
	}
	return append(steps, StepPayment, StepConfirmation)
}

// Advance moves the cursor forward one step, skipping the stations slot when
// the ticket type does not take stations. No-op on the last slot.
func Advance(s PurchaseSession) PurchaseSession {
	if s.CurrentStep >= StepConfirmation {
		return s
	}
	if !RequiresStations(s.TicketTypeID) && s.CurrentStep == StepSelectTicketType {
		s.CurrentStep += 2
		return s
	}
	s.CurrentStep++
	return s
}

// Retreat mirrors Advance. No-op on the first slot.
func Retreat(s PurchaseSession) PurchaseSession {
	if s.CurrentStep <= StepSelectTicketType {
		return s
	}
	if !RequiresStations(s.TicketTypeID) && s.CurrentStep == StepPayment {
		s.CurrentStep -= 2
		return s
	}
	s.CurrentStep--
	return s
}

// CanAdvance reports whether the current step has every required field.
func CanAdvance(s PurchaseSession) bool {
	switch s.CurrentStep {
	case StepSelectTicketType:
		return s.TicketTypeID != ""
	case StepSelectStations:
		return stationsComplete(s)
	case StepPayment:
		return s.PaymentMethodID != "" && s.Status != StatusProcessing && selectionComplete(s)
	default:
		return false
	}
}

// ActivePosition returns the index of the current slot within StepsFor.
func ActivePosition(s PurchaseSession) int {
	for i, step := range StepsFor(s.TicketTypeID) {
		if step == s.CurrentStep {
			return i
		}
	}
	return 0
}

// Progress returns how far through the derived step list the cursor is, 0-100.
func Progress(s PurchaseSession) int {
	steps := StepsFor(s.TicketTypeID)
	return ActivePosition(s) * 100 / (len(steps) - 1)
}

func selectionComplete(s PurchaseSession) bool {
	if s.TicketTypeID == "" {
		return false
	}
	return !RequiresStations(s.TicketTypeID) || stationsComplete(s)
}
