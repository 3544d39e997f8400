package domain

import (
	"fmt"
	"time"
)

// Status is the settlement state of a purchase. It only moves forward.
type Status int

const (
	StatusCollecting Status = iota
	StatusProcessing
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusCollecting:
		return "collecting"
	case StatusProcessing:
		return "processing"
	case StatusComplete:
		return "complete"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText encodes the status as its string form.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StationEnd picks which end of the route a station selection applies to.
type StationEnd int

const (
	Origin StationEnd = iota
	Destination
)

// PurchaseSession is the in-progress purchase of one wizard invocation.
// Empty string fields are unset. CurrentStep is a canonical slot.
type PurchaseSession struct {
	TicketTypeID         string     `json:"ticket_type_id,omitempty"`
	OriginStationID      string     `json:"origin_station_id,omitempty"`
	DestinationStationID string     `json:"destination_station_id,omitempty"`
	DiscountInput        string     `json:"discount_input,omitempty"`
	DiscountApplied      bool       `json:"discount_applied"`
	PaymentMethodID      string     `json:"payment_method_id,omitempty"`
	Status               Status     `json:"status"`
	CurrentStep          Step       `json:"current_step"`
	TransactionID        string     `json:"transaction_id,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// NewSession returns a session with nothing selected.
func NewSession() PurchaseSession {
	return PurchaseSession{Status: StatusCollecting, CurrentStep: StepSelectTicketType}
}

// SelectTicketType sets the ticket type and re-derives the step list.
// Station ids are dropped when the new type does not take them, and a cursor
// left on the vanished stations slot moves back to the ticket type slot.
// Switching to a type that takes stations while on the payment slot moves
// the cursor back to the stations slot until both ends are chosen.
func SelectTicketType(s PurchaseSession, id string) (PurchaseSession, error) {
	if s.Status != StatusCollecting {
		return s, ErrSessionLocked
	}
	if _, ok := LookupTicketType(id); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownTicketType, id)
	}

	s.TicketTypeID = id
	if !RequiresStations(id) {
		s.OriginStationID = ""
		s.DestinationStationID = ""
		if s.CurrentStep == StepSelectStations {
			s.CurrentStep = StepSelectTicketType
		}
	} else if s.CurrentStep == StepPayment && !stationsComplete(s) {
		s.CurrentStep = StepSelectStations
	}
	return s, nil
}

// SelectStation sets the origin or destination station.
func SelectStation(s PurchaseSession, end StationEnd, id string) (PurchaseSession, error) {
	if s.Status != StatusCollecting {
		return s, ErrSessionLocked
	}
	if !RequiresStations(s.TicketTypeID) {
		return s, ErrStationsNotApplicable
	}
	if _, ok := LookupStation(id); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownStation, id)
	}

	switch end {
	case Origin:
		if id == s.DestinationStationID {
			return s, ErrSameStation
		}
		s.OriginStationID = id
	case Destination:
		if id == s.OriginStationID {
			return s, ErrSameStation
		}
		s.DestinationStationID = id
	default:
		return s, fmt.Errorf("unknown station end %d", end)
	}
	return s, nil
}

// SetDiscountInput stores the national id typed by the user. Any previously
// applied discount is withdrawn until the new input is applied.
func SetDiscountInput(s PurchaseSession, input string) (PurchaseSession, error) {
	if s.Status != StatusCollecting {
		return s, ErrSessionLocked
	}
	s.DiscountInput = input
	s.DiscountApplied = false
	return s, nil
}

// SelectPaymentMethod sets the payment method.
func SelectPaymentMethod(s PurchaseSession, id string) (PurchaseSession, error) {
	if s.Status != StatusCollecting {
		return s, ErrSessionLocked
	}
	if _, ok := LookupPaymentMethod(id); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, id)
	}
	s.PaymentMethodID = id
	return s, nil
}

// BeginSettlement moves a fully selected session to Processing.
func BeginSettlement(s PurchaseSession) (PurchaseSession, error) {
	if s.Status != StatusCollecting {
		return s, ErrSessionLocked
	}
	if s.TicketTypeID == "" {
		return s, ErrSelectionIncomplete
	}
	if RequiresStations(s.TicketTypeID) && !stationsComplete(s) {
		return s, ErrSelectionIncomplete
	}
	if s.PaymentMethodID == "" {
		return s, ErrPaymentMethodRequired
	}
	s.Status = StatusProcessing
	return s, nil
}

// CompleteSettlement records the transaction and moves to the confirmation slot.
func CompleteSettlement(s PurchaseSession, transactionID string, at time.Time) (PurchaseSession, error) {
	if s.Status != StatusProcessing {
		return s, ErrNotProcessing
	}
	s.Status = StatusComplete
	s.TransactionID = transactionID
	s.CompletedAt = &at
	s.CurrentStep = StepConfirmation
	return s, nil
}

func stationsComplete(s PurchaseSession) bool {
	return s.OriginStationID != "" &&
		s.DestinationStationID != "" &&
		s.OriginStationID != s.DestinationStationID
}
