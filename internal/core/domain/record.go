package domain

import "time"

// Route is the origin/destination pair of a single-trip ticket.
type Route struct {
	OriginStationID      string `json:"origin_station_id"`
	DestinationStationID string `json:"destination_station_id"`
}

// ConfirmationRecord summarises a completed purchase for the host application.
type ConfirmationRecord struct {
	TicketTypeID    string    `json:"ticket_type_id"`
	Route           *Route    `json:"route,omitempty"`
	DiscountApplied bool      `json:"discount_applied"`
	PaymentMethodID string    `json:"payment_method_id"`
	Price           int64     `json:"price"`
	TransactionID   string    `json:"transaction_id"`
	Timestamp       time.Time `json:"timestamp"`
}

// BuildConfirmation assembles the record for a session.
func BuildConfirmation(s PurchaseSession) ConfirmationRecord {
	rec := ConfirmationRecord{
		TicketTypeID:    s.TicketTypeID,
		DiscountApplied: s.DiscountApplied,
		PaymentMethodID: s.PaymentMethodID,
		Price:           AmountDue(s),
		TransactionID:   s.TransactionID,
	}
	if s.CompletedAt != nil {
		rec.Timestamp = *s.CompletedAt
	}
	if RequiresStations(s.TicketTypeID) {
		rec.Route = &Route{
			OriginStationID:      s.OriginStationID,
			DestinationStationID: s.DestinationStationID,
		}
	}
	return rec
}
