package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/metropass/internal/core/domain"
)

func TestBuildConfirmation_SingleTrip(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	s := domain.PurchaseSession{
		TicketTypeID:         domain.TicketSingleTrip,
		OriginStationID:      "ben-thanh",
		DestinationStationID: "suoi-tien",
		PaymentMethodID:      "visa",
		Status:               domain.StatusComplete,
		TransactionID:        "METRO-00000001",
		CompletedAt:          &at,
	}

	rec := domain.BuildConfirmation(s)
	if rec.Route == nil {
		t.Fatal("expected a route")
	}
	if rec.Route.OriginStationID != "ben-thanh" || rec.Route.DestinationStationID != "suoi-tien" {
		t.Errorf("unexpected route %+v", rec.Route)
	}
	if rec.Price != 15000 {
		t.Errorf("expected 15000, got %d", rec.Price)
	}
	if rec.TransactionID != "METRO-00000001" || !rec.Timestamp.Equal(at) {
		t.Errorf("unexpected transaction data %+v", rec)
	}
}

func TestBuildConfirmation_PassHasNoRoute(t *testing.T) {
	rec := domain.BuildConfirmation(domain.PurchaseSession{
		TicketTypeID:    domain.TicketMonthly,
		PaymentMethodID: "momo",
		DiscountApplied: true,
	})
	if rec.Route != nil {
		t.Errorf("expected no route, got %+v", rec.Route)
	}
	if !rec.DiscountApplied || rec.Price != 300000 {
		t.Errorf("unexpected record %+v", rec)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"route"`) {
		t.Errorf("expected route omitted from %s", data)
	}
}
