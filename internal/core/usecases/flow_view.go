package usecases

import (
	"fmt"
	"time"

	"github.com/samirrijal/metropass/internal/core/domain"
)

var (
	coverageAllStations = domain.Text{Vi: "Tất cả các ga", En: "All stations"}
	studentDiscount     = domain.Text{Vi: "Giảm Giá Sinh Viên", En: "Student Discount"}
)

// StepView is one entry of the wizard progress bar.
type StepView struct {
	Step   domain.Step `json:"step"`
	Label  string      `json:"label"`
	Done   bool        `json:"done"`
	Active bool        `json:"active"`
}

// RouteView names both ends of a single-trip route.
type RouteView struct {
	Origin      StationView `json:"origin"`
	Destination StationView `json:"destination"`
}

// DiscountLine is the informational discount row of the payment summary.
type DiscountLine struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
	Text    string `json:"text"`
}

// FlowView is everything a client needs to render the wizard.
type FlowView struct {
	ID              string                `json:"id"`
	Locale          string                `json:"locale"`
	Status          domain.Status         `json:"status"`
	CurrentStep     domain.Step           `json:"current_step"`
	Steps           []StepView            `json:"steps"`
	Progress        int                   `json:"progress"`
	CanAdvance      bool                  `json:"can_advance"`
	CanGoBack       bool                  `json:"can_go_back"`
	CanRestart      bool                  `json:"can_restart"`
	TicketType      *TicketTypeView       `json:"ticket_type,omitempty"`
	Route           *RouteView            `json:"route,omitempty"`
	Coverage        string                `json:"coverage,omitempty"`
	DiscountInput   string                `json:"discount_input,omitempty"`
	DiscountApplied bool                  `json:"discount_applied"`
	DiscountLine    *DiscountLine         `json:"discount_line,omitempty"`
	PaymentMethod   *domain.PaymentMethod `json:"payment_method,omitempty"`
	Total           int64                 `json:"total"`
	TotalText       string                `json:"total_text"`
	TransactionID   string                `json:"transaction_id,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
}

// DescribeFlow renders a session for a locale. The locale only picks text.
func DescribeFlow(id string, s domain.PurchaseSession, locale domain.Locale) FlowView {
	steps := domain.StepsFor(s.TicketTypeID)
	active := domain.ActivePosition(s)

	v := FlowView{
		ID:              id,
		Locale:          locale.String(),
		Status:          s.Status,
		CurrentStep:     s.CurrentStep,
		Steps:           make([]StepView, 0, len(steps)),
		Progress:        domain.Progress(s),
		CanAdvance:      domain.CanAdvance(s),
		CanGoBack:       s.Status == domain.StatusCollecting && s.CurrentStep != domain.StepSelectTicketType,
		CanRestart:      s.Status == domain.StatusComplete,
		DiscountInput:   s.DiscountInput,
		DiscountApplied: s.DiscountApplied,
		Total:           domain.AmountDue(s),
		TotalText:       domain.FormatVND(domain.AmountDue(s)),
		TransactionID:   s.TransactionID,
	}

	for i, step := range steps {
		v.Steps = append(v.Steps, StepView{
			Step:   step,
			Label:  step.Label(locale),
			Done:   i < active,
			Active: i == active,
		})
	}

	if t, ok := domain.LookupTicketType(s.TicketTypeID); ok {
		tv := NewTicketTypeView(t, locale)
		v.TicketType = &tv
		if domain.RequiresStations(t.ID) {
			v.Route = describeRoute(s, locale)
		} else {
			v.Coverage = coverageAllStations.In(locale)
		}
	}

	if domain.DiscountLineShown(s) {
		v.DiscountLine = &DiscountLine{
			Label:   studentDiscount.In(locale),
			Percent: domain.StudentDiscountPercent,
			Text:    fmt.Sprintf("-%d%%", domain.StudentDiscountPercent),
		}
	}

	if m, ok := domain.LookupPaymentMethod(s.PaymentMethodID); ok {
		v.PaymentMethod = &m
	}

	if s.CompletedAt != nil {
		at := *s.CompletedAt
		v.CompletedAt = &at
	}
	return v
}

func describeRoute(s domain.PurchaseSession, locale domain.Locale) *RouteView {
	origin, ok := domain.LookupStation(s.OriginStationID)
	if !ok {
		return nil
	}
	dest, ok := domain.LookupStation(s.DestinationStationID)
	if !ok {
		return nil
	}
	return &RouteView{
		Origin:      StationView{ID: origin.ID, Name: origin.Name.In(locale)},
		Destination: StationView{ID: dest.ID, Name: dest.Name.In(locale)},
	}
}
