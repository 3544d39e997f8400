package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StudentDiscountPercent is the rate shown on the monthly pass discount line.
const StudentDiscountPercent = 50

var vndPrinter = message.NewPrinter(language.Vietnamese)

// Price returns the flat fare of a ticket type, or 0 for an unknown or unset id.
func Price(ticketTypeID string) int64 {
	t, ok := LookupTicketType(ticketTypeID)
	if !ok {
		return 0
	}
	return t.Price
}

// DiscountLineShown reports whether the payment summary lists the student
// discount. Only the monthly pass carries one.
func DiscountLineShown(s PurchaseSession) bool {
	return s.DiscountApplied && s.TicketTypeID == TicketMonthly
}

// AmountDue is the total charged for the session.
//
// The discount line is displayed but not deducted: AmountDue is always the
// catalog price.
// TODO: deduct StudentDiscountPercent once the monthly student fare is confirmed.
func AmountDue(s PurchaseSession) int64 {
	return Price(s.TicketTypeID)
}

// FormatVND renders an amount with Vietnamese digit grouping, e.g. "15.000 VND".
func FormatVND(amount int64) string {
	return vndPrinter.Sprintf("%d VND", amount)
}
