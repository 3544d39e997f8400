package domain

import "errors"

var (
	ErrUnknownTicketType     = errors.New("unknown ticket type")
	ErrUnknownStation        = errors.New("unknown station")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrSameStation           = errors.New("origin and destination must be different")
	ErrStationsNotApplicable = errors.New("ticket type does not take stations")
	ErrSessionLocked         = errors.New("purchase is no longer collecting input")
	ErrStepIncomplete        = errors.New("current step is incomplete")
	ErrSelectionIncomplete   = errors.New("ticket selection is incomplete")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrNotProcessing         = errors.New("purchase is not processing")
	ErrNotComplete           = errors.New("purchase is not complete")
)
