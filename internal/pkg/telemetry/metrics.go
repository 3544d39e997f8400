package telemetry

// Span and attribute names used for instrumentation.
const (
	// Spans
	SpanPurchaseSubmit = "purchase.submit"
	SpanPurchaseSettle = "purchase.settle"
	SpanPublishConfirm = "purchase.publish_confirmation"

	// Attributes
	AttrFlowID        = "purchase.flow_id"
	AttrTicketType    = "purchase.ticket_type"
	AttrPaymentMethod = "purchase.payment_method"
	AttrTransactionID = "purchase.transaction_id"
)
