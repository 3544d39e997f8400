package natsadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/metropass/internal/core/domain"
)

// Subscriber delivers confirmation records from the TICKET_PURCHASES stream.
type Subscriber struct {
	js nats.JetStreamContext
}

// NewSubscriber creates a subscriber on an existing connection.
func NewSubscriber(conn *nats.Conn) (*Subscriber, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{js: js}, nil
}

// SubscribeConfirmation calls handler with the confirmation of one flow.
// The last record already stored for the flow is delivered first, so a
// client that connects after settlement still sees it.
func (s *Subscriber) SubscribeConfirmation(flowID string, handler func(domain.ConfirmationRecord)) (*nats.Subscription, error) {
	return s.js.Subscribe(Subject(flowID), func(msg *nats.Msg) {
		var rec domain.ConfirmationRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			slog.Warn("decode confirmation", "subject", msg.Subject, "error", err)
			return
		}
		handler(rec)
	},
		nats.OrderedConsumer(),
		nats.DeliverLastPerSubject(),
	)
}
