package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/metropass/internal/core/domain"
)

// SubjectPrefix prefixes every confirmation subject. The flow id follows.
const SubjectPrefix = "tickets.purchased."

// Subject returns the subject a flow's confirmation is published on.
func Subject(flowID string) string {
	return SubjectPrefix + flowID
}

// Publisher implements ports.ConfirmationPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "TICKET_PURCHASES",
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishConfirmation stores the record on the stream. The message id is the
// transaction id so a retried publish is deduplicated by JetStream.
func (p *Publisher) PublishConfirmation(ctx context.Context, flowID string, record domain.ConfirmationRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(Subject(flowID), data,
		nats.Context(ctx),
		nats.MsgId(record.TransactionID),
	)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
