package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	natsadapter "github.com/samirrijal/metropass/internal/adapters/nats"
	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/pkg/metrics"
)

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// the confirmation record of one purchase flow to the client. The flow id is
// the :id route parameter. The connection stays open until the client closes
// it; a flow that is restarted and completes again sends a second record.
func WebSocketHandler(sub *natsadapter.Subscriber) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		flowID := c.Params("id")
		logger := slog.Default().With("flow_id", flowID, "remote_addr", c.RemoteAddr().String())
		logger.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if sub == nil {
			_ = writeJSON(map[string]string{"error": "confirmation relay not configured"})
			return
		}

		s, err := sub.SubscribeConfirmation(flowID, func(rec domain.ConfirmationRecord) {
			if err := writeJSON(rec); err != nil {
				logger.Warn("ws write", "error", err)
			}
		})
		if err != nil {
			logger.Error("ws subscribe", "error", err)
			_ = writeJSON(map[string]string{"error": "subscribe failed"})
			return
		}
		defer func() { _ = s.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Client messages are ignored; reading detects the close.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		logger.Info("ws client disconnected")
	}
}
