package http

import (
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/metropass/internal/adapters/nats"
	"github.com/samirrijal/metropass/internal/adapters/valkey"
	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Catalog       *usecases.CatalogService
	Flows         *usecases.FlowRegistry
	NATS          *nats.Conn
	Confirmations *natsadapter.Subscriber
	Cache         *valkey.Cache
	DefaultLocale domain.Locale
}
