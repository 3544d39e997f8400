package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/metropass/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Display locale from ?lang= or Accept-Language
	app.Use(LocaleMiddleware(deps.DefaultLocale))

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Catalog
	v1.Get("/ticket-types", timeout.NewWithContext(ListTicketTypesHandler(deps), requestTimeout))
	v1.Get("/ticket-types/:id/fare", timeout.NewWithContext(FareHandler(deps), requestTimeout))
	v1.Get("/stations", timeout.NewWithContext(ListStationsHandler(deps), requestTimeout))
	v1.Get("/stations/:id/destinations", timeout.NewWithContext(DestinationsHandler(deps), requestTimeout))
	v1.Get("/payment-methods", timeout.NewWithContext(ListPaymentMethodsHandler(deps), requestTimeout))

	// Purchase wizard
	v1.Post("/purchases", CreatePurchaseHandler(deps))
	v1.Get("/purchases/:id", GetPurchaseHandler(deps))
	v1.Delete("/purchases/:id", DeletePurchaseHandler(deps))
	v1.Put("/purchases/:id/ticket-type", SelectTicketTypeHandler(deps))
	v1.Put("/purchases/:id/stations", SelectStationsHandler(deps))
	v1.Put("/purchases/:id/discount", SetDiscountHandler(deps))
	v1.Put("/purchases/:id/payment-method", SelectPaymentMethodHandler(deps))
	v1.Post("/purchases/:id/next", NextHandler(deps))
	v1.Post("/purchases/:id/back", BackHandler(deps))
	v1.Post("/purchases/:id/submit", SubmitHandler(deps))
	v1.Post("/purchases/:id/restart", RestartHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/purchases/:id", websocket.New(WebSocketHandler(deps.Confirmations)))
}
