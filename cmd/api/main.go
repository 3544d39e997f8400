package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/metropass/internal/adapters/http"
	natsadapter "github.com/samirrijal/metropass/internal/adapters/nats"
	"github.com/samirrijal/metropass/internal/adapters/timer"
	"github.com/samirrijal/metropass/internal/adapters/valkey"
	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/ports"
	"github.com/samirrijal/metropass/internal/core/usecases"
	"github.com/samirrijal/metropass/internal/pkg/config"
	"github.com/samirrijal/metropass/internal/pkg/logging"
	"github.com/samirrijal/metropass/internal/pkg/telemetry"
	"github.com/samirrijal/metropass/internal/pkg/txid"
)

const publishTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load("metropass-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var catalogCache ports.CacheService
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			catalogCache = cache
		}
	}

	// NATS
	var publisher ports.ConfirmationPublisher
	var natsConn *nats.Conn
	var confirmations *natsadapter.Subscriber
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			if confirmations, err = natsadapter.NewSubscriber(natsConn); err != nil {
				slog.Warn("confirmation relay unavailable", "error", err)
			}
		}
	}

	// Use cases
	scheduler := timer.New()
	ids := txid.New(cfg.Purchase.TransactionPrefix)
	flows := usecases.NewFlowRegistry(func(id string) *usecases.PurchaseFlow {
		logger := slog.Default().With("flow_id", id)
		return usecases.NewPurchaseFlow(
			usecases.NewSettlementSimulator(scheduler, cfg.Purchase.SettlementDelay),
			ids,
			publishConfirmation(publisher, id, logger),
			usecases.WithLogger(logger),
		)
	}, cfg.Purchase.MaxFlows, usecases.WithIdleTimeout(cfg.Purchase.FlowIdleTimeout))
	go flows.RunJanitor(ctx, cfg.Purchase.FlowIdleTimeout/4)

	deps := &http.Dependencies{
		Catalog:       usecases.NewCatalogService(catalogCache),
		Flows:         flows,
		NATS:          natsConn,
		Confirmations: confirmations,
		Cache:         cache,
		DefaultLocale: domain.ParseLocale(cfg.Purchase.DefaultLocale),
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // request bodies are small JSON selections
		AppName:      "Metropass API",
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Accept-Language",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "settlement_delay", cfg.Purchase.SettlementDelay.String())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// publishConfirmation returns the completion callback of one flow. Without a
// publisher the record is only logged by the flow itself.
func publishConfirmation(pub ports.ConfirmationPublisher, flowID string, logger *slog.Logger) usecases.CompletionFunc {
	if pub == nil {
		return nil
	}
	tracer := otel.Tracer("github.com/samirrijal/metropass/cmd/api")
	return func(record domain.ConfirmationRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		ctx, span := tracer.Start(ctx, telemetry.SpanPublishConfirm)
		defer span.End()
		span.SetAttributes(
			attribute.String(telemetry.AttrFlowID, flowID),
			attribute.String(telemetry.AttrTransactionID, record.TransactionID),
		)

		if err := pub.PublishConfirmation(ctx, flowID, record); err != nil {
			span.RecordError(err)
			logger.Error("publish confirmation", "transaction_id", record.TransactionID, "error", err)
		}
	}
}
