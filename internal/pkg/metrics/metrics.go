package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "metropass",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "metropass",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Purchase metrics
	PurchasesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "purchase",
		Name:      "submitted_total",
		Help:      "Purchases handed to settlement",
	}, []string{"ticket_type"})

	PurchasesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "purchase",
		Name:      "completed_total",
		Help:      "Purchases that reached the confirmation step",
	}, []string{"ticket_type", "payment_method"})

	StaleSettlements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "purchase",
		Name:      "settlements_stale_total",
		Help:      "Settlement completions dropped because their session was discarded",
	})

	DiscountChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "purchase",
		Name:      "discount_checks_total",
		Help:      "National id discount checks by result",
	}, []string{"result"})

	ActiveFlows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "metropass",
		Subsystem: "purchase",
		Name:      "active_flows",
		Help:      "Purchase flows currently held by the host",
	})

	ExpiredFlows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "purchase",
		Name:      "flows_expired_total",
		Help:      "Purchase flows discarded after sitting idle",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "metropass",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metropass",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// route pattern keeps purchase ids out of the label set
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
