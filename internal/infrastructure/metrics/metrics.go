package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the server.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOpsTotal   *prometheus.CounterVec
	storeBytes      *prometheus.GaugeVec
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		storeOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasklist_store_operations_total",
				Help: "Document store reads and writes by outcome",
			},
			[]string{"op", "result"},
		),
		storeBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tasklist_store_document_bytes",
				Help: "Size of the last document read or written",
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.storeOpsTotal, m.storeBytes)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				// The error handler has not written the response yet.
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	}
}

// ObserveStore records one store operation. It is safe to call on a nil *Metrics.
func (m *Metrics) ObserveStore(op string, size int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOpsTotal.WithLabelValues(op, result).Inc()
	if err == nil {
		m.storeBytes.WithLabelValues(op).Set(float64(size))
	}
}
