package http

import (
	"strconv"
	"time"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one server. Each server owns
// its registry so several servers can coexist in a process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	httpRequestsInFlight  prometheus.Gauge
	httpRequestSizeBytes  *prometheus.HistogramVec
	classificationsTotal  *prometheus.CounterVec
	forensicChecksSkipped *prometheus.CounterVec
	reportsSubmitted      *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		httpRequestSizeBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7), // 100B to 100MB
			},
			[]string{"method", "path"},
		),

		classificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jaldrishti_classifications_total",
				Help: "Image classifications by decision outcome and verdict",
			},
			[]string{"outcome", "waterlogged"},
		),

		forensicChecksSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jaldrishti_forensic_checks_skipped_total",
				Help: "Forensic checks that could not run",
			},
			[]string{"check"},
		),

		reportsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jaldrishti_reports_submitted_total",
				Help: "Citizen reports submitted by initial moderation status",
			},
			[]string{"admin_status", "spam"},
		),
	}
}

// Middleware records request counts, latency and size. The /metrics
// endpoint itself is not measured.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}

			start := time.Now()
			m.httpRequestsInFlight.Inc()
			defer m.httpRequestsInFlight.Dec()

			requestSize := float64(c.Request().ContentLength)
			if requestSize < 0 {
				requestSize = 0
			}

			err := next(c)

			method := c.Request().Method
			path := c.Path()
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = statusFromError(err)
			}

			m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			m.httpRequestSizeBytes.WithLabelValues(method, path).Observe(requestSize)

			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// RecordClassification counts a classifier decision and any skipped checks.
func (m *Metrics) RecordClassification(c *jaldrishti.Classification) {
	m.classificationsTotal.WithLabelValues(
		string(c.Outcome),
		strconv.FormatBool(c.Result.Waterlogged),
	).Inc()
	for _, check := range c.Result.Forensics.Skipped {
		m.forensicChecksSkipped.WithLabelValues(check).Inc()
	}
}

// RecordReport counts a submitted report.
func (m *Metrics) RecordReport(r *jaldrishti.CitizenReport) {
	m.reportsSubmitted.WithLabelValues(string(r.AdminStatus), strconv.FormatBool(r.IsSpam)).Inc()
}
