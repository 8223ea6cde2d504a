package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arklim/passmeter/internal/infra/telemetry"
)

const unmatchedRoute = "unmatched"

var (
	httpLabels          = []string{"method", "route", "status"}
	responseSizeBuckets = prometheus.ExponentialBuckets(64, 4, 6)
)

// HTTPMetricsOptions configures the HTTP metrics middleware.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// HTTPMetrics holds the request collectors, labelled by method, route template and status.
type HTTPMetrics struct {
	Requests     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	ResponseSize *prometheus.HistogramVec
	InFlight     prometheus.Gauge
}

// NewHTTPMetrics registers the collectors, reusing ones already registered on the same registerer.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	if opts.Namespace == "" {
		opts.Namespace = "passmeter"
	}
	if opts.Subsystem == "" {
		opts.Subsystem = "http"
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = prometheus.DefBuckets
	}
	reg := opts.Registerer

	m := &HTTPMetrics{}
	var err error

	if m.Requests, err = telemetry.RegisterCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, httpLabels)); err != nil {
		return nil, err
	}

	if m.Duration, err = telemetry.RegisterCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   opts.Buckets,
	}, httpLabels)); err != nil {
		return nil, err
	}

	if m.ResponseSize, err = telemetry.RegisterCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "response_size_bytes",
		Help:      "HTTP response body size in bytes.",
		Buckets:   responseSizeBuckets,
	}, httpLabels)); err != nil {
		return nil, err
	}

	if m.InFlight, err = telemetry.RegisterCollector[prometheus.Gauge](reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      "in_flight_requests",
		Help:      "HTTP requests currently being served.",
	})); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler records the collectors for each request. A nil receiver is a pass-through.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		c.Next()

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  routeLabel(c),
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.Requests.With(labels).Inc()
		m.Duration.With(labels).Observe(time.Since(start).Seconds())
		m.ResponseSize.With(labels).Observe(float64(max(c.Writer.Size(), 0)))
	}
}

// routeLabel returns the matched route template so label cardinality stays bounded.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
