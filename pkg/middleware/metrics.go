package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/schnitzelbub/bocadillo/pkg/server"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "bocadillo").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "bocadillo",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors for the dispatch core.
type metrics struct {
	connectionsTotal *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	activeSessions   prometheus.Gauge
	sessionCloses    *prometheus.CounterVec
}

// globalMetrics is the singleton collector set, created on the first call
// to Metrics(). Prometheus registration is not idempotent, so repeated
// Metrics() calls share one set.
var (
	globalMetrics     *metrics
	globalMetricsOnce sync.Once
)

// initMetrics registers the collectors.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		connectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connections_total",
			Help:        "Total connections dispatched, by kind and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Time from dispatch start to terminal outcome",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Persistent sessions currently being dispatched",
			ConstLabels: config.ConstLabels,
		}),

		sessionCloses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "session_closes_total",
			Help:        "Session terminations by close code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),
	}
}

// Metrics creates transport-level middleware that records Prometheus
// metrics for every dispatched connection: totals by kind and outcome,
// dispatch duration, in-flight sessions, and session close codes.
//
// Example:
//
//	app.Use(middleware.Metrics(
//	    middleware.WithNamespace("myapp"),
//	))
func Metrics(opts ...MetricsOption) Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsOnce.Do(func() {
		globalMetrics = initMetrics(config)
	})
	m := globalMetrics

	return Func(func(conn server.Conn, next func() error) error {
		start := time.Now()

		if conn.Kind() == server.KindPersistentSession {
			m.activeSessions.Inc()
			defer m.activeSessions.Dec()
		}

		err := next()

		m.dispatchDuration.WithLabelValues(conn.Kind().String()).Observe(time.Since(start).Seconds())

		status := "ok"
		if err != nil {
			status = "error"
		}
		switch c := conn.(type) {
		case *server.RequestCtx:
			if code := c.StatusCode(); code != 0 {
				status = strconv.Itoa(code)
			}
		case *server.HandshakeCtx:
			if code := c.CloseCode(); code != 0 {
				m.sessionCloses.WithLabelValues(strconv.Itoa(code)).Inc()
			}
		}
		m.connectionsTotal.WithLabelValues(conn.Kind().String(), status).Inc()

		return err
	})
}
