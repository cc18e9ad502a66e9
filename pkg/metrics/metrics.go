// Package metrics exports render statistics to Prometheus.
//
// A Collector implements render.Observer:
//
//	m := metrics.New(metrics.WithNamespace("myapp"))
//	r := render.New(render.Config{Observer: m})
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/render"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "emtpl").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "emtpl",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the emtpl metrics.
type Collector struct {
	rendersTotal      *prometheus.CounterVec
	renderDuration    prometheus.Histogram
	nodesTotal        *prometheus.CounterVec
	deletedTotal      prometheus.Counter
	errorsTotal       *prometheus.CounterVec
	injectionsBlocked *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	wsErrors          *prometheus.CounterVec
}

var _ render.Observer = (*Collector)(nil)

// New registers the emtpl metrics and returns their collector.
//
// Metrics collected:
//   - emtpl_renders_total: Counter of renders by status (success, error)
//   - emtpl_render_duration_seconds: Histogram of render duration
//   - emtpl_nodes_total: Counter of rendered nodes by diff status
//   - emtpl_deleted_nodes_total: Counter of previous nodes collected for deletion
//   - emtpl_errors_total: Counter of render errors by code
//   - emtpl_injections_blocked_total: Counter of blocked script bindings by attribute
//   - emtpl_active_sessions: Gauge of live websocket sessions
//   - emtpl_websocket_errors_total: Counter of websocket errors by type
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of template renders",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render and diff duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_total",
			Help:        "Total number of rendered nodes by diff status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		deletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deleted_nodes_total",
			Help:        "Total number of previous nodes collected for deletion",
			ConstLabels: config.ConstLabels,
		}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of render errors by code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		injectionsBlocked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "injections_blocked_total",
			Help:        "Total number of script bindings replaced by the injection guard",
			ConstLabels: config.ConstLabels,
		}, []string{"attr"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live websocket render sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// RenderDone implements render.Observer.
func (c *Collector) RenderDone(stats render.Stats, err error) {
	c.renderDuration.Observe(stats.Duration.Seconds())
	if err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = "unknown"
		}
		c.errorsTotal.WithLabelValues(code).Inc()
		c.rendersTotal.WithLabelValues("error").Inc()
		return
	}
	c.rendersTotal.WithLabelValues("success").Inc()
	for status, n := range stats.Nodes {
		c.nodesTotal.WithLabelValues(status.String()).Add(float64(n))
	}
	c.deletedTotal.Add(float64(stats.Deleted))
}

// InjectionBlocked implements render.Observer.
func (c *Collector) InjectionBlocked(attr string) {
	c.injectionsBlocked.WithLabelValues(attr).Inc()
}

// SessionOpened records a new live session.
func (c *Collector) SessionOpened() {
	c.activeSessions.Inc()
}

// SessionClosed records the end of a live session.
func (c *Collector) SessionClosed() {
	c.activeSessions.Dec()
}

// WebSocketError records a websocket error of the given type.
func (c *Collector) WebSocketError(errorType string) {
	c.wsErrors.WithLabelValues(errorType).Inc()
}

// statusLabels lists every status so dashboards see zero-valued series.
var statusLabels = []vdom.Status{
	vdom.StatusAppend, vdom.StatusDelete, vdom.StatusNormal,
	vdom.StatusUpdate, vdom.StatusMove, vdom.StatusMoveUpdate,
}

// Init creates the per-status node series at zero.
func (c *Collector) Init() {
	for _, s := range statusLabels {
		c.nodesTotal.WithLabelValues(s.String())
	}
	c.rendersTotal.WithLabelValues("success")
	c.rendersTotal.WithLabelValues("error")
}
