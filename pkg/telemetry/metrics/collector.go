// Package metrics provides Prometheus instrumentation for the website
// project core: operation counts and durations, and resolution cache
// effectiveness.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records the core's Prometheus metrics. It
// implements the metrics interfaces of the schema resolver and the
// operation manager.
type Collector struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationsActive  prometheus.Gauge

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewCollector creates a metrics collector registered against the given
// registry. If registry is nil, a new private registry is used.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "website",
			Name:      "operations_total",
			Help:      "Structural website operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "atelier",
			Subsystem: "website",
			Name:      "operation_duration_seconds",
			Help:      "Duration of structural website operations.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		}, []string{"op"}),
		operationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atelier",
			Subsystem: "website",
			Name:      "operations_active",
			Help:      "Operations currently holding an identity lock.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "schema",
			Name:      "resolution_cache_hits_total",
			Help:      "Schema resolutions served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "schema",
			Name:      "resolution_cache_misses_total",
			Help:      "Schema resolutions that required a full resolve.",
		}),
	}

	registry.MustRegister(
		c.operationsTotal,
		c.operationDuration,
		c.operationsActive,
		c.cacheHits,
		c.cacheMisses,
	)
	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// OperationStarted records the start of a structural operation.
func (c *Collector) OperationStarted(kind string) {
	c.operationsActive.Inc()
}

// OperationFinished records the outcome and duration of a structural
// operation.
func (c *Collector) OperationFinished(kind, outcome string, duration time.Duration) {
	c.operationsActive.Dec()
	c.operationsTotal.WithLabelValues(kind, outcome).Inc()
	c.operationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ResolutionCacheHit records a schema resolution served from the cache.
func (c *Collector) ResolutionCacheHit() {
	c.cacheHits.Inc()
}

// ResolutionCacheMiss records a schema resolution that missed the cache.
func (c *Collector) ResolutionCacheMiss() {
	c.cacheMisses.Inc()
}
