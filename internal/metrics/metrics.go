// Package metrics holds the Prometheus instrumentation for the refresh pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "perspectr"

// Refresh outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeStale   = "stale"
)

// Collector owns a private registry; each instance registers its own set.
type Collector struct {
	registry *prometheus.Registry

	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	LookupFailures  prometheus.Counter
	NodesLoaded     prometheus.Gauge
}

// NewCollector creates and registers all pipeline metrics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	refreshTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "refresh_total",
			Help:      "Total number of network refreshes by outcome",
		},
		[]string{"outcome"},
	)

	refreshDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a full refresh including all profile lookups",
			Buckets:   prometheus.DefBuckets,
		},
	)

	lookupFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "profile_lookup_failures_total",
			Help:      "Profile lookups that degraded a node to a placeholder",
		},
	)

	nodesLoaded := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "nodes_loaded",
			Help:      "Number of nodes in the most recent accepted refresh",
		},
	)

	registry.MustRegister(refreshTotal, refreshDuration, lookupFailures, nodesLoaded)

	return &Collector{
		registry:        registry,
		RefreshTotal:    refreshTotal,
		RefreshDuration: refreshDuration,
		LookupFailures:  lookupFailures,
		NodesLoaded:     nodesLoaded,
	}
}

// ObserveRefresh records one finished refresh.
func (c *Collector) ObserveRefresh(outcome string, elapsed time.Duration) {
	c.RefreshTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeStale {
		c.RefreshDuration.Observe(elapsed.Seconds())
	}
}

// AddLookupFailures records degraded nodes.
func (c *Collector) AddLookupFailures(n int) {
	c.LookupFailures.Add(float64(n))
}

// SetNodesLoaded records the size of the accepted node list.
func (c *Collector) SetNodesLoaded(n int) {
	c.NodesLoaded.Set(float64(n))
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
