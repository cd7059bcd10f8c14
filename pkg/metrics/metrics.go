// Package metrics provides Prometheus instrumentation for connection pools.
//
// Counters and histograms are registered on the default registry at package
// init and labelled by pool name. Point-in-time pool occupancy is exported by
// a PoolCollector that reads the pool's own statistics at scrape time.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	conn, err := p.Get(ctx)
//	metrics.AcquireLatency.WithLabelValues("warehouse").Observe(timer.Stop().Seconds())
//
//	prometheus.MustRegister(metrics.NewPoolCollector("warehouse", p))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adbcpool"

var (
	// ConnectionsCreated counts connections successfully created by the manager.
	// Labels: pool
	ConnectionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_created_total",
			Help:      "Total number of connections created",
		},
		[]string{"pool"},
	)

	// ConnectionsClosed counts connections destroyed by the pool.
	// Labels: pool
	ConnectionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total number of connections closed",
		},
		[]string{"pool"},
	)

	// ConnectionErrors counts manager failures.
	// Labels: pool, op (connect/validate)
	ConnectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Total number of connection creation and validation failures",
		},
		[]string{"pool", "op"},
	)

	// AcquireLatency tracks how long Get takes, validation included.
	// Labels: pool
	AcquireLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "acquire_duration_seconds",
			Help:      "Time spent acquiring a connection from the pool",
			Buckets: []float64{
				0.0001, // 100μs - idle connection, no probe
				0.001,  // 1ms - local probe
				0.01,   // 10ms
				0.1,    // 100ms - remote probe
				1,      // 1s - new connection over the network
				10,     // 10s - contention / slow handshake
			},
		},
		[]string{"pool"},
	)
)

// Timer measures the duration of a single operation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// PoolStats is the occupancy snapshot a PoolCollector exports.
type PoolStats struct {
	TotalConnections    int32
	IdleConnections     int32
	AcquiredConnections int32
	MaxConnections      int32
	AcquireCount        int64
	ValidationFailures  int64
}

// StatsSource is implemented by pools that can report PoolStats.
type StatsSource interface {
	MetricsSnapshot() PoolStats
}

// PoolCollector exports a pool's occupancy as gauges at scrape time.
type PoolCollector struct {
	name   string
	source StatsSource

	connections        *prometheus.Desc
	maxConnections     *prometheus.Desc
	acquires           *prometheus.Desc
	validationFailures *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector creates a collector for the pool identified by name.
func NewPoolCollector(name string, source StatsSource) *PoolCollector {
	labels := prometheus.Labels{"pool": name}
	return &PoolCollector{
		name:   name,
		source: source,
		connections: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connections"),
			"Current number of connections by state",
			[]string{"state"}, labels,
		),
		maxConnections: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "max_connections"),
			"Configured maximum pool size",
			nil, labels,
		),
		acquires: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "acquires_total"),
			"Total number of successful acquisitions from the underlying pool",
			nil, labels,
		),
		validationFailures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "validation_failures_total"),
			"Total number of connections discarded by checkout validation",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.connections
	ch <- c.maxConnections
	ch <- c.acquires
	ch <- c.validationFailures
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.MetricsSnapshot()

	ch <- prometheus.MustNewConstMetric(c.connections, prometheus.GaugeValue, float64(s.IdleConnections), "idle")
	ch <- prometheus.MustNewConstMetric(c.connections, prometheus.GaugeValue, float64(s.AcquiredConnections), "acquired")
	ch <- prometheus.MustNewConstMetric(c.maxConnections, prometheus.GaugeValue, float64(s.MaxConnections))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.validationFailures, prometheus.CounterValue, float64(s.ValidationFailures))
}
