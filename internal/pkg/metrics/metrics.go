// Package metrics registers the Prometheus instruments for both binaries.
// All method receivers are nil-safe so components can run uninstrumented
// in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServiceMetrics struct {
	ordersCreated   prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	publishFailures prometheus.Counter
}

func NewServiceMetrics() *ServiceMetrics {
	m := &ServiceMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Name:      "cache_hits_total",
			Help:      "Order reads served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Name:      "cache_misses_total",
			Help:      "Order reads that fell back to the store.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Name:      "publish_failures_total",
			Help:      "Creation events that could not be published to the queue.",
		}),
	}

	prometheus.MustRegister(m.ordersCreated, m.cacheHits, m.cacheMisses, m.publishFailures)
	return m
}

func (m *ServiceMetrics) OrderCreated() {
	if m != nil {
		m.ordersCreated.Inc()
	}
}

func (m *ServiceMetrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *ServiceMetrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *ServiceMetrics) PublishFailure() {
	if m != nil {
		m.publishFailures.Inc()
	}
}

type WorkerMetrics struct {
	processed  prometheus.Counter
	duplicates prometheus.Counter
	dropped    prometheus.Counter
}

func NewWorkerMetrics() *WorkerMetrics {
	m := &WorkerMetrics{
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Subsystem: "worker",
			Name:      "processed_total",
			Help:      "Orders processed to completion.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Subsystem: "worker",
			Name:      "duplicates_total",
			Help:      "Redeliveries skipped because the order was already processed.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordersvc",
			Subsystem: "worker",
			Name:      "dropped_total",
			Help:      "Messages discarded as permanently undeliverable.",
		}),
	}

	prometheus.MustRegister(m.processed, m.duplicates, m.dropped)
	return m
}

func (m *WorkerMetrics) Processed() {
	if m != nil {
		m.processed.Inc()
	}
}

func (m *WorkerMetrics) Duplicate() {
	if m != nil {
		m.duplicates.Inc()
	}
}

func (m *WorkerMetrics) Dropped() {
	if m != nil {
		m.dropped.Inc()
	}
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
