// Package metrics exposes Prometheus counters for the store, the stream hub
// and the persistence backends.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create as many as they like
type Metrics struct {
	registry *prometheus.Registry

	storeMutations  *prometheus.CounterVec
	persistFailures prometheus.Counter
	sessions        prometheus.Gauge
	wsClients       prometheus.Gauge
	broadcasts      *prometheus.CounterVec
	contractCalls   *prometheus.CounterVec
}

// New registers all collectors under namespace
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		storeMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Trading store mutations by operation",
		}, []string{"op"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_persist_failures_total",
			Help:      "Snapshot writes that failed",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions with a loaded store",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_broadcasts_total",
			Help:      "Market data envelopes broadcast by type",
		}, []string{"type"}),
		contractCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_calls_built_total",
			Help:      "Router and token calls prepared for signing",
		}, []string{"method"}),
	}

	registry.MustRegister(
		m.storeMutations,
		m.persistFailures,
		m.sessions,
		m.wsClients,
		m.broadcasts,
		m.contractCalls,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// All recorders are nil-safe so components can run without metrics.

func (m *Metrics) StoreMutation(op string) {
	if m == nil {
		return
	}
	m.storeMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) PersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}

func (m *Metrics) Broadcast(kind string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(kind).Inc()
}

func (m *Metrics) ContractCall(method string) {
	if m == nil {
		return
	}
	m.contractCalls.WithLabelValues(method).Inc()
}
