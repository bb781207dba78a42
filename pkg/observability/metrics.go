package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus metrics
type Metrics struct {
	// AuthzDecisionsTotal counts permission evaluations by outcome
	AuthzDecisionsTotal *prometheus.CounterVec

	// PipelineRejectionsTotal counts requests rejected by the secure-context
	// pipeline, by the error code of the stage that rejected them
	PipelineRejectionsTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts HTTP requests by method, path, and status
	HTTPRequestsTotal *prometheus.CounterVec

	// StoreRetriesTotal counts retried store reads
	StoreRetriesTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		AuthzDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_authz_decisions_total",
				Help: "Total number of permission evaluations by outcome",
			},
			[]string{"decision"},
		),
		PipelineRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_pipeline_rejections_total",
				Help: "Requests rejected by the secure-context pipeline, by error code",
			},
			[]string{"code"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		StoreRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_store_retries_total",
				Help: "Store reads that needed a retry",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.AuthzDecisionsTotal,
		m.PipelineRejectionsTotal,
		m.HTTPRequestsTotal,
		m.StoreRetriesTotal,
	)

	return m
}

// RecordDecision counts one permission evaluation outcome
func (m *Metrics) RecordDecision(allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.AuthzDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRejection counts one pipeline rejection by error code
func (m *Metrics) RecordRejection(code string) {
	m.PipelineRejectionsTotal.WithLabelValues(code).Inc()
}

// Handler returns the /metrics endpoint handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
