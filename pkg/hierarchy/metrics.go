package hierarchy

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics published by the hierarchy core.
type Metrics struct {
	CacheHitsTotal       *prometheus.CounterVec
	CacheMissesTotal     *prometheus.CounterVec
	CacheInvalidations   *prometheus.CounterVec
	GraphLoadsTotal      *prometheus.CounterVec
	GraphVertices        *prometheus.GaugeVec
	ValidationRejections *prometheus.CounterVec
}

// NewMetrics creates and registers the hierarchy metrics against the given
// registry. A nil registry skips registration, which is convenient in
// tests.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_graph_cache_hits_total",
				Help: "Total number of graph cache hits",
			},
			[]string{"kind"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_graph_cache_misses_total",
				Help: "Total number of graph cache misses",
			},
			[]string{"kind"},
		),
		CacheInvalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_graph_cache_invalidations_total",
				Help: "Total number of graph cache invalidations",
			},
			[]string{"kind"},
		),
		GraphLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_graph_loads_total",
				Help: "Total number of graph loads by outcome",
			},
			[]string{"kind", "status"},
		),
		GraphVertices: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lattice_graph_vertices",
				Help: "Number of vertices in the most recently loaded graph",
			},
			[]string{"kind", "context"},
		),
		ValidationRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_validation_rejections_total",
				Help: "Total number of relationship validation rejections by reason",
			},
			[]string{"kind", "reason"},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.CacheHitsTotal,
			m.CacheMissesTotal,
			m.CacheInvalidations,
			m.GraphLoadsTotal,
			m.GraphVertices,
			m.ValidationRejections,
		)
	}

	return m
}

func (m *Metrics) cacheHit(kind Kind) {
	if m != nil {
		m.CacheHitsTotal.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) cacheMiss(kind Kind) {
	if m != nil {
		m.CacheMissesTotal.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) cacheInvalidated(kind Kind) {
	if m != nil {
		m.CacheInvalidations.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) graphLoaded(kind Kind, contextID string, g *Graph) {
	if m != nil {
		m.GraphLoadsTotal.WithLabelValues(kind.String(), "success").Inc()
		m.GraphVertices.WithLabelValues(kind.String(), contextID).Set(float64(g.VertexCount()))
	}
}

func (m *Metrics) graphLoadFailed(kind Kind) {
	if m != nil {
		m.GraphLoadsTotal.WithLabelValues(kind.String(), "failure").Inc()
	}
}

func (m *Metrics) validationRejected(kind Kind, reason Reason) {
	if m != nil {
		m.ValidationRejections.WithLabelValues(kind.String(), string(reason)).Inc()
	}
}
