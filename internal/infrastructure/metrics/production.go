// Package metrics expone las métricas Prometheus del motor de producción.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Concreto-api/internal/application/ports"
)

var _ ports.ProductionMetrics = (*Production)(nil)

// Production implementa ports.ProductionMetrics sobre un registro propio.
type Production struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  prometheus.Counter
}

// NewProduction registra los colectores (más los de proceso y runtime de Go).
func NewProduction(namespace string) *Production {
	reg := prometheus.NewRegistry()
	m := &Production{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "production_runs_total",
			Help:      "Producciones solicitadas por resultado.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "production_run_duration_seconds",
			Help:      "Duración de ExecuteProductionRun por resultado.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "production_conflict_retries_total",
			Help:      "Reintentos por conflicto de concurrencia.",
		}),
	}
	reg.MustRegister(
		m.runs, m.duration, m.retries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Production) ObserveRun(outcome string, elapsed time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Production) IncConflictRetry() { m.retries.Inc() }

// Handler sirve /metrics con el registro propio.
func (m *Production) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry para pruebas.
func (m *Production) Registry() *prometheus.Registry { return m.registry }
