// Package metric holds the Prometheus instrumentation for query dispatch,
// planner calls and the loaded graph. All record methods are safe on a nil
// *Metrics, which disables metrics.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/semfibo/ontology"
)

const namespace = "semfibo"

// Metrics is the set of collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec   // By function and status
	dispatchDuration *prometheus.HistogramVec // By function
	plannerDuration  *prometheus.HistogramVec // By kind (plan/synthesis) and outcome
	questionsTotal   *prometheus.CounterVec   // By route (module/plan/multi_step) and status

	classes     prometheus.Gauge
	properties  prometheus.Gauge
	individuals prometheus.Gauge
	modules     prometheus.Gauge
	reloads     *prometheus.CounterVec // By outcome
}

// New creates and registers the collectors on a fresh registry, alongside
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of dispatched query operations",
		}, []string{"function", "status"}),

		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Query operation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"function"}),

		plannerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "planner_duration_seconds",
			Help:      "Language model call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"kind", "outcome"}),

		questionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Total number of questions answered",
		}, []string{"route", "status"}),

		classes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "classes",
			Help:      "Classes in the loaded graph",
		}),
		properties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "properties",
			Help:      "Properties in the loaded graph",
		}),
		individuals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "individuals",
			Help:      "Individuals in the loaded graph",
		}),
		modules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "modules",
			Help:      "Module files in the loaded graph",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "reloads_total",
			Help:      "Total number of graph reloads",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.dispatchTotal,
		m.dispatchDuration,
		m.plannerDuration,
		m.questionsTotal,
		m.classes,
		m.properties,
		m.individuals,
		m.modules,
		m.reloads,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordDispatch records one query operation.
func (m *Metrics) RecordDispatch(function, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(function, status).Inc()
	m.dispatchDuration.WithLabelValues(function).Observe(d.Seconds())
}

// RecordPlanner records one language model call. Its signature matches
// planner.Observer.
func (m *Metrics) RecordPlanner(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.plannerDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

// RecordQuestion records one answered question.
func (m *Metrics) RecordQuestion(route, status string) {
	if m == nil {
		return
	}
	m.questionsTotal.WithLabelValues(route, status).Inc()
}

// RecordReload records a reload attempt.
func (m *Metrics) RecordReload(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.reloads.WithLabelValues(outcome).Inc()
}

// SetGraph updates the graph gauges. Its signature fits ontology.WithOnSwap.
func (m *Metrics) SetGraph(g *ontology.Graph) {
	if m == nil || g == nil {
		return
	}
	s := g.Stats()
	m.classes.Set(float64(s.Classes))
	m.properties.Set(float64(s.Properties))
	m.individuals.Set(float64(s.Individuals))
	m.modules.Set(float64(s.Modules))
}
