package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the plan engine
type Metrics struct {
	registry *prometheus.Registry

	// Plan metrics
	PlansCreatedTotal   prometheus.Counter
	PlansDeletedTotal   prometheus.Counter
	PlanExecutionsTotal *prometheus.CounterVec
	PlanDuration        prometheus.Histogram

	// Step metrics
	StepExecutionsTotal *prometheus.CounterVec
	StepDuration        *prometheus.HistogramVec

	// Approval metrics
	StepApprovalsTotal  prometheus.Counter
	StepRejectionsTotal prometheus.Counter
}

// New creates and registers all metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		PlansCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "plans_created_total",
				Help: "Total number of plans created",
			},
		),
		PlansDeletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "plans_deleted_total",
				Help: "Total number of plans deleted",
			},
		),
		PlanExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plan_executions_total",
				Help: "Total number of plan runs by terminal status",
			},
			[]string{"status"},
		),
		PlanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plan_execution_duration_seconds",
				Help:    "Duration of plan runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		StepExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "step_executions_total",
				Help: "Total number of step executions",
			},
			[]string{"tool_id", "status"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "step_execution_duration_seconds",
				Help:    "Duration of step executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_id"},
		),

		StepApprovalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "step_approvals_total",
				Help: "Total number of step approvals",
			},
		),
		StepRejectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "step_rejections_total",
				Help: "Total number of step rejections",
			},
		),
	}

	m.registerMetrics()

	return m
}

func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.PlansCreatedTotal)
	m.registry.MustRegister(m.PlansDeletedTotal)
	m.registry.MustRegister(m.PlanExecutionsTotal)
	m.registry.MustRegister(m.PlanDuration)
	m.registry.MustRegister(m.StepExecutionsTotal)
	m.registry.MustRegister(m.StepDuration)
	m.registry.MustRegister(m.StepApprovalsTotal)
	m.registry.MustRegister(m.StepRejectionsTotal)
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
