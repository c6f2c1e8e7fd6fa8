package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/value-engine/generic"
)

// Metrics holds the API's Prometheus collectors. Each Handler owns its own
// registry so several handlers can live in one process (tests).
type Metrics struct {
	registry             *prometheus.Registry
	conditionEvaluations *prometheus.CounterVec
	invalidValues        *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conditionEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "value_engine_condition_evaluations_total",
			Help: "Condition evaluations by constraint type, condition and outcome.",
		}, []string{"constraint", "condition", "met"}),
		invalidValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "value_engine_invalid_values_total",
			Help: "Values rejected because they don't satisfy their constraint.",
		}, []string{"constraint"}),
	}
	m.registry.MustRegister(m.conditionEvaluations, m.invalidValues)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeCondition(t generic.ConstraintType, cond generic.ConditionType, met bool) {
	m.conditionEvaluations.WithLabelValues(string(t), string(cond), strconv.FormatBool(met)).Inc()
}

func (m *Metrics) observeInvalid(t generic.ConstraintType) {
	m.invalidValues.WithLabelValues(string(t)).Inc()
}
