// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PlanRecomputes counts goal re-derivations by what triggered them.
	PlanRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_recomputes_total",
			Help: "Total number of goal plan re-derivations",
		},
		[]string{"trigger"},
	)

	PlanCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_cache_lookups_total",
			Help: "Plan cache lookups by result",
		},
		[]string{"result"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_validation_failures_total",
			Help: "Requests rejected by input validation",
		},
		[]string{"operation"},
	)

	GoalWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goal_write_conflicts_total",
			Help: "Goal writes rejected by the optimistic version check",
		},
	)

	EngineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_operation_duration_seconds",
			Help:    "Duration of engine computations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
		[]string{"operation"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
