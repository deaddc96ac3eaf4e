// Package metrics holds the prometheus collectors of the catalog service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// fetchPlans counts executed fetch plans by entity and strategy
	fetchPlans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_plans_total",
		Help: "Total fetch plans executed by entity and strategy",
	}, []string{"entity", "strategy"})

	// operationDuration tracks query operation latency
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_operation_duration_seconds",
		Help:    "Query operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"operation"})

	// operationErrors counts failed operations by error code
	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_operation_errors_total",
		Help: "Total failed query operations by error code",
	}, []string{"operation", "code"})

	// seededRows counts rows written by the bulk generator
	seededRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_seed_rows_total",
		Help: "Total rows written by the bulk generator by entity",
	}, []string{"entity"})
)

func ObservePlan(entity, strategy string) {
	fetchPlans.WithLabelValues(entity, strategy).Inc()
}

// ObserveOperation records the latency of one operation and, when code is
// not empty, its failure.
func ObserveOperation(operation string, started time.Time, code string) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if code != "" {
		operationErrors.WithLabelValues(operation, code).Inc()
	}
}

func ObserveSeeded(entity string, n int) {
	seededRows.WithLabelValues(entity).Add(float64(n))
}
