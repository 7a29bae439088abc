// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	builderOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covenant7000",
		Subsystem: "builder",
		Name:      "operations_total",
		Help:      "Count of covenant build operations.",
	}, []string{"operation", "network", "status"})

	builderOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "covenant7000",
		Subsystem: "builder",
		Name:      "operation_duration_seconds",
		Help:      "Duration of covenant build operations.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "network", "status"})

	builderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covenant7000",
		Subsystem: "builder",
		Name:      "errors_total",
		Help:      "Count of failed covenant builds by error kind.",
	}, []string{"operation", "kind"})

	builderTransactions = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "covenant7000",
		Subsystem: "builder",
		Name:      "transactions_per_build",
		Help:      "Number of transactions produced by a single build.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1..512
	}, []string{"operation", "network"})
)

// CovenantBuilder tracks metrics for covenant and vault builds.
type CovenantBuilder struct{}

// NewCovenantBuilder constructs a CovenantBuilder collector.
func NewCovenantBuilder() *CovenantBuilder {
	return &CovenantBuilder{}
}

// Observe records a build outcome and duration. Failures are also counted by
// their error kind.
func (m CovenantBuilder) Observe(operation string, network model.Network, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
		builderErrorsTotal.WithLabelValues(operation, model.KindOf(err).String()).Inc()
	}
	if network == "" {
		network = "unknown"
	}
	builderOperationsTotal.WithLabelValues(operation, string(network), status).Inc()
	builderOperationDuration.WithLabelValues(operation, string(network), status).
		Observe(time.Since(started).Seconds())
}

// ObserveTransactions records how many transactions a build produced.
func (m CovenantBuilder) ObserveTransactions(operation string, network model.Network, count int) {
	if network == "" {
		network = "unknown"
	}
	builderTransactions.WithLabelValues(operation, string(network)).Observe(float64(count))
}
