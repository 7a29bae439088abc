package metrics

import (
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	archiveRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covenant7000",
		Subsystem: "archive_repository",
		Name:      "operations_total",
		Help:      "Count of archive repository operations.",
	}, []string{"backend", "operation", "network", "status"})
	archiveRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "covenant7000",
		Subsystem: "archive_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of archive repository operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"backend", "operation", "network", "status"})
)

// ArchiveRepository tracks metrics for one archive storage backend.
type ArchiveRepository struct {
	backend string
}

// NewArchiveRepository creates an ArchiveRepository collector for backend
// ("clickhouse", "bolt").
func NewArchiveRepository(backend string) *ArchiveRepository {
	if backend == "" {
		backend = "unknown"
	}
	return &ArchiveRepository{backend: backend}
}

// Observe records duration and status of a repository operation.
func (m ArchiveRepository) Observe(operation string, network model.Network, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if network == "" {
		network = "unknown"
	}

	archiveRepositoryRequestsTotal.WithLabelValues(m.backend, operation, string(network), status).Inc()
	archiveRepositoryRequestDuration.WithLabelValues(m.backend, operation, string(network), status).Observe(time.Since(started).Seconds())
}
