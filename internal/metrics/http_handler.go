package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covenant7000",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of handled HTTP requests.",
	}, []string{"route", "code"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "covenant7000",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of handled HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "code"})
)

// HTTPHandler tracks metrics for the HTTP API.
type HTTPHandler struct{}

// NewHTTPHandler constructs an HTTPHandler collector.
func NewHTTPHandler() *HTTPHandler {
	return &HTTPHandler{}
}

// Observe records a single request outcome and duration.
func (m HTTPHandler) Observe(route string, code int, started time.Time) {
	c := strconv.Itoa(code)
	httpRequestsTotal.WithLabelValues(route, c).Inc()
	httpRequestDuration.WithLabelValues(route, c).Observe(time.Since(started).Seconds())
}
