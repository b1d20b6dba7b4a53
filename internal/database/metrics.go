package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks storage statement latency and failures per operation.
type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

// NewMetrics creates the storage metrics on reg. A nil reg yields working
// but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "people_db_query_duration_seconds",
			Help:    "Duration of storage statements by operation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		QueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "people_db_query_errors_total",
			Help: "Total number of failed storage statements by operation",
		}, []string{"operation"}),
	}
}
