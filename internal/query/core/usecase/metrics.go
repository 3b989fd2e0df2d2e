package usecase

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	formSeries = "series"
	formProps  = "props"
)

// Metrics holds the query path collectors. A nil Registerer leaves them
// unregistered.
type Metrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Aggregate and assemble time of analytics queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"form"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_query_errors_total",
			Help: "Analytics queries that returned an error",
		}, []string{"form", "kind"}),
	}
}

func (m *Metrics) observe(form string, d time.Duration) {
	m.duration.WithLabelValues(form).Observe(d.Seconds())
}

func (m *Metrics) observeError(form string, err error) {
	m.errors.WithLabelValues(form, errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFilter):
		return "invalid_filter"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	default:
		return "other"
	}
}
