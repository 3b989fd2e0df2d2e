package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	dispatched    *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	timeouts      *prometheus.CounterVec
	panics        *prometheus.CounterVec
	running       prometheus.Gauge
	duration      prometheus.Histogram
	registrations prometheus.Gauge
}

// NewMetrics creates the scheduler collectors on reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		dispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_alert_dispatches_total",
			Help: "Alert evaluations started",
		}, []string{"domain"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_alert_skipped_ticks_total",
			Help: "Ticks skipped because the previous evaluation was still running",
		}, []string{"domain"}),
		timeouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_alert_timeouts_total",
			Help: "Alert evaluations cancelled at the deadline",
		}, []string{"domain"}),
		panics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_alert_panics_total",
			Help: "Alert evaluations that panicked",
		}, []string{"domain"}),
		running: f.NewGauge(prometheus.GaugeOpts{
			Name: "analytics_alert_evaluations_running",
			Help: "Alert evaluations currently supervised",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_alert_evaluation_duration_seconds",
			Help:    "Wall time of completed alert evaluations",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		}),
		registrations: f.NewGauge(prometheus.GaugeOpts{
			Name: "analytics_alert_registrations",
			Help: "Registered alerts",
		}),
	}
}

func (m *Metrics) observeDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}
