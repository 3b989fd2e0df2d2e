package domain

import "fmt"

// Metric is a statistic computed per time bucket and group.
type Metric string

const (
	MetricVisitors      Metric = "visitors"
	MetricViews         Metric = "views"
	MetricEvents        Metric = "events"
	MetricVisits        Metric = "visits"
	MetricBounceRate    Metric = "bounceRate"
	MetricVisitDuration Metric = "visitDuration"
	MetricViewsPerVisit Metric = "viewsPerVisit"

	// plural spellings used by the multi-dimension query form
	MetricBounceRates    Metric = "bounceRates"
	MetricVisitDurations Metric = "visitDurations"
)

func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidQuery, s)
	}
	return m, nil
}

func (m Metric) Valid() bool {
	switch m.Canonical() {
	case MetricVisitors, MetricViews, MetricEvents, MetricVisits,
		MetricBounceRate, MetricVisitDuration, MetricViewsPerVisit:
		return true
	}
	return false
}

// Canonical folds the plural aliases onto their singular metric.
func (m Metric) Canonical() Metric {
	switch m {
	case MetricBounceRates:
		return MetricBounceRate
	case MetricVisitDurations:
		return MetricVisitDuration
	}
	return m
}

// NeedsSessions reports whether computing m requires per-session state.
func (m Metric) NeedsSessions() bool {
	switch m.Canonical() {
	case MetricVisits, MetricBounceRate, MetricVisitDuration, MetricViewsPerVisit:
		return true
	}
	return false
}
