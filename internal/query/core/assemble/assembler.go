// Package assemble shapes aggregation output into query results.
package assemble

import (
	"time"

	"site-analytics-service/internal/query/core/aggregate"
	"site-analytics-service/internal/query/core/domain"
)

// Series builds the sparse single-dimension result of one plan: per metric,
// only observed groups, each with one point per bucket.
func Series(set *aggregate.Set, plan int) []domain.MetricResult {
	ps := set.Plans[plan]
	starts := set.Buckets.Starts
	out := make([]domain.MetricResult, 0, len(ps.Metrics))
	for _, m := range ps.Metrics {
		mr := domain.MetricResult{Metric: m, Values: make([]domain.GroupSeries, 0, len(ps.Keys))}
		for _, key := range ps.Keys {
			values := ps.Series[key][m]
			points := make([]domain.Point, len(starts))
			for i, ts := range starts {
				points[i] = domain.Point{Timestamp: ts, Value: values[i]}
			}
			mr.Values = append(mr.Values, domain.GroupSeries{Key: key, Points: points})
		}
		out = append(out, mr)
	}
	return out
}

// Slot places one plan of a Set inside the multi-dimension result.
type Slot struct {
	Property domain.Property
	Metric   domain.Metric
	Plan     int
}

// Props builds the dense multi-dimension result. Slots sharing a property
// are merged under it in first-seen order; every series is zero filled to
// len(Timestamps).
func Props(set *aggregate.Set, slots []Slot) ([]time.Time, []domain.PropertyResult) {
	starts := set.Buckets.Starts
	timestamps := make([]time.Time, len(starts))
	copy(timestamps, starts)

	var props []domain.PropertyResult
	index := make(map[domain.Property]int)
	for _, slot := range slots {
		pi, ok := index[slot.Property]
		if !ok {
			pi = len(props)
			index[slot.Property] = pi
			props = append(props, domain.PropertyResult{Property: slot.Property})
		}
		ps := set.Plans[slot.Plan]
		mr := domain.PropertyMetricResult{Metric: slot.Metric, Values: make([]domain.KeyedValues, 0, len(ps.Keys))}
		for _, key := range ps.Keys {
			values := make([]float64, len(timestamps))
			copy(values, ps.Series[key][slot.Metric])
			mr.Values = append(mr.Values, domain.KeyedValues{Key: key, Values: values})
		}
		props[pi].Metrics = append(props[pi].Metrics, mr)
	}
	return timestamps, props
}
