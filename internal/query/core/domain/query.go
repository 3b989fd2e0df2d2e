package domain

import (
	"time"
)

// Query is the single-dimension query form.
type Query struct {
	Domain   string
	Range    Range
	Metrics  []Metric
	Property Property
	Match    Select
}

// PropsQuery is the multi-dimension form: per property, per metric filters.
// Slices keep the order the caller requested them in.
type PropsQuery struct {
	Domain string
	Range  Range
	Props  []PropertySelection
}

type PropertySelection struct {
	Property Property
	Metrics  []MetricSelection
}

type MetricSelection struct {
	Metric Metric
	Select Select
}

type Point struct {
	Timestamp time.Time
	Value     float64
}

// GroupSeries is the time series of one observed property value.
type GroupSeries struct {
	Key    string
	Points []Point
}

type MetricResult struct {
	Metric Metric
	Values []GroupSeries
}

type QueryResult struct {
	Elapsed time.Duration
	Result  []MetricResult
}

// KeyedValues is a dense series aligned with PropsResult.Timestamps.
type KeyedValues struct {
	Key    string
	Values []float64
}

type PropertyMetricResult struct {
	Metric Metric
	Values []KeyedValues
}

type PropertyResult struct {
	Property Property
	Metrics  []PropertyMetricResult
}

type PropsResult struct {
	Elapsed    time.Duration
	Timestamps []time.Time
	Props      []PropertyResult
}
