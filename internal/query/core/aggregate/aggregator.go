// Package aggregate groups scanned events by a property and computes metric
// series over fixed width time buckets.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/matcher"
	"site-analytics-service/internal/query/core/ports"
)

// Plan is one grouping of the scanned events. A single scan feeds every plan.
type Plan struct {
	Property domain.Property
	Metrics  []domain.Metric
	Match    matcher.Predicate
}

// Set is the canonical aggregation output: bucketed series keyed by group,
// one entry per plan in plan order.
type Set struct {
	Buckets Buckets
	Plans   []PlanSeries
}

type PlanSeries struct {
	Property domain.Property
	Metrics  []domain.Metric
	// Keys holds the group keys in order of first observation.
	Keys []string
	// Series maps group key -> metric -> one value per bucket.
	Series map[string]map[domain.Metric][]float64
}

type Aggregator struct {
	source ports.EventSource
}

func NewAggregator(source ports.EventSource) *Aggregator {
	return &Aggregator{source: source}
}

// errCanceled unwinds a scan when the caller's context ends.
var errCanceled = errors.New("aggregation canceled")

func (a *Aggregator) Aggregate(ctx context.Context, site string, r domain.Range, plans []Plan) (*Set, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: nothing to aggregate", domain.ErrInvalidQuery)
	}
	for _, p := range plans {
		if err := validatePlan(p); err != nil {
			return nil, err
		}
	}

	if err := CheckRange(r); err != nil {
		return nil, err
	}
	buckets := NewBuckets(r)
	states := make([]*planState, len(plans))
	for i, p := range plans {
		states[i] = newPlanState(p, buckets.Len())
	}

	var seen int
	err := a.source.ScanEvents(ctx, ports.ScanFilter{Domain: site, From: r.From, To: r.To}, func(e domain.Event) error {
		seen++
		if seen%1024 == 0 && ctx.Err() != nil {
			return errCanceled
		}
		if !r.Contains(e.Timestamp) {
			return nil
		}
		idx := buckets.Index(e.Timestamp)
		if idx < 0 {
			return nil
		}
		for _, s := range states {
			s.add(idx, &e)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errCanceled) {
			return nil, ctx.Err()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	set := &Set{Buckets: buckets, Plans: make([]PlanSeries, len(states))}
	for i, s := range states {
		set.Plans[i] = s.series()
	}
	return set, nil
}

func validatePlan(p Plan) error {
	if !p.Property.Valid() {
		return fmt.Errorf("%w: unknown property %q", domain.ErrInvalidQuery, p.Property)
	}
	if len(p.Metrics) == 0 {
		return fmt.Errorf("%w: at least one metric is required", domain.ErrInvalidQuery)
	}
	for _, m := range p.Metrics {
		if !m.Valid() {
			return fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidQuery, m)
		}
	}
	return nil
}

type planState struct {
	plan     Plan
	sessions bool
	nbuckets int
	keys     []string
	groups   map[string][]*bucket
}

func newPlanState(p Plan, nbuckets int) *planState {
	s := &planState{
		plan:     p,
		nbuckets: nbuckets,
		groups:   make(map[string][]*bucket),
	}
	for _, m := range p.Metrics {
		if m.NeedsSessions() {
			s.sessions = true
		}
	}
	return s
}

func (s *planState) add(idx int, e *domain.Event) {
	key := s.plan.Property.Value(e)
	if s.plan.Match != nil && !s.plan.Match(key) {
		return
	}
	g, ok := s.groups[key]
	if !ok {
		g = make([]*bucket, s.nbuckets)
		s.groups[key] = g
		s.keys = append(s.keys, key)
	}
	b := g[idx]
	if b == nil {
		b = newBucket()
		g[idx] = b
	}
	b.add(e, s.sessions)
}

func (s *planState) series() PlanSeries {
	out := PlanSeries{
		Property: s.plan.Property,
		Metrics:  s.plan.Metrics,
		Keys:     s.keys,
		Series:   make(map[string]map[domain.Metric][]float64, len(s.keys)),
	}
	for _, key := range s.keys {
		g := s.groups[key]
		perMetric := make(map[domain.Metric][]float64, len(s.plan.Metrics))
		for _, m := range s.plan.Metrics {
			values := make([]float64, s.nbuckets)
			for i, b := range g {
				if b != nil {
					values[i] = b.value(m)
				}
			}
			perMetric[m] = values
		}
		out.Series[key] = perMetric
	}
	return out
}

type session struct {
	views       int
	first, last time.Time
}

// bucket accumulates the events of one group inside one time bucket.
type bucket struct {
	events   int
	views    int
	visitors map[string]struct{}
	sessions map[string]*session
}

func newBucket() *bucket {
	return &bucket{
		visitors: make(map[string]struct{}),
		sessions: make(map[string]*session),
	}
}

func (b *bucket) add(e *domain.Event, trackSessions bool) {
	b.events++
	if e.View {
		b.views++
	}
	b.visitors[e.VisitorID] = struct{}{}
	if !trackSessions {
		return
	}
	s, ok := b.sessions[e.SessionID]
	if !ok {
		s = &session{first: e.Timestamp, last: e.Timestamp}
		b.sessions[e.SessionID] = s
	}
	if e.View {
		s.views++
	}
	if e.Timestamp.Before(s.first) {
		s.first = e.Timestamp
	}
	if e.Timestamp.After(s.last) {
		s.last = e.Timestamp
	}
}

func (b *bucket) value(m domain.Metric) float64 {
	switch m.Canonical() {
	case domain.MetricVisitors:
		return float64(len(b.visitors))
	case domain.MetricViews:
		return float64(b.views)
	case domain.MetricEvents:
		return float64(b.events)
	case domain.MetricVisits:
		return float64(len(b.sessions))
	case domain.MetricBounceRate:
		if len(b.sessions) == 0 {
			return 0
		}
		var bounced int
		for _, s := range b.sessions {
			if s.views == 1 {
				bounced++
			}
		}
		return float64(bounced) / float64(len(b.sessions))
	case domain.MetricVisitDuration:
		if len(b.sessions) == 0 {
			return 0
		}
		var total time.Duration
		for _, s := range b.sessions {
			total += s.last.Sub(s.first)
		}
		return total.Seconds() / float64(len(b.sessions))
	case domain.MetricViewsPerVisit:
		if len(b.sessions) == 0 {
			return 0
		}
		return float64(b.views) / float64(len(b.sessions))
	}
	return 0
}
