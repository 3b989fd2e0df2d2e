package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"site-analytics-service/internal/query/core/aggregate"
	"site-analytics-service/internal/query/core/assemble"
	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/matcher"
	"site-analytics-service/internal/query/core/ports"
)

var (
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidFilter     = domain.ErrInvalidFilter
	ErrSourceUnavailable = domain.ErrSourceUnavailable
)

type QueryInput struct {
	Domain   string
	From     time.Time
	To       time.Time
	Metrics  []string
	Property string
	Match    domain.Select
}

type PropsInput struct {
	Domain string
	From   time.Time
	To     time.Time
	Props  []PropInput
}

type PropInput struct {
	Property string
	Metrics  []MetricInput
}

type MetricInput struct {
	Metric string
	Select domain.Select
}

type QueryUseCase struct {
	aggregator *aggregate.Aggregator
	logger     *zap.Logger
	metrics    *Metrics
}

type Option func(*QueryUseCase)

func WithLogger(l *zap.Logger) Option {
	return func(uc *QueryUseCase) { uc.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(uc *QueryUseCase) { uc.metrics = m }
}

func NewQueryUseCase(source ports.EventSource, opts ...Option) *QueryUseCase {
	uc := &QueryUseCase{
		aggregator: aggregate.NewAggregator(source),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.metrics == nil {
		uc.metrics = NewMetrics(nil)
	}
	return uc
}

// Query runs the single-dimension form. It holds no state between calls and
// is safe to retry.
func (uc *QueryUseCase) Query(ctx context.Context, in QueryInput) (*domain.QueryResult, error) {
	q, err := buildQuery(in)
	if err != nil {
		uc.metrics.observeError(formSeries, err)
		return nil, err
	}
	pred, err := matcher.Compile(q.Match)
	if err != nil {
		uc.metrics.observeError(formSeries, err)
		return nil, err
	}

	start := time.Now()
	set, err := uc.aggregator.Aggregate(ctx, q.Domain, q.Range, []aggregate.Plan{{
		Property: q.Property,
		Metrics:  q.Metrics,
		Match:    pred,
	}})
	if err != nil {
		uc.fail(formSeries, q.Domain, err)
		return nil, err
	}
	result := &domain.QueryResult{Result: assemble.Series(set, 0)}
	result.Elapsed = time.Since(start)
	uc.metrics.observe(formSeries, result.Elapsed)
	return result, nil
}

// QueryProps runs the multi-dimension form. Property/metric pairs sharing a
// filter are computed by one plan; all plans share one scan.
func (uc *QueryUseCase) QueryProps(ctx context.Context, in PropsInput) (*domain.PropsResult, error) {
	q, err := buildPropsQuery(in)
	if err != nil {
		uc.metrics.observeError(formProps, err)
		return nil, err
	}

	type planKey struct {
		property domain.Property
		sel      domain.Select
	}
	var (
		plans []aggregate.Plan
		slots []assemble.Slot
		index = make(map[planKey]int)
	)
	for _, ps := range q.Props {
		for _, ms := range ps.Metrics {
			k := planKey{property: ps.Property, sel: ms.Select}
			if ms.Select.MatchesAll() {
				k.sel = domain.Select{}
			}
			pi, ok := index[k]
			if !ok {
				pred, err := matcher.Compile(ms.Select)
				if err != nil {
					uc.metrics.observeError(formProps, err)
					return nil, fmt.Errorf("%s.%s: %w", ps.Property, ms.Metric, err)
				}
				pi = len(plans)
				index[k] = pi
				plans = append(plans, aggregate.Plan{Property: ps.Property, Match: pred})
			}
			plans[pi].Metrics = append(plans[pi].Metrics, ms.Metric)
			slots = append(slots, assemble.Slot{Property: ps.Property, Metric: ms.Metric, Plan: pi})
		}
	}

	start := time.Now()
	set, err := uc.aggregator.Aggregate(ctx, q.Domain, q.Range, plans)
	if err != nil {
		uc.fail(formProps, q.Domain, err)
		return nil, err
	}
	result := &domain.PropsResult{}
	result.Timestamps, result.Props = assemble.Props(set, slots)
	result.Elapsed = time.Since(start)
	uc.metrics.observe(formProps, result.Elapsed)
	return result, nil
}

func (uc *QueryUseCase) fail(form, site string, err error) {
	uc.metrics.observeError(form, err)
	if errors.Is(err, ErrSourceUnavailable) {
		uc.logger.Error("event source scan failed",
			zap.String("form", form),
			zap.String("domain", site),
			zap.Error(err))
	}
}

func buildQuery(in QueryInput) (domain.Query, error) {
	r, err := domain.NewRange(in.From, in.To)
	if err != nil {
		return domain.Query{}, err
	}
	if err := aggregate.CheckRange(r); err != nil {
		return domain.Query{}, err
	}
	if len(in.Metrics) == 0 {
		return domain.Query{}, fmt.Errorf("%w: at least one metric is required", ErrInvalidQuery)
	}
	prop, err := domain.ParseProperty(in.Property)
	if err != nil {
		return domain.Query{}, err
	}
	metrics := make([]domain.Metric, 0, len(in.Metrics))
	for _, s := range in.Metrics {
		m, err := domain.ParseMetric(s)
		if err != nil {
			return domain.Query{}, err
		}
		metrics = append(metrics, m)
	}
	return domain.Query{
		Domain:   in.Domain,
		Range:    r,
		Metrics:  metrics,
		Property: prop,
		Match:    in.Match,
	}, nil
}

func buildPropsQuery(in PropsInput) (domain.PropsQuery, error) {
	r, err := domain.NewRange(in.From, in.To)
	if err != nil {
		return domain.PropsQuery{}, err
	}
	if err := aggregate.CheckRange(r); err != nil {
		return domain.PropsQuery{}, err
	}
	if len(in.Props) == 0 {
		return domain.PropsQuery{}, fmt.Errorf("%w: at least one property is required", ErrInvalidQuery)
	}
	q := domain.PropsQuery{Domain: in.Domain, Range: r, Props: make([]domain.PropertySelection, 0, len(in.Props))}
	seenProps := make(map[domain.Property]bool, len(in.Props))
	for _, p := range in.Props {
		prop, err := domain.ParseProperty(p.Property)
		if err != nil {
			return domain.PropsQuery{}, err
		}
		if seenProps[prop] {
			return domain.PropsQuery{}, fmt.Errorf("%w: property %q given more than once", ErrInvalidQuery, prop)
		}
		seenProps[prop] = true
		if len(p.Metrics) == 0 {
			return domain.PropsQuery{}, fmt.Errorf("%w: property %q has no metrics", ErrInvalidQuery, p.Property)
		}
		ps := domain.PropertySelection{Property: prop, Metrics: make([]domain.MetricSelection, 0, len(p.Metrics))}
		seenMetrics := make(map[domain.Metric]bool, len(p.Metrics))
		for _, mi := range p.Metrics {
			m, err := domain.ParseMetric(mi.Metric)
			if err != nil {
				return domain.PropsQuery{}, err
			}
			// each metric is an object key in the response
			if seenMetrics[m] {
				return domain.PropsQuery{}, fmt.Errorf("%w: metric %q given more than once for property %q", ErrInvalidQuery, m, prop)
			}
			seenMetrics[m] = true
			ps.Metrics = append(ps.Metrics, domain.MetricSelection{Metric: m, Select: mi.Select})
		}
		q.Props = append(q.Props, ps)
	}
	return q, nil
}
