package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/ports"
	"site-analytics-service/internal/alerts/core/scheduler"
	"site-analytics-service/internal/query/core/aggregate"
	querydomain "site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/matcher"
	queryusecase "site-analytics-service/internal/query/core/usecase"
)

var (
	ErrInvalidInterval      = domain.ErrInvalidInterval
	ErrInvalidDomain        = domain.ErrInvalidDomain
	ErrRegistrationNotFound = domain.ErrRegistrationNotFound
	ErrInvalidDefinition    = domain.ErrInvalidDefinition
)

// Alert is a registration plus the definition it was built from, if any.
type Alert struct {
	domain.Registration
	Definition *domain.Definition
}

type AlertUseCase struct {
	scheduler ports.Scheduler
	querier   ports.Querier
	notifier  ports.Notifier
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.RWMutex
	definitions map[uuid.UUID]domain.Definition
}

type Option func(*AlertUseCase)

func WithLogger(l *zap.Logger) Option {
	return func(uc *AlertUseCase) { uc.logger = l }
}

// WithClock replaces time.Now for evaluation windows.
func WithClock(now func() time.Time) Option {
	return func(uc *AlertUseCase) { uc.now = now }
}

// NewAlertUseCase wires the scheduler to the query path. notifier may be nil,
// in which case fired alerts are only logged.
func NewAlertUseCase(s ports.Scheduler, q ports.Querier, n ports.Notifier, opts ...Option) *AlertUseCase {
	uc := &AlertUseCase{
		scheduler:   s,
		querier:     q,
		notifier:    n,
		logger:      zap.NewNop(),
		now:         time.Now,
		definitions: make(map[uuid.UUID]domain.Definition),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RegisterAlert schedules exec every interval for site.
func (uc *AlertUseCase) RegisterAlert(site, interval string, exec domain.Exec) (uuid.UUID, error) {
	return uc.scheduler.Register(site, interval, exec)
}

func (uc *AlertUseCase) UnregisterAlert(id uuid.UUID) error {
	if err := uc.scheduler.Unregister(id); err != nil {
		return err
	}
	uc.mu.Lock()
	delete(uc.definitions, id)
	uc.mu.Unlock()
	return nil
}

func (uc *AlertUseCase) ListAlerts() []Alert {
	regs := uc.scheduler.List()
	out := make([]Alert, 0, len(regs))

	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for _, reg := range regs {
		a := Alert{Registration: reg}
		if def, ok := uc.definitions[reg.ID]; ok {
			a.Definition = &def
		}
		out = append(out, a)
	}
	return out
}

// ValidateDefinition checks def completely, including the property, metric
// and match against the query vocabulary.
func (uc *AlertUseCase) ValidateDefinition(def domain.Definition) error {
	_, err := compileDefinition(def)
	return err
}

// RegisterDefinition validates def and schedules its evaluation.
func (uc *AlertUseCase) RegisterDefinition(def domain.Definition) (uuid.UUID, error) {
	c, err := compileDefinition(def)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uc.scheduler.Register(def.Domain, def.Interval, uc.exec(c), scheduler.Named(def.Name))
	if err != nil {
		return uuid.Nil, err
	}

	uc.mu.Lock()
	uc.definitions[id] = def
	uc.mu.Unlock()
	return id, nil
}

// RegisterDefinitions validates every definition before registering any.
func (uc *AlertUseCase) RegisterDefinitions(defs []domain.Definition) ([]uuid.UUID, error) {
	for _, def := range defs {
		if err := uc.ValidateDefinition(def); err != nil {
			return nil, err
		}
	}
	ids := make([]uuid.UUID, 0, len(defs))
	for _, def := range defs {
		id, err := uc.RegisterDefinition(def)
		if err != nil {
			for _, done := range ids {
				_ = uc.UnregisterAlert(done)
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Evaluate runs the query of def over the window ending now and returns one
// notification per group whose latest bucket meets the condition.
func (uc *AlertUseCase) Evaluate(ctx context.Context, def domain.Definition) ([]domain.Notification, error) {
	c, err := compileDefinition(def)
	if err != nil {
		return nil, err
	}
	return uc.evaluate(ctx, c)
}

func (uc *AlertUseCase) exec(c compiled) domain.Exec {
	return func(ctx context.Context) {
		fired, err := uc.evaluate(ctx, c)
		if err != nil {
			uc.logger.Warn("alert evaluation failed",
				zap.String("alert", c.def.Name),
				zap.String("domain", c.def.Domain),
				zap.Error(err))
			return
		}
		for _, n := range fired {
			uc.logger.Info("alert fired",
				zap.String("alert", n.Alert),
				zap.String("domain", n.Domain),
				zap.String("key", n.Key),
				zap.Float64("value", n.Value),
				zap.String("condition", n.Condition.String()))
			if uc.notifier == nil || c.def.Webhook == "" {
				continue
			}
			if err := uc.notifier.Notify(ctx, c.def.Webhook, n); err != nil {
				uc.logger.Warn("alert notification failed",
					zap.String("alert", n.Alert),
					zap.String("target", c.def.Webhook),
					zap.Error(err))
			}
		}
	}
}

func (uc *AlertUseCase) evaluate(ctx context.Context, c compiled) ([]domain.Notification, error) {
	r := querydomain.Last(uc.now(), c.window)
	res, err := uc.querier.Query(ctx, queryusecase.QueryInput{
		Domain:   c.def.Domain,
		From:     r.From,
		To:       r.To,
		Metrics:  []string{string(c.metric)},
		Property: string(c.property),
		Match:    c.sel,
	})
	if err != nil {
		return nil, err
	}

	firedAt := uc.now()
	notify := func(key string, bucket time.Time, v float64) domain.Notification {
		return domain.Notification{
			Alert:     c.def.Name,
			Domain:    c.def.Domain,
			Property:  string(c.property),
			Metric:    string(c.metric),
			Key:       key,
			Value:     v,
			Condition: c.def.Condition,
			Window:    c.window,
			Bucket:    bucket,
			FiredAt:   firedAt,
		}
	}

	var (
		out      []domain.Notification
		observed bool
	)
	for _, mr := range res.Result {
		for _, g := range mr.Values {
			if len(g.Points) == 0 {
				continue
			}
			observed = true
			last := g.Points[len(g.Points)-1]
			if c.def.Condition.Met(last.Value) {
				out = append(out, notify(g.Key, last.Timestamp, last.Value))
			}
		}
	}

	// No group saw traffic: judge the implicit group at zero so that
	// "below" alerts fire on silence.
	if !observed {
		key := ""
		if c.property.IsBase() {
			key = string(c.property)
		}
		b := aggregate.NewBuckets(r)
		last := b.Starts[b.Len()-1]
		if c.def.Condition.Met(0) {
			out = append(out, notify(key, last, 0))
		}
	}
	return out, nil
}

type compiled struct {
	def      domain.Definition
	window   time.Duration
	property querydomain.Property
	metric   querydomain.Metric
	sel      querydomain.Select
}

func compileDefinition(def domain.Definition) (compiled, error) {
	window, err := def.Validate()
	if err != nil {
		return compiled{}, err
	}
	if err := aggregate.CheckRange(querydomain.Last(time.Now(), window)); err != nil {
		return compiled{}, fmt.Errorf("%w: alert %q: window %s: %w", ErrInvalidDefinition, def.Name, def.Window, err)
	}
	prop := def.Property
	if prop == "" {
		prop = string(querydomain.PropertyBase)
	}
	p, err := querydomain.ParseProperty(prop)
	if err != nil {
		return compiled{}, fmt.Errorf("%w: alert %q: %w", ErrInvalidDefinition, def.Name, err)
	}
	m, err := querydomain.ParseMetric(def.Metric)
	if err != nil {
		return compiled{}, fmt.Errorf("%w: alert %q: %w", ErrInvalidDefinition, def.Name, err)
	}

	var sel querydomain.Select
	switch {
	case def.Match.Exact != "":
		sel = querydomain.Exact(def.Match.Exact)
	case def.Match.Re != "":
		sel = querydomain.Regex(def.Match.Re)
	case def.Match.Glob != "":
		sel = querydomain.Glob(def.Match.Glob)
	}
	if _, err := matcher.Compile(sel); err != nil {
		return compiled{}, fmt.Errorf("%w: alert %q: %w", ErrInvalidDefinition, def.Name, err)
	}

	return compiled{def: def, window: window, property: p, metric: m.Canonical(), sel: sel}, nil
}
