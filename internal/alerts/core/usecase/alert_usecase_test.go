package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/scheduler"
	"site-analytics-service/internal/alerts/core/usecase"
	querydomain "site-analytics-service/internal/query/core/domain"
	queryusecase "site-analytics-service/internal/query/core/usecase"
)

// fakeScheduler records registrations without running them.
type fakeScheduler struct {
	RegisterFn   func(site, interval string, exec domain.Exec) (uuid.UUID, error)
	regs         map[uuid.UUID]domain.Registration
	execs        map[uuid.UUID]domain.Exec
	lastSite     string
	lastInterval string
	registerCall int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		regs:  make(map[uuid.UUID]domain.Registration),
		execs: make(map[uuid.UUID]domain.Exec),
	}
}

func (f *fakeScheduler) Register(site, interval string, exec domain.Exec, _ ...scheduler.RegisterOption) (uuid.UUID, error) {
	f.registerCall++
	f.lastSite = site
	f.lastInterval = interval
	if f.RegisterFn != nil {
		return f.RegisterFn(site, interval, exec)
	}
	d, err := domain.ParseInterval(interval)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	f.regs[id] = domain.Registration{ID: id, Domain: site, Interval: d}
	f.execs[id] = exec
	return id, nil
}

func (f *fakeScheduler) Unregister(id uuid.UUID) error {
	if _, ok := f.regs[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrRegistrationNotFound, id)
	}
	delete(f.regs, id)
	delete(f.execs, id)
	return nil
}

func (f *fakeScheduler) List() []domain.Registration {
	out := make([]domain.Registration, 0, len(f.regs))
	for _, r := range f.regs {
		out = append(out, r)
	}
	return out
}

type fakeQuerier struct {
	QueryFn   func(ctx context.Context, in queryusecase.QueryInput) (*querydomain.QueryResult, error)
	lastInput queryusecase.QueryInput
	called    bool
}

func (f *fakeQuerier) Query(ctx context.Context, in queryusecase.QueryInput) (*querydomain.QueryResult, error) {
	f.called = true
	f.lastInput = in
	if f.QueryFn != nil {
		return f.QueryFn(ctx, in)
	}
	return &querydomain.QueryResult{}, nil
}

type fakeNotifier struct {
	NotifyFn   func(ctx context.Context, target string, n domain.Notification) error
	sent       []domain.Notification
	lastTarget string
}

func (f *fakeNotifier) Notify(ctx context.Context, target string, n domain.Notification) error {
	f.lastTarget = target
	f.sent = append(f.sent, n)
	if f.NotifyFn != nil {
		return f.NotifyFn(ctx, target, n)
	}
	return nil
}

var now = time.Date(2025, 12, 7, 12, 30, 0, 0, time.UTC)

func newUseCase(t *testing.T, s *fakeScheduler, q *fakeQuerier, n *fakeNotifier) *usecase.AlertUseCase {
	t.Helper()
	return usecase.NewAlertUseCase(s, q, n,
		usecase.WithLogger(zaptest.NewLogger(t)),
		usecase.WithClock(func() time.Time { return now }))
}

func blogAlert() domain.Definition {
	return domain.Definition{
		Name:      "blog-spike",
		Domain:    "a.com",
		Interval:  "5m",
		Window:    "1h",
		Property:  "page",
		Metric:    "visitDurations",
		Match:     domain.Match{Glob: "/blog/*"},
		Condition: domain.Condition{Op: domain.OpAbove, Threshold: 2},
		Webhook:   "https://hooks.example.com/a",
	}
}

func series(key string, values ...float64) querydomain.GroupSeries {
	g := querydomain.GroupSeries{Key: key}
	start := now.Add(-time.Hour).Truncate(time.Minute)
	for i, v := range values {
		g.Points = append(g.Points, querydomain.Point{Timestamp: start.Add(time.Duration(i) * time.Minute), Value: v})
	}
	return g
}

// ------------------------------------------------------------
// REGISTRATION
// ------------------------------------------------------------

func TestRegisterDefinition_Success(t *testing.T) {
	s := newFakeScheduler()
	uc := newUseCase(t, s, &fakeQuerier{}, &fakeNotifier{})

	id, err := uc.RegisterDefinition(blogAlert())
	require.NoError(t, err)
	assert.Equal(t, "a.com", s.lastSite)
	assert.Equal(t, "5m", s.lastInterval)

	alerts := uc.ListAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, id, alerts[0].ID)
	require.NotNil(t, alerts[0].Definition)
	assert.Equal(t, "blog-spike", alerts[0].Definition.Name)

	require.NoError(t, uc.UnregisterAlert(id))
	assert.Empty(t, uc.ListAlerts())
	assert.ErrorIs(t, uc.UnregisterAlert(id), usecase.ErrRegistrationNotFound)
}

func TestRegisterDefinition_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Definition)
		want   error
	}{
		{"unknown property", func(d *domain.Definition) { d.Property = "planet" }, usecase.ErrInvalidDefinition},
		{"unknown metric", func(d *domain.Definition) { d.Metric = "pageviews" }, usecase.ErrInvalidDefinition},
		{"bad regex", func(d *domain.Definition) { d.Match = domain.Match{Re: "(unclosed"} }, usecase.ErrInvalidDefinition},
		{"bad glob", func(d *domain.Definition) { d.Match = domain.Match{Glob: "[abc"} }, usecase.ErrInvalidDefinition},
		{"window over bucket cap", func(d *domain.Definition) { d.Window = "300000h" }, usecase.ErrInvalidDefinition},
		{"bad interval", func(d *domain.Definition) { d.Interval = "soon" }, usecase.ErrInvalidInterval},
		{"bad domain", func(d *domain.Definition) { d.Domain = "" }, usecase.ErrInvalidDomain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newFakeScheduler()
			uc := newUseCase(t, s, &fakeQuerier{}, &fakeNotifier{})

			def := blogAlert()
			tc.mutate(&def)
			_, err := uc.RegisterDefinition(def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, 0, s.registerCall)
		})
	}
}

func TestRegisterDefinitions_AllOrNothing(t *testing.T) {
	s := newFakeScheduler()
	uc := newUseCase(t, s, &fakeQuerier{}, &fakeNotifier{})

	bad := blogAlert()
	bad.Name = "bad"
	bad.Metric = "nope"

	_, err := uc.RegisterDefinitions([]domain.Definition{blogAlert(), bad})
	require.ErrorIs(t, err, usecase.ErrInvalidDefinition)
	assert.Equal(t, 0, s.registerCall)

	ids, err := uc.RegisterDefinitions([]domain.Definition{blogAlert(), blogAlert()})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Len(t, uc.ListAlerts(), 2)
}

func TestRegisterAlert_PassesThrough(t *testing.T) {
	s := newFakeScheduler()
	uc := newUseCase(t, s, &fakeQuerier{}, nil)

	id, err := uc.RegisterAlert("a.com", "1m", func(context.Context) {})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	alerts := uc.ListAlerts()
	require.Len(t, alerts, 1)
	assert.Nil(t, alerts[0].Definition)

	_, err = uc.RegisterAlert("a.com", "never", func(context.Context) {})
	assert.ErrorIs(t, err, usecase.ErrInvalidInterval)
}

// ------------------------------------------------------------
// EVALUATION
// ------------------------------------------------------------

func TestEvaluate_FiresOnLastBucket(t *testing.T) {
	q := &fakeQuerier{
		QueryFn: func(ctx context.Context, in queryusecase.QueryInput) (*querydomain.QueryResult, error) {
			return &querydomain.QueryResult{Result: []querydomain.MetricResult{{
				Metric: querydomain.MetricVisitDuration,
				Values: []querydomain.GroupSeries{
					series("/blog/a", 5, 0, 3),
					series("/blog/b", 9, 9, 1),
				},
			}}}, nil
		},
	}
	uc := newUseCase(t, newFakeScheduler(), q, &fakeNotifier{})

	fired, err := uc.Evaluate(context.Background(), blogAlert())
	require.NoError(t, err)

	in := q.lastInput
	assert.Equal(t, "a.com", in.Domain)
	assert.Equal(t, now.Add(-time.Hour), in.From)
	assert.Equal(t, now, in.To)
	assert.Equal(t, []string{"visitDuration"}, in.Metrics)
	assert.Equal(t, "page", in.Property)
	assert.Equal(t, querydomain.Glob("/blog/*"), in.Match)

	require.Len(t, fired, 1)
	assert.Equal(t, "/blog/a", fired[0].Key)
	assert.Equal(t, float64(3), fired[0].Value)
	assert.Equal(t, "blog-spike", fired[0].Alert)
	assert.Equal(t, now, fired[0].FiredAt)
}

func TestEvaluate_SilenceFiresBelow(t *testing.T) {
	q := &fakeQuerier{}
	uc := newUseCase(t, newFakeScheduler(), q, &fakeNotifier{})

	def := blogAlert()
	def.Property = ""
	def.Match = domain.Match{}
	def.Metric = "views"
	def.Condition = domain.Condition{Op: domain.OpBelow, Threshold: 1}

	fired, err := uc.Evaluate(context.Background(), def)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, "base", fired[0].Key)
	assert.Equal(t, float64(0), fired[0].Value)
	assert.Equal(t, "base", q.lastInput.Property)

	def.Condition = domain.Condition{Op: domain.OpAbove, Threshold: 1}
	fired, err = uc.Evaluate(context.Background(), def)
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestExec_NotifiesWebhook(t *testing.T) {
	s := newFakeScheduler()
	q := &fakeQuerier{
		QueryFn: func(ctx context.Context, in queryusecase.QueryInput) (*querydomain.QueryResult, error) {
			return &querydomain.QueryResult{Result: []querydomain.MetricResult{{
				Metric: querydomain.MetricVisitDuration,
				Values: []querydomain.GroupSeries{series("/blog/x", 10)},
			}}}, nil
		},
	}
	n := &fakeNotifier{NotifyFn: func(context.Context, string, domain.Notification) error {
		return errors.New("webhook down")
	}}
	uc := newUseCase(t, s, q, n)

	id, err := uc.RegisterDefinition(blogAlert())
	require.NoError(t, err)

	s.execs[id](context.Background())
	require.Len(t, n.sent, 1)
	assert.Equal(t, "https://hooks.example.com/a", n.lastTarget)
	assert.Equal(t, "/blog/x", n.sent[0].Key)
}

func TestExec_QueryErrorSkipsNotify(t *testing.T) {
	s := newFakeScheduler()
	q := &fakeQuerier{
		QueryFn: func(ctx context.Context, in queryusecase.QueryInput) (*querydomain.QueryResult, error) {
			return nil, fmt.Errorf("%w: connection refused", queryusecase.ErrSourceUnavailable)
		},
	}
	n := &fakeNotifier{}
	uc := newUseCase(t, s, q, n)

	id, err := uc.RegisterDefinition(blogAlert())
	require.NoError(t, err)

	s.execs[id](context.Background())
	assert.True(t, q.called)
	assert.Empty(t, n.sent)
}
