// Package scheduler runs registered alert evaluations on per-registration
// timers with a hard execution deadline.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"site-analytics-service/internal/alerts/core/domain"
)

// DefaultDeadline bounds every evaluation.
const DefaultDeadline = 60 * time.Second

var ErrClosed = errors.New("scheduler is closed")

// Registry owns the registrations and their timers. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*entry
	closed   bool
	loops    sync.WaitGroup
	evals    sync.WaitGroup
	deadline time.Duration
	logger   *zap.Logger
	metrics  *Metrics
	reg      prometheus.Registerer
}

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithRegisterer registers the scheduler metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) { r.reg = reg }
}

// WithDeadline overrides DefaultDeadline.
func WithDeadline(d time.Duration) Option {
	return func(r *Registry) { r.deadline = d }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:  make(map[uuid.UUID]*entry),
		deadline: DefaultDeadline,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.deadline <= 0 {
		r.deadline = DefaultDeadline
	}
	r.metrics = NewMetrics(r.reg)
	return r
}

type entry struct {
	id       uuid.UUID
	name     string
	domain   string
	interval time.Duration
	exec     domain.Exec
	created  time.Time

	ctx    context.Context
	cancel context.CancelFunc

	state        atomic.Int32
	lastDispatch atomic.Int64
	dispatches   atomic.Int64
}

type RegisterOption func(*entry)

// Named attaches a display name to the registration.
func Named(name string) RegisterOption {
	return func(e *entry) { e.name = name }
}

// Register schedules exec every interval for site. exec receives a context
// that is cancelled at the deadline or on Unregister.
func (r *Registry) Register(site, interval string, exec domain.Exec, opts ...RegisterOption) (uuid.UUID, error) {
	d, err := domain.ParseInterval(interval)
	if err != nil {
		return uuid.Nil, err
	}
	if err := domain.ValidateDomain(site); err != nil {
		return uuid.Nil, err
	}
	if exec == nil {
		return uuid.Nil, fmt.Errorf("%w: exec is required", domain.ErrInvalidDefinition)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		id:       uuid.New(),
		domain:   site,
		interval: d,
		exec:     exec,
		created:  time.Now(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return uuid.Nil, ErrClosed
	}
	r.entries[e.id] = e
	r.loops.Add(1)
	r.mu.Unlock()

	r.metrics.registrations.Inc()
	r.logger.Info("alert registered",
		zap.String("id", e.id.String()),
		zap.String("name", e.name),
		zap.String("domain", site),
		zap.Duration("interval", d))

	go r.run(e)
	return e.id, nil
}

// Unregister stops the timer of id and cancels its in-flight evaluation.
func (r *Registry) Unregister(id uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRegistrationNotFound, id)
	}

	e.cancel()
	r.metrics.registrations.Dec()
	r.logger.Info("alert unregistered", zap.String("id", id.String()), zap.String("domain", e.domain))
	return nil
}

// List returns a snapshot of every registration, oldest first.
func (r *Registry) List() []domain.Registration {
	r.mu.Lock()
	out := make([]domain.Registration, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.snapshot())
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Close stops every timer and cancels in-flight evaluations. It waits for
// the timers and supervisors, not for evaluations that ignore cancellation.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[uuid.UUID]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.cancel()
		r.metrics.registrations.Dec()
	}
	r.loops.Wait()
	r.evals.Wait()
}

func (e *entry) snapshot() domain.Registration {
	reg := domain.Registration{
		ID:         e.id,
		Name:       e.name,
		Domain:     e.domain,
		Interval:   e.interval,
		State:      domain.State(e.state.Load()),
		CreatedAt:  e.created,
		Dispatches: e.dispatches.Load(),
	}
	if ns := e.lastDispatch.Load(); ns != 0 {
		reg.LastDispatch = time.Unix(0, ns)
	}
	return reg
}

func (r *Registry) run(e *entry) {
	defer r.loops.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			r.dispatch(e)
		}
	}
}

// dispatch starts one evaluation unless the previous one is still running.
func (r *Registry) dispatch(e *entry) {
	if !e.state.CompareAndSwap(int32(domain.StateIdle), int32(domain.StateRunning)) &&
		!e.state.CompareAndSwap(int32(domain.StateCancelled), int32(domain.StateRunning)) {
		r.metrics.skipped.WithLabelValues(e.domain).Inc()
		r.logger.Debug("alert evaluation still running, skipping tick",
			zap.String("id", e.id.String()),
			zap.String("domain", e.domain))
		return
	}

	start := time.Now()
	e.lastDispatch.Store(start.UnixNano())
	e.dispatches.Add(1)
	r.metrics.dispatched.WithLabelValues(e.domain).Inc()
	r.metrics.running.Inc()

	ctx, cancel := context.WithTimeout(e.ctx, r.deadline)
	done := make(chan struct{})
	r.evals.Add(1)
	go r.evaluate(ctx, e, done)
	go r.supervise(ctx, cancel, e, done, start)
}

func (r *Registry) evaluate(ctx context.Context, e *entry, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if p := recover(); p != nil {
			r.metrics.panics.WithLabelValues(e.domain).Inc()
			r.logger.Error("alert evaluation panicked",
				zap.String("id", e.id.String()),
				zap.String("domain", e.domain),
				zap.Any("panic", p))
		}
	}()
	e.exec(ctx)
}

// supervise waits for the evaluation or its deadline, whichever comes first.
// An evaluation still running at the deadline is abandoned.
func (r *Registry) supervise(ctx context.Context, cancel context.CancelFunc, e *entry, done <-chan struct{}, start time.Time) {
	defer r.evals.Done()
	defer r.metrics.running.Dec()
	defer cancel()

	select {
	case <-done:
		r.metrics.observeDuration(time.Since(start))
		e.state.Store(int32(domain.StateIdle))
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.metrics.timeouts.WithLabelValues(e.domain).Inc()
			r.logger.Warn("alert evaluation cancelled",
				zap.String("id", e.id.String()),
				zap.String("domain", e.domain),
				zap.Duration("deadline", r.deadline),
				zap.Error(domain.ErrEvaluationTimeout))
		} else {
			r.logger.Debug("alert evaluation cancelled on unregister",
				zap.String("id", e.id.String()),
				zap.String("domain", e.domain))
		}
		e.state.Store(int32(domain.StateCancelled))
	}
}
