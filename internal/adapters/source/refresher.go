package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/plnevents/internal/domain/annotate"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

// ErrNoLoaders is returned by Refresh when nothing is configured.
var ErrNoLoaders = errors.New("no loaders configured")

// Replacer receives the annotated catalog.
type Replacer interface {
	Replace(ctx context.Context, events []model.AnnotatedEvent) uint64
}

// Refresher pulls every loader, annotates the result and swaps the catalog.
type Refresher struct {
	loaders   []Loader
	annotator *annotate.Annotator
	target    Replacer
	spec      string
	loc       *time.Location
	log       logger.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	last  map[string][]model.Event
	runMu sync.Mutex
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithSchedule sets the cron expression. Empty disables periodic refreshes.
func WithSchedule(spec string) RefresherOption {
	return func(r *Refresher) { r.spec = spec }
}

// WithRefreshLocation sets the zone the schedule is evaluated in.
func WithRefreshLocation(loc *time.Location) RefresherOption {
	return func(r *Refresher) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithRefreshLogger sets the logger.
func WithRefreshLogger(l logger.Logger) RefresherOption {
	return func(r *Refresher) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRefresher wires loaders into target.
func NewRefresher(target Replacer, a *annotate.Annotator, loaders []Loader, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		loaders:   loaders,
		annotator: a,
		target:    target,
		loc:       time.UTC,
		log:       logger.Nop(),
		last:      make(map[string][]model.Event),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.annotator == nil {
		r.annotator = annotate.New(annotate.WithLocation(r.loc), annotate.WithLogger(r.log))
	}
	return r
}

// Refresh loads every source once. A failing loader keeps its previous
// events; the error is returned joined with the others after the catalog
// has been replaced.
func (r *Refresher) Refresh(ctx context.Context) error {
	if len(r.loaders) == 0 {
		return ErrNoLoaders
	}
	r.runMu.Lock()
	defer r.runMu.Unlock()

	begin := time.Now()
	var errs []error
	for _, l := range r.loaders {
		key := loaderKey(l)
		events, err := l.Load(ctx)
		if err != nil {
			metrics.RecordCatalogRefresh(l.Name(), "failed")
			metrics.RecordErrorByComponent("source", l.Name())
			r.log.Error(ctx, "catalog source failed", logger.String("source", key), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		metrics.RecordCatalogRefresh(l.Name(), "ok")
		r.last[key] = events
	}

	merged := r.merge(ctx)
	version := r.target.Replace(ctx, merged)
	elapsed := time.Since(begin)
	metrics.RecordCatalogRefreshDuration(float64(elapsed.Milliseconds()))

	r.log.Info(ctx, "catalog refreshed",
		logger.Int("events", len(merged)),
		logger.Any("version", version),
		logger.Duration("took", elapsed),
	)
	return errors.Join(errs...)
}

// merge annotates the last good result of every loader in loader order.
// The first event seen for a slug wins.
func (r *Refresher) merge(ctx context.Context) []model.AnnotatedEvent {
	seen := make(map[string]struct{})
	var out []model.AnnotatedEvent
	for _, l := range r.loaders {
		for _, ae := range r.annotator.AnnotateAll(ctx, r.last[loaderKey(l)]) {
			if _, dup := seen[ae.Slug]; dup {
				continue
			}
			seen[ae.Slug] = struct{}{}
			out = append(out, ae)
		}
	}
	return out
}

// Start runs an initial refresh and schedules the following ones.
func (r *Refresher) Start(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil && !errors.Is(err, ErrNoLoaders) {
		r.log.Warn(ctx, "initial catalog refresh incomplete", logger.Error(err))
	}
	if r.spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(r.spec); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", r.spec, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	c := cron.New(cron.WithLocation(r.loc))
	if _, err := c.AddFunc(r.spec, func() {
		if err := r.Refresh(ctx); err != nil {
			r.log.Warn(ctx, "scheduled catalog refresh incomplete", logger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	c.Start()
	r.cron = c
	r.log.Info(ctx, "catalog refresh scheduled", logger.String("cron", r.spec))
	return nil
}

// Stop halts the schedule and waits for a running refresh.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

type keyed interface {
	Key() string
}

func loaderKey(l Loader) string {
	if k, ok := l.(keyed); ok {
		return k.Key()
	}
	return l.Name()
}
