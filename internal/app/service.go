// Package service wires the catalog, the query-state store, the view
// controller and the signal bus behind the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/plnevents/internal/adapters/cache"
	"github.com/okian/plnevents/internal/adapters/querystore"
	"github.com/okian/plnevents/internal/adapters/repository"
	"github.com/okian/plnevents/internal/adapters/router"
	"github.com/okian/plnevents/internal/adapters/signals"
	"github.com/okian/plnevents/internal/adapters/source"
	"github.com/okian/plnevents/internal/adapters/viewport"
	"github.com/okian/plnevents/internal/domain/annotate"
	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/internal/domain/schedule"
	"github.com/okian/plnevents/internal/domain/types"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

// ScheduleRequest describes one render of the schedule page.
type ScheduleRequest = types.ScheduleRequest

func cacheSuffix(r ScheduleRequest) string {
	var b strings.Builder
	if r.BannerVisible {
		b.WriteString("|banner")
	}
	if r.MonthHint != nil {
		b.WriteString("|m" + strconv.Itoa(*r.MonthHint))
	}
	if r.ExpandPanel != "" {
		b.WriteString("|x" + r.ExpandPanel)
	}
	if r.Nav != "" {
		b.WriteString("|n" + r.Nav)
	}
	return b.String()
}

// Service implements the API dependencies for the events page.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog   *repository.Catalog
	annotator *annotate.Annotator
	refresher *source.Refresher
	views     *cache.ScheduleCache
	bus       *signals.Bus
	revealer  *schedule.Revealer
	counter   filter.Counter

	// Configuration
	loc          *time.Location
	now          func() time.Time
	pathname     string
	queueSize    int
	eventTypes   []string
	bannerOffset int
	revealDelay  time.Duration
	cacheTTL     time.Duration
	signalBuffer int
	catalogFile  string
	icsFeeds     []string
	refreshCron  string
	loaders      []source.Loader

	// State
	started   bool
	busCancel context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		loc:          time.UTC,
		now:          time.Now,
		pathname:     "/events",
		queueSize:    1024,
		eventTypes:   filter.DefaultEventTypes,
		bannerOffset: 64,
		revealDelay:  schedule.DefaultRevealDelay,
		cacheTTL:     30 * time.Second,
		signalBuffer: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components, loads the catalog and starts the refresh
// schedule and the signal bus.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting events service...")

	s.catalog = repository.NewCatalog(
		repository.WithEventTypes(s.eventTypes),
		repository.WithLogger(s.logger.Named("catalog")),
	)
	s.annotator = annotate.New(
		annotate.WithLocation(s.loc),
		annotate.WithLogger(s.logger.Named("annotate")),
	)
	s.views = cache.New(s.cacheTTL)
	s.revealer = schedule.NewRevealer(s.revealDelay, s.logger.Named("reveal"))
	s.counter = filter.NewCounter(s.eventTypes, s.now)

	s.bus = signals.NewBus(
		signals.WithBufferSize(s.signalBuffer),
		signals.WithLogger(s.logger),
	)
	busCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.busCancel = cancel
	go s.bus.Run(busCtx)

	loaders := s.loaders
	if loaders == nil {
		loaders = s.defaultLoaders()
	}
	s.refresher = source.NewRefresher(s.catalog, s.annotator, loaders,
		source.WithSchedule(s.refreshCron),
		source.WithRefreshLocation(s.loc),
		source.WithRefreshLogger(s.logger.Named("refresh")),
	)
	if err := s.refresher.Start(busCtx); err != nil {
		cancel()
		<-s.bus.Done()
		return fmt.Errorf("start catalog refresh: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "events service started",
		logger.Int("events", s.catalog.Count(ctx)),
		logger.Int("loaders", len(loaders)),
		logger.String("timezone", s.loc.String()),
	)
	return nil
}

func (s *Service) defaultLoaders() []source.Loader {
	var loaders []source.Loader
	if s.catalogFile != "" {
		loaders = append(loaders, source.NewYAMLFile(s.catalogFile))
	}
	for _, u := range s.icsFeeds {
		loaders = append(loaders, source.NewICSFeed(u,
			source.WithFeedLocation(s.loc),
			source.WithWindow(func() source.Window { return source.YearWindow(s.now().In(s.loc)) }),
			source.WithFeedLogger(s.logger.Named("ics")),
		))
	}
	return loaders
}

// Stop halts the refresh schedule and the signal bus.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping events service...")

	if s.refresher != nil {
		s.refresher.Stop()
	}
	if s.busCancel != nil {
		s.busCancel()
		<-s.bus.Done()
	}
	s.views.Flush()

	s.started = false
	s.logger.Info(ctx, "events service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Schedule renders the schedule page for req: the matching events grouped
// by month, the filter badge count, the viewport target and the actions
// that bring the page there.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (types.ScheduleView, error) {
	if err := s.ready(); err != nil {
		return types.ScheduleView{}, err
	}
	switch req.Nav {
	case "", types.NavPrev, types.NavNext:
	default:
		return types.ScheduleView{}, fmt.Errorf("%w: nav must be %q or %q", ErrInvalidRequest, types.NavPrev, types.NavNext)
	}
	now := s.now().In(s.loc)

	state, err := filter.DecodeString(req.RawQuery, now)
	if err != nil {
		s.logger.Warn(ctx, "query partly ignored", logger.String("query", req.RawQuery), logger.Error(err))
	}
	canonical := filter.Encode(state, now).String()
	version := s.catalog.Version()
	key := cache.Key(version, now.Format(time.DateOnly)+canonical+cacheSuffix(req))
	if view, ok := s.views.Get(key); ok {
		return view, nil
	}

	buckets := schedule.GroupByMonth(s.catalog.Match(ctx, state))
	if buckets == nil {
		buckets = []schedule.MonthBucket{}
	}

	rec := viewport.NewRecorder()
	page := viewport.NewPage(buckets, rec)
	year, yerr := state.YearNumber()
	if yerr != nil {
		year = now.Year()
	}
	cal := viewport.NewCalendar(year, int(now.Month())-1, buckets, rec)
	cal.OnEventActivated(s.bus.EventActivated)

	ctrl := schedule.NewController(
		schedule.WithViewport(page),
		schedule.WithCalendar(cal),
		schedule.WithClock(s.now),
		schedule.WithLocation(s.loc),
		schedule.WithBannerOffset(s.bannerOffset),
		schedule.WithLogger(s.logger.Named("controller")),
	)
	target, _ := ctrl.Observe(ctx, schedule.Snapshot{
		Filter:        state,
		Buckets:       buckets,
		BannerVisible: req.BannerVisible,
		MonthHint:     req.MonthHint,
	})

	var calendarMonth *int
	if state.ViewType == filter.ViewCalendar {
		switch req.Nav {
		case types.NavPrev:
			ctrl.Cursor().Prev(ctx)
		case types.NavNext:
			ctrl.Cursor().Next(ctx)
		}
		idx := ctrl.Cursor().Index()
		calendarMonth = &idx
	}

	if req.ExpandPanel != "" {
		if err := s.revealer.RevealWait(ctx, page, req.ExpandPanel); err != nil {
			return types.ScheduleView{}, err
		}
	}

	active := s.counter.Count(state)
	metrics.ObserveActiveFilters(active)

	view := types.ScheduleView{
		Query:          canonical,
		State:          state,
		ActiveFilters:  active,
		Buckets:        buckets,
		EventCount:     schedule.CountEvents(buckets),
		Target:         target,
		CalendarMonth:  calendarMonth,
		Actions:        rec.Actions(),
		Facets:         s.catalog.Facets(ctx),
		CatalogVersion: version,
		GeneratedAt:    now,
	}
	s.views.Set(key, view)
	return view, nil
}

// ApplyMutations runs req's mutations in order against req's location and
// returns where the page ends up.
func (s *Service) ApplyMutations(ctx context.Context, req types.QueryRequest) (types.QueryResponse, error) {
	if err := s.ready(); err != nil {
		return types.QueryResponse{}, err
	}

	muts := make([]model.Mutation, 0, len(req.Mutations))
	for i, m := range req.Mutations {
		mut := model.Mutation{Op: model.MutationOp(m.Op), Key: m.Key, Value: m.Value, Record: m.Record}
		if err := querystore.Validate(mut); err != nil {
			return types.QueryResponse{}, fmt.Errorf("%w: mutation %d: %w", ErrInvalidRequest, i, err)
		}
		muts = append(muts, mut)
	}

	pathname := req.Pathname
	if pathname == "" {
		pathname = s.pathname
	}
	r := router.New(pathname, req.Query)
	store := querystore.New(r,
		querystore.WithQueueSize(max(len(muts)+1, s.queueSize)),
		querystore.WithClock(s.now),
		querystore.WithLogger(s.logger.Named("querystore")),
	)
	store.Start(ctx)
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn(ctx, "query store close", logger.Error(err))
		}
	}()

	for _, m := range muts {
		store.Apply(ctx, m)
	}
	if err := store.Sync(ctx); err != nil {
		return types.QueryResponse{}, fmt.Errorf("apply mutations: %w", err)
	}

	state := store.State(ctx)
	return types.QueryResponse{
		Pathname:      r.Pathname(),
		Query:         store.Query(ctx).String(),
		URL:           r.URL(),
		State:         state,
		ActiveFilters: s.counter.Count(state),
		Navigations:   len(r.History()),
	}, nil
}

// ActivateEvent simulates a calendar click on slug, which broadcasts the
// event as selected.
func (s *Service) ActivateEvent(ctx context.Context, slug string) (model.AnnotatedEvent, error) {
	if err := s.ready(); err != nil {
		return model.AnnotatedEvent{}, err
	}
	ev, err := s.catalog.BySlug(ctx, slug)
	if err != nil {
		return model.AnnotatedEvent{}, err
	}
	buckets := schedule.GroupByMonth([]model.AnnotatedEvent{ev})
	cal := viewport.NewCalendar(ev.Start.Year(), ev.StartMonthIndex, buckets, nil)
	cal.OnEventActivated(s.bus.EventActivated)
	if err := cal.Activate(slug); err != nil {
		return model.AnnotatedEvent{}, err
	}
	return ev, nil
}

// PublishSignal publishes a signal posted by a client.
func (s *Service) PublishSignal(ctx context.Context, req types.SignalRequest) error {
	if err := s.ready(); err != nil {
		return err
	}
	switch signals.Type(req.Type) {
	case signals.TypeFilterPanelToggled:
		if req.IsOpen == nil {
			return fmt.Errorf("%w: isOpen is required", ErrInvalidRequest)
		}
		return s.bus.FilterPanelToggled(ctx, *req.IsOpen)
	case signals.TypeEventSelected:
		if req.Slug == "" {
			return fmt.Errorf("%w: slug is required", ErrInvalidRequest)
		}
		_, err := s.ActivateEvent(ctx, req.Slug)
		return err
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidRequest, signals.ErrUnknownType, req.Type)
	}
}

// Signals returns the SSE handler of the signal bus.
func (s *Service) Signals() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.ready(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		s.bus.ServeHTTP(w, r)
	})
}

// Event returns one annotated event.
func (s *Service) Event(ctx context.Context, slug string) (model.AnnotatedEvent, error) {
	if err := s.ready(); err != nil {
		return model.AnnotatedEvent{}, err
	}
	return s.catalog.BySlug(ctx, slug)
}

// Facets returns the filter values present in the catalog.
func (s *Service) Facets(ctx context.Context) (types.Facets, error) {
	if err := s.ready(); err != nil {
		return types.Facets{}, err
	}
	return s.catalog.Facets(ctx), nil
}

// Refresh reloads every catalog source now.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.refresher.Refresh(ctx)
	if errors.Is(err, source.ErrNoLoaders) {
		return nil
	}
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":   s.started,
		"timezone":  s.loc.String(),
		"queueSize": s.queueSize,
	}
	if s.started {
		ctx := context.Background()
		stats["events"] = s.catalog.Count(ctx)
		stats["catalogVersion"] = s.catalog.Version()
		stats["signalSubscribers"] = s.bus.SubscriberCount()
		stats["cachedViews"] = s.views.ItemCount()
	}
	return stats
}
