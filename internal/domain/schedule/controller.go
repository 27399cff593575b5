package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

// Phase is the controller's state.
type Phase int

// Controller phases.
const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseApplied
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseApplied:
		return "applied"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Snapshot is what the controller observes after a render.
type Snapshot struct {
	Filter        filter.State
	Buckets       []MonthBucket
	BannerVisible bool
	// MonthHint is the month the calendar should prefer; nil means the
	// current month.
	MonthHint *int
}

// trigger is the part of a snapshot whose change starts a new pass.
type trigger struct {
	mode    filter.ViewType
	visible int
	banner  bool
	year    string
}

func (s Snapshot) trigger() trigger {
	t := trigger{
		mode:    s.Filter.ViewType,
		visible: CountEvents(s.Buckets),
		banner:  s.BannerVisible,
	}
	if s.Filter.ViewType == filter.ViewCalendar {
		t.year = s.Filter.Year
	}
	return t
}

// Controller decides and applies the viewport target of the schedule page.
// Observe may be called after every render; it only acts on mount and when
// the visible event count, the banner, the view mode or (calendar) the year
// changed. A later pass supersedes one still applying.
type Controller struct {
	viewport     Viewport
	cursor       *Cursor
	now          func() time.Time
	loc          *time.Location
	bannerOffset int
	log          logger.Logger

	mu      sync.Mutex
	phase   Phase
	gen     uint64
	mounted bool
	last    trigger
	target  Target
}

// Option configures a Controller.
type Option func(*Controller)

// WithViewport sets the DOM lookup used in timeline mode.
func WithViewport(v Viewport) Option {
	return func(c *Controller) { c.viewport = v }
}

// WithCalendar sets the calendar widget used in calendar mode.
func WithCalendar(cal CalendarAdapter) Option {
	return func(c *Controller) { c.cursor.Attach(cal) }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithBannerOffset sets the scroll offset applied while the banner shows.
func WithBannerOffset(px int) Option {
	return func(c *Controller) { c.bannerOffset = px }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.log = logger.OrNop(l)
		c.cursor.log = c.log
	}
}

// NewController creates a controller in the idle phase.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		now:    time.Now,
		loc:    time.UTC,
		log:    logger.Nop(),
		cursor: NewCursor(nil, 0, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cursor.index = int(c.now().In(c.loc).Month()) - 1
	return c
}

// Cursor returns the calendar month cursor.
func (c *Controller) Cursor() *Cursor { return c.cursor }

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Target returns the target of the last pass.
func (c *Controller) Target() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Observe runs a resolution pass when snap differs from the last observed
// snapshot in a way that matters. It returns the resolved target and
// whether a pass ran. Failures while applying are logged, never returned.
func (c *Controller) Observe(ctx context.Context, snap Snapshot) (Target, bool) {
	trig := snap.trigger()

	c.mu.Lock()
	if c.mounted && trig == c.last {
		t := c.target
		c.mu.Unlock()
		return t, false
	}
	c.mounted = true
	c.last = trig
	c.gen++
	gen := c.gen
	c.phase = PhaseResolving
	target := c.resolve(ctx, snap)
	c.target = target
	c.mu.Unlock()

	metrics.RecordViewportResolution(string(snap.Filter.ViewType), string(target.Kind))
	c.apply(ctx, gen, target, snap.BannerVisible)

	c.mu.Lock()
	if c.gen == gen {
		c.phase = PhaseApplied
	}
	c.mu.Unlock()
	return target, true
}

// Reset forgets the last snapshot so the next Observe acts as a mount.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.mounted = false
	c.phase = PhaseIdle
	c.mu.Unlock()
}

func (c *Controller) resolve(ctx context.Context, snap Snapshot) Target {
	now := c.now().In(c.loc)
	if snap.Filter.ViewType != filter.ViewCalendar {
		return ResolveTimeline(snap.Filter, snap.Buckets, now)
	}

	hint := int(now.Month()) - 1
	if snap.MonthHint != nil {
		hint = clampMonth(*snap.MonthHint)
	}
	year, err := snap.Filter.YearNumber()
	if err != nil {
		c.log.Debug(ctx, "calendar year unusable, using current year", logger.Error(err))
		year = now.Year()
	}
	return ResolveCalendar(year, snap.Buckets, hint)
}

func (c *Controller) superseded(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen != gen
}

func (c *Controller) apply(ctx context.Context, gen uint64, t Target, banner bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordViewportSoftFailure("panic")
			c.log.Error(ctx, "viewport action panicked", logger.Any("panic", r), logger.String("kind", string(t.Kind)))
		}
	}()

	if c.superseded(gen) {
		return
	}

	if t.Kind == KindCalendarGoToMonth {
		if err := c.cursor.Goto(ctx, t.Year, t.MonthIndex); err != nil {
			metrics.RecordViewportSoftFailure("calendar_not_ready")
			c.log.Warn(ctx, "calendar navigation skipped", logger.Error(err))
		}
		return
	}

	if c.viewport == nil {
		metrics.RecordViewportSoftFailure("viewport_not_ready")
		c.log.Debug(ctx, "viewport not mounted", logger.Error(ErrViewportNotReady))
		return
	}

	var err error
	switch t.Kind {
	case KindScrollToTop:
		err = c.viewport.ScrollTo(0, 0)
	case KindScrollToBottom:
		err = c.viewport.ScrollTo(0, c.viewport.ScrollHeight())
	case KindScrollToEvent:
		el, ok := c.viewport.ElementByID(t.AnchorID)
		if !ok {
			metrics.RecordViewportSoftFailure("missing_anchor")
			c.log.Debug(ctx, "anchor not rendered yet", logger.String("anchor", t.AnchorID))
			return
		}
		opts := ScrollOptions{Behavior: ScrollSmooth, Block: "start"}
		if banner {
			opts.TopOffset = c.bannerOffset
		}
		err = el.ScrollIntoView(opts)
	}
	if err != nil {
		metrics.RecordViewportSoftFailure("scroll")
		c.log.Warn(ctx, "scroll failed", logger.String("kind", string(t.Kind)), logger.Error(err))
	}
}
