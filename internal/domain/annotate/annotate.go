// Package annotate derives the calendar fields the schedule views rely on.
package annotate

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
)

// TBD is the date range shown for events without confirmed dates.
const TBD = "TBD"

// Annotator turns raw events into annotated ones.
type Annotator struct {
	loc *time.Location
	log logger.Logger

	mu    sync.Mutex
	zones map[string]*time.Location
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithLocation sets the zone used for events that carry none.
func WithLocation(loc *time.Location) Option {
	return func(a *Annotator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Annotator) {
		a.log = logger.OrNop(l)
	}
}

// New creates an Annotator. Events without a zone are read in UTC unless
// WithLocation says otherwise.
func New(opts ...Option) *Annotator {
	a := &Annotator{
		loc:   time.UTC,
		log:   logger.Nop(),
		zones: make(map[string]*time.Location),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Annotate derives month index, day, weekday, year, date range and slug of
// ev in its nominal zone.
func (a *Annotator) Annotate(ctx context.Context, ev model.Event) model.AnnotatedEvent {
	loc := a.zone(ctx, ev.TimeZone)
	start := inZone(ev.Start, loc, ev.Floating)
	end := ev.End
	if !end.IsZero() {
		end = inZone(end, loc, ev.Floating)
	}

	out := model.AnnotatedEvent{
		Event:            ev,
		StartMonthIndex:  int(start.Month()) - 1,
		StartDay:         start.Day(),
		StartWeekdayName: start.Weekday().String(),
		StartYear:        strconv.Itoa(start.Year()),
		DateRange:        DateRange(start, end, ev.DateTBD),
	}
	out.Start = start
	out.End = end
	out.Floating = false
	if out.Slug == "" {
		out.Slug = Slug(ev.Name, start)
	}
	return out
}

// AnnotateAll annotates evs in order.
func (a *Annotator) AnnotateAll(ctx context.Context, evs []model.Event) []model.AnnotatedEvent {
	out := make([]model.AnnotatedEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, a.Annotate(ctx, ev))
	}
	return out
}

// inZone places t in loc. Floating values keep their wall clock.
func inZone(t time.Time, loc *time.Location, floating bool) time.Time {
	if !floating {
		return t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func (a *Annotator) zone(ctx context.Context, name string) *time.Location {
	if name == "" {
		return a.loc
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if loc, ok := a.zones[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		a.log.Warn(ctx, "unknown event time zone, using default",
			logger.String("zone", name), logger.Error(err))
		loc = a.loc
	}
	a.zones[name] = loc
	return loc
}

// DateRange renders the human date range of an event:
//
//	Jan 2, 2026
//	Jan 2 - 4, 2026
//	Jan 30 - Feb 2, 2026
//	Dec 30, 2025 - Jan 2, 2026
func DateRange(start, end time.Time, tbd bool) string {
	if tbd {
		return TBD
	}
	if end.IsZero() || end.Before(start) || sameDay(start, end) {
		return start.Format("Jan 2, 2006")
	}
	switch {
	case start.Year() != end.Year():
		return start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
	case start.Month() != end.Month():
		return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
	default:
		return start.Format("Jan 2") + " - " + end.Format("2, 2006")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Slug derives an anchor-safe identifier from the event name and start date.
func Slug(name string, start time.Time) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if base == "" {
		base = "event"
	}
	return base + "-" + start.Format("2006-01-02")
}
