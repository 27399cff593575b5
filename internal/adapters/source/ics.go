package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
)

const (
	defaultFetchTimeout          = 15 * time.Second
	maxOccurrencesPerEvent       = 500
	propEventType                = "X-EVENT-TYPE"
	propPLNEvent                 = "X-PLN-EVENT"
	maxFeedBytes           int64 = 8 << 20
)

// ICSFeed loads events from an iCalendar URL.
type ICSFeed struct {
	url    string
	client *http.Client
	window func() Window
	loc    *time.Location
	log    logger.Logger
}

// ICSOption configures an ICSFeed.
type ICSOption func(*ICSFeed)

// WithHTTPClient sets the client used to fetch the feed.
func WithHTTPClient(c *http.Client) ICSOption {
	return func(f *ICSFeed) {
		if c != nil {
			f.client = c
		}
	}
}

// WithWindow sets the recurrence expansion window.
func WithWindow(fn func() Window) ICSOption {
	return func(f *ICSFeed) {
		if fn != nil {
			f.window = fn
		}
	}
}

// WithFeedLocation sets the zone floating times are read in.
func WithFeedLocation(loc *time.Location) ICSOption {
	return func(f *ICSFeed) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithFeedLogger sets the logger.
func WithFeedLogger(l logger.Logger) ICSOption {
	return func(f *ICSFeed) {
		if l != nil {
			f.log = l
		}
	}
}

// NewICSFeed returns a loader for url.
func NewICSFeed(url string, opts ...ICSOption) *ICSFeed {
	f := &ICSFeed{
		url:    url,
		client: &http.Client{Timeout: defaultFetchTimeout},
		window: func() Window { return YearWindow(time.Now()) },
		loc:    time.UTC,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name implements Loader.
func (f *ICSFeed) Name() string { return "ics" }

// Load implements Loader.
func (f *ICSFeed) Load(ctx context.Context) ([]model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, f.url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	events, err := ParseICS(ctx, body, f.window(), f.loc, f.log)
	if err != nil {
		return nil, err
	}
	f.log.Info(ctx, "ics feed loaded", logger.String("url", f.url), logger.Int("events", len(events)))
	return events, nil
}

// ParseICS turns a calendar into events, expanding RRULE/EXDATE within w.
// Broken VEVENTs are logged and skipped.
func ParseICS(ctx context.Context, body []byte, w Window, loc *time.Location, log logger.Logger) ([]model.Event, error) {
	log = logger.OrNop(log)
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}
	if w.End.Before(w.Start) {
		return nil, ErrBadWindow
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var out []model.Event
	for _, ve := range cal.Events() {
		base, rule, exdates, err := parseVEvent(ve, loc)
		if err != nil {
			log.Warn(ctx, "skipping vevent", logger.Error(err))
			continue
		}
		if rule == "" {
			if overlaps(base.Start, base.End, w) {
				out = append(out, base)
			}
			continue
		}
		occ, err := expand(base, rule, exdates, w)
		if err != nil {
			log.Warn(ctx, "skipping recurrence", logger.String("event", base.Name), logger.Error(err))
			continue
		}
		out = append(out, occ...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Event, string, []time.Time, error) {
	var ev model.Event

	summary := ve.GetProperty(ical.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return ev, "", nil, fmt.Errorf("%w: missing SUMMARY", ErrInvalidEvent)
	}
	ev.Name = strings.TrimSpace(summary.Value)

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, "", nil, fmt.Errorf("%w: %q has no DTSTART", ErrInvalidEvent, ev.Name)
	}
	startLoc := propLocation(dtStart, loc)
	start, err := parseICSTime(strings.TrimSpace(dtStart.Value), startLoc)
	if err != nil {
		return ev, "", nil, fmt.Errorf("%w: %q: %w", ErrInvalidEvent, ev.Name, err)
	}
	if tz := firstParam(dtStart, "TZID"); tz != "" {
		ev.TimeZone = tz
	}

	end := start
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		if t, err := parseICSTime(strings.TrimSpace(dtEnd.Value), propLocation(dtEnd, loc)); err == nil && !t.Before(start) {
			end = t
		}
	}
	// DTEND of an all-day event is exclusive.
	if isAllDay(dtStart) && end.After(start) {
		end = end.AddDate(0, 0, -1)
	}
	ev.Start, ev.End = start, end

	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		ev.WebsiteURL = strings.TrimSpace(p.Value)
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				ev.Topics = append(ev.Topics, c)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		name := firstParam(p, "CN")
		if name == "" {
			name = strings.TrimPrefix(strings.TrimPrefix(p.Value, "mailto:"), "MAILTO:")
		}
		ev.Hosts = append(ev.Hosts, model.Host{Name: name})
	}
	if p := ve.GetProperty(ical.ComponentProperty(propEventType)); p != nil {
		ev.EventType = strings.ToLower(strings.TrimSpace(p.Value))
	}
	if p := ve.GetProperty(ical.ComponentProperty(propPLNEvent)); p != nil {
		ev.IsPLNEvent = strings.EqualFold(strings.TrimSpace(p.Value), "TRUE")
	}

	var rule string
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rule = p.Value
	}
	var exdates []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), start.Location()); err == nil {
				exdates = append(exdates, t)
			}
		}
	}
	return ev, rule, exdates, nil
}

func expand(base model.Event, rule string, exdates []time.Time, w Window) ([]model.Event, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("parse RRULE %q: %w", rule, err)
	}
	r.DTStart(base.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exdates {
		set.ExDate(ex.In(base.Start.Location()))
	}

	starts := set.Between(w.Start.In(base.Start.Location()), w.End.In(base.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	dur := base.End.Sub(base.Start)
	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		occ := base
		occ.Start = s
		occ.End = s.Add(dur)
		occ.Topics = append([]string(nil), base.Topics...)
		occ.Hosts = append([]model.Host(nil), base.Hosts...)
		out = append(out, occ)
	}
	return out, nil
}

func overlaps(start, end time.Time, w Window) bool {
	if end.Before(start) {
		end = start
	}
	return !end.Before(w.Start) && !start.After(w.End)
}

// propLocation resolves TZID, falling back to def for floating times.
func propLocation(p *ical.IANAProperty, def *time.Location) *time.Location {
	if def == nil {
		def = time.UTC
	}
	tz := firstParam(p, "TZID")
	if tz == "" {
		return def
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return def
	}
	return loc
}

func isAllDay(p *ical.IANAProperty) bool {
	if strings.EqualFold(firstParam(p, "VALUE"), "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func firstParam(p *ical.IANAProperty, name string) string {
	if p == nil || p.ICalParameters == nil {
		return ""
	}
	if vs := p.ICalParameters[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, fmt.Errorf("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// Key distinguishes feeds that share the "ics" name.
func (f *ICSFeed) Key() string { return "ics:" + f.url }
