package repository

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/text/cases"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

// Snapshot is an immutable view of the catalog. Readers never lock.
type Snapshot struct {
	Version uint64
	Events  []model.AnnotatedEvent // ordered by start, then name
	BySlug  map[string]int
	Facets  Facets
}

// Catalog is an in-memory Store. Writers rebuild a Snapshot under a mutex
// and publish it atomically.
type Catalog struct {
	mu         sync.Mutex
	snapshot   atomic.Pointer[Snapshot]
	eventTypes []string
	log        logger.Logger
}

var _ Store = (*Catalog)(nil)

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		eventTypes: slices.Clone(filter.DefaultEventTypes),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snapshot.Store(&Snapshot{BySlug: map[string]int{}, Facets: buildFacets(nil)})
	return c
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Replace implements Store.
func (c *Catalog) Replace(_ context.Context, events []model.AnnotatedEvent) uint64 {
	sorted := slices.Clone(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].Name < sorted[j].Name
	})

	bySlug := make(map[string]int, len(sorted))
	for i, ev := range sorted {
		if _, dup := bySlug[ev.Slug]; !dup {
			bySlug[ev.Slug] = i
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := &Snapshot{
		Version: c.snapshot.Load().Version + 1,
		Events:  sorted,
		BySlug:  bySlug,
		Facets:  buildFacets(sorted),
	}
	c.snapshot.Store(next)
	metrics.UpdateCatalogEvents(len(sorted))
	return next.Version
}

// Match implements Store.
func (c *Catalog) Match(ctx context.Context, s filter.State) []model.AnnotatedEvent {
	snap := c.snapshot.Load()

	from, to, err := s.EffectiveRange()
	if err != nil {
		c.log.Warn(ctx, "malformed date filter treated as no constraint", logger.Error(err))
	}

	// A Caser is stateful and must not be shared between goroutines.
	fold := cases.Fold()
	locations := make([]string, 0, len(s.Locations))
	for _, l := range s.Locations {
		locations = append(locations, fold.String(l))
	}
	typeFilter := ""
	if s.EventType != "" && slices.Contains(c.eventTypes, s.EventType) {
		typeFilter = s.EventType
	}

	out := make([]model.AnnotatedEvent, 0, len(snap.Events))
	for _, ev := range snap.Events {
		if s.IsPlnEventOnly && !ev.IsPLNEvent {
			continue
		}
		if typeFilter != "" && ev.EventType != typeFilter {
			continue
		}
		if len(locations) > 0 && !slices.Contains(locations, fold.String(ev.Location)) {
			continue
		}
		if len(s.Topics) > 0 && !anyOf(s.Topics, ev.Topics) {
			continue
		}
		if len(s.EventHosts) > 0 && !anyOf(s.EventHosts, ev.HostNames()) {
			continue
		}
		if !startsWithin(ev, from, to) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// BySlug implements Store.
func (c *Catalog) BySlug(_ context.Context, slug string) (model.AnnotatedEvent, error) {
	snap := c.snapshot.Load()
	i, ok := snap.BySlug[slug]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.AnnotatedEvent{}, ErrNotFound
	}
	return snap.Events[i], nil
}

// Facets implements Store.
func (c *Catalog) Facets(_ context.Context) Facets {
	return c.snapshot.Load().Facets
}

// Version implements Store.
func (c *Catalog) Version() uint64 {
	return c.snapshot.Load().Version
}

// Count implements Store.
func (c *Catalog) Count(_ context.Context) int {
	return len(c.snapshot.Load().Events)
}

func buildFacets(events []model.AnnotatedEvent) Facets {
	fold := cases.Fold()
	f := Facets{Locations: []string{}, Topics: []string{}, Hosts: []string{}, EventTypes: []string{}, Years: []string{}}
	seenLoc := map[string]bool{}
	seen := map[string]map[string]bool{"topic": {}, "host": {}, "type": {}, "year": {}}
	add := func(kind, v string, dst *[]string) {
		if v == "" || seen[kind][v] {
			return
		}
		seen[kind][v] = true
		*dst = append(*dst, v)
	}

	for _, ev := range events {
		if key := fold.String(ev.Location); ev.Location != "" && !seenLoc[key] {
			seenLoc[key] = true
			f.Locations = append(f.Locations, ev.Location)
		}
		for _, t := range ev.Topics {
			add("topic", t, &f.Topics)
		}
		for _, h := range ev.HostNames() {
			add("host", h, &f.Hosts)
		}
		add("type", ev.EventType, &f.EventTypes)
		add("year", ev.StartYear, &f.Years)
	}

	for _, s := range [][]string{f.Locations, f.Topics, f.Hosts, f.EventTypes} {
		sort.Strings(s)
	}
	sort.Slice(f.Years, func(i, j int) bool {
		a, _ := strconv.Atoi(f.Years[i])
		b, _ := strconv.Atoi(f.Years[j])
		return a < b
	})
	return f
}

func anyOf(wanted, have []string) bool {
	for _, w := range wanted {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// startsWithin reports whether the event's civil start date lies in
// [from, to]. Events running into the range from an earlier year stay with
// the year they start in, so month buckets never mix years.
func startsWithin(ev model.AnnotatedEvent, from, to filter.Date) bool {
	start := filter.DateOf(ev.Start)
	return !start.Before(from) && !start.After(to)
}
