package viewport

import (
	"fmt"
	"slices"
	"sync"

	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/internal/domain/schedule"
	"github.com/okian/plnevents/internal/domain/types"
)

// Calendar is the month-calendar widget. It pages through one year and
// dispatches event clicks to the registered handlers.
type Calendar struct {
	rec *Recorder

	mu       sync.Mutex
	year     int
	month    int
	events   map[string]model.AnnotatedEvent
	handlers []func(schedule.EventActivation)
}

var _ schedule.CalendarAdapter = (*Calendar)(nil)

// NewCalendar shows month of year and knows the events in buckets.
func NewCalendar(year, month int, buckets []schedule.MonthBucket, rec *Recorder) *Calendar {
	if rec == nil {
		rec = NewRecorder()
	}
	c := &Calendar{rec: rec, year: year, month: month, events: make(map[string]model.AnnotatedEvent)}
	for _, b := range buckets {
		for _, ev := range b.Events {
			c.events[ev.Slug] = ev
		}
	}
	return c
}

// Page returns the displayed year and month index.
func (c *Calendar) Page() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.year, c.month
}

// GotoMonth implements schedule.CalendarAdapter.
func (c *Calendar) GotoMonth(year, monthIndex int) error {
	if monthIndex < 0 || monthIndex > 11 {
		return fmt.Errorf("%w: %d", ErrMonthOutOfRange, monthIndex)
	}
	c.mu.Lock()
	c.year, c.month = year, monthIndex
	c.mu.Unlock()
	idx := monthIndex
	c.rec.add(types.Action{Kind: types.ActionGotoMonth, Year: year, MonthIndex: &idx})
	return nil
}

// Next implements schedule.CalendarAdapter.
func (c *Calendar) Next() error { return c.step(1, types.ActionNext) }

// Prev implements schedule.CalendarAdapter.
func (c *Calendar) Prev() error { return c.step(-1, types.ActionPrev) }

func (c *Calendar) step(delta int, kind types.ActionKind) error {
	c.mu.Lock()
	next := c.month + delta
	if next < 0 || next > 11 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrMonthOutOfRange, next)
	}
	c.month = next
	year := c.year
	c.mu.Unlock()
	c.rec.add(types.Action{Kind: kind, Year: year, MonthIndex: &next})
	return nil
}

// OnEventActivated implements schedule.CalendarAdapter.
func (c *Calendar) OnEventActivated(fn func(schedule.EventActivation)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.handlers = append(c.handlers, fn)
	c.mu.Unlock()
}

// Activate simulates a click on the event with slug.
func (c *Calendar) Activate(slug string) error {
	c.mu.Lock()
	ev, ok := c.events[slug]
	handlers := slices.Clone(c.handlers)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, slug)
	}
	a := schedule.EventActivation{Slug: ev.Slug, EventType: ev.EventType, Event: ev}
	for _, fn := range handlers {
		fn(a)
	}
	return nil
}
