package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

// EventActivation is delivered when an event is clicked in the calendar.
type EventActivation struct {
	Slug      string               `json:"slug"`
	EventType string               `json:"eventType"`
	Event     model.AnnotatedEvent `json:"event"`
}

// CalendarAdapter wraps the month-calendar widget.
type CalendarAdapter interface {
	GotoMonth(year, monthIndex int) error
	Next() error
	Prev() error
	OnEventActivated(fn func(EventActivation))
}

// Cursor is the bounded month index (0-11) kept in step with the calendar
// widget's own page.
type Cursor struct {
	mu    sync.Mutex
	index int
	cal   CalendarAdapter
	log   logger.Logger
}

// NewCursor returns a cursor at start, clamped to 0-11. cal may be nil
// until the widget is mounted; see Attach.
func NewCursor(cal CalendarAdapter, start int, log logger.Logger) *Cursor {
	return &Cursor{index: clampMonth(start), cal: cal, log: logger.OrNop(log)}
}

// Attach binds the widget once it is mounted.
func (c *Cursor) Attach(cal CalendarAdapter) {
	c.mu.Lock()
	c.cal = cal
	c.mu.Unlock()
}

// Index returns the current month index.
func (c *Cursor) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Prev moves one month back. It is a no-op at January or when the widget
// refuses the move; it reports whether the cursor moved.
func (c *Cursor) Prev(ctx context.Context) bool {
	return c.step(ctx, -1)
}

// Next moves one month forward. It is a no-op at December or when the
// widget refuses the move; it reports whether the cursor moved.
func (c *Cursor) Next(ctx context.Context) bool {
	return c.step(ctx, 1)
}

func (c *Cursor) step(ctx context.Context, delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.index + delta
	if next < 0 || next > 11 {
		return false
	}
	if c.cal == nil {
		c.softFail(ctx, "calendar_not_ready", ErrCalendarNotReady)
		return false
	}

	var err error
	if delta < 0 {
		err = c.cal.Prev()
	} else {
		err = c.cal.Next()
	}
	if err != nil {
		c.softFail(ctx, "calendar_api", fmt.Errorf("%w: %w", ErrCalendarNotReady, err))
		return false
	}
	c.index = next
	return true
}

// Goto sends the widget to monthIndex of year and moves the cursor there.
func (c *Cursor) Goto(ctx context.Context, year, monthIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cal == nil {
		return ErrCalendarNotReady
	}
	monthIndex = clampMonth(monthIndex)
	if err := c.cal.GotoMonth(year, monthIndex); err != nil {
		return fmt.Errorf("%w: %w", ErrCalendarNotReady, err)
	}
	c.index = monthIndex
	return nil
}

func (c *Cursor) softFail(ctx context.Context, reason string, err error) {
	metrics.RecordViewportSoftFailure(reason)
	c.log.Warn(ctx, "calendar navigation skipped", logger.Error(err))
}

func clampMonth(i int) int {
	switch {
	case i < 0:
		return 0
	case i > 11:
		return 11
	default:
		return i
	}
}
