package filter

import (
	"slices"
	"strconv"
	"time"
)

// MaxActiveFilters is the largest value CountActiveFilters can return.
const MaxActiveFilters = 7

// DefaultEventTypes is the known event-type enumeration.
var DefaultEventTypes = []string{"conference", "hackathon", "meetup", "workshop", "virtual"} //nolint:gochecknoglobals // enumeration

// Counter computes the filter badge. The zero value uses the wall clock and
// DefaultEventTypes.
type Counter struct {
	EventTypes []string
	Now        func() time.Time
}

// NewCounter returns a counter for the given enumeration and clock.
func NewCounter(eventTypes []string, now func() time.Time) Counter {
	return Counter{EventTypes: slices.Clone(eventTypes), Now: now}
}

// CountActiveFilters counts deviations from the defaults with the wall clock
// and DefaultEventTypes.
func CountActiveFilters(s State) int {
	return Counter{}.Count(s)
}

// Count returns how many filter dimensions differ from their defaults.
func (c Counter) Count(s State) int {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	n := 0
	if len(s.Locations) > 0 {
		n++
	}
	if len(s.Topics) > 0 {
		n++
	}
	if len(s.EventHosts) > 0 {
		n++
	}
	if s.Year != strconv.Itoa(now.Year()) {
		n++
	}
	if c.IsKnownEventType(s.EventType) {
		n++
	}
	if s.IsPlnEventOnly {
		n++
	}
	if rangeDeviates(s) {
		n++
	}
	return n
}

// IsKnownEventType reports whether v is a non-empty member of the
// event-type enumeration.
func (c Counter) IsKnownEventType(v string) bool {
	types := c.EventTypes
	if types == nil {
		types = DefaultEventTypes
	}
	return v != "" && slices.Contains(types, v)
}

func rangeDeviates(s State) bool {
	start, end, _ := s.EffectiveRange()
	y, err := s.YearNumber()
	if err != nil {
		return false
	}
	return start != YearStart(y) || end != YearEnd(y)
}
