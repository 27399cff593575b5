// Package filter holds the canonical filter state of the schedule page and
// its URL encoding.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ViewType selects how the schedule is presented.
type ViewType string

// View types.
const (
	ViewTimeline ViewType = "timeline"
	ViewCalendar ViewType = "calendar"
)

// URL query vocabulary.
const (
	KeyViewType       = "viewType"
	KeyYear           = "year"
	KeyIsPlnEventOnly = "isPlnEventOnly"
	KeyLocations      = "locations"
	KeyTopics         = "topics"
	KeyEventHosts     = "eventHosts"
	KeyEventType      = "eventType"
	KeyStart          = "start"
	KeyEnd            = "end"
)

// Separator joins members of array-valued filters inside one query value.
const Separator = "|"

// Keys lists the query vocabulary in canonical order.
var Keys = []string{ //nolint:gochecknoglobals // fixed vocabulary
	KeyViewType, KeyYear, KeyIsPlnEventOnly, KeyLocations, KeyTopics,
	KeyEventHosts, KeyEventType, KeyStart, KeyEnd,
}

// IsArrayKey reports whether key carries a Separator-joined set.
func IsArrayKey(key string) bool {
	switch key {
	case KeyLocations, KeyTopics, KeyEventHosts:
		return true
	}
	return false
}

// State is the canonical set of active filters. StartDate and EndDate keep
// the raw URL values; empty means the full-year default.
type State struct {
	ViewType       ViewType `json:"viewType"`
	Year           string   `json:"year"`
	IsPlnEventOnly bool     `json:"isPlnEventOnly"`
	Locations      []string `json:"locations"`
	Topics         []string `json:"topics"`
	EventHosts     []string `json:"eventHosts"`
	EventType      string   `json:"eventType"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
}

// Default returns the state with no filter applied for the year of now.
func Default(now time.Time) State {
	return State{
		ViewType:   ViewTimeline,
		Year:       strconv.Itoa(now.Year()),
		Locations:  []string{},
		Topics:     []string{},
		EventHosts: []string{},
	}
}

// YearNumber returns Year as an integer.
func (s State) YearNumber() (int, error) {
	y, err := strconv.Atoi(s.Year)
	if err != nil || y < 1 || y > 9999 {
		return 0, fmt.Errorf("%w: year %q", ErrMalformedValue, s.Year)
	}
	return y, nil
}

// EffectiveRange returns the inclusive civil date range selected by the
// state. A bound that is empty or cannot be parsed falls back to Jan 1 / Dec
// 31 of Year; parse failures are reported through err so callers can log
// them, but the returned range is always usable.
func (s State) EffectiveRange() (start, end Date, err error) {
	y, yerr := s.YearNumber()
	if yerr != nil {
		y = time.Now().Year()
	}
	start, end = YearStart(y), YearEnd(y)

	var errs []error
	if yerr != nil {
		errs = append(errs, yerr)
	}
	if s.StartDate != "" {
		d, perr := ParseDate(s.StartDate)
		if perr != nil {
			errs = append(errs, fmt.Errorf("start: %w", perr))
		} else {
			start = d
		}
	}
	if s.EndDate != "" {
		d, perr := ParseDate(s.EndDate)
		if perr != nil {
			errs = append(errs, fmt.Errorf("end: %w", perr))
		} else {
			end = d
		}
	}
	return start, end, errors.Join(errs...)
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Locations = slices.Clone(s.Locations)
	c.Topics = slices.Clone(s.Topics)
	c.EventHosts = slices.Clone(s.EventHosts)
	return c
}

// Equal compares two states field by field. Sets are compared in their
// normalized form, so nil and empty sets are equal.
func (s State) Equal(o State) bool {
	return s.ViewType == o.ViewType &&
		s.Year == o.Year &&
		s.IsPlnEventOnly == o.IsPlnEventOnly &&
		slices.Equal(NormalizeSet(s.Locations), NormalizeSet(o.Locations)) &&
		slices.Equal(NormalizeSet(s.Topics), NormalizeSet(o.Topics)) &&
		slices.Equal(NormalizeSet(s.EventHosts), NormalizeSet(o.EventHosts)) &&
		s.EventType == o.EventType &&
		s.StartDate == o.StartDate &&
		s.EndDate == o.EndDate
}

// SplitSet decodes a Separator-joined value: empty members and duplicates
// are dropped, first occurrence wins.
func SplitSet(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	for _, part := range strings.Split(raw, Separator) {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

// JoinSet encodes a set in insertion order. Members are normalized the way
// SplitSet reads them, so SplitSet(JoinSet(v)) == NormalizeSet(v).
func JoinSet(values []string) string {
	return strings.Join(NormalizeSet(values), Separator)
}

// NormalizeSet trims members, splits any that embed Separator, and drops
// empty members and duplicates.
func NormalizeSet(values []string) []string {
	return SplitSet(strings.Join(values, Separator))
}
