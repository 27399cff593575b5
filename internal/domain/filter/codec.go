package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Decode derives the filter state from a query. Unknown keys are ignored.
// Values that cannot be used fall back to their defaults and are reported
// in the returned error; the state is always usable.
func Decode(q Query, now time.Time) (State, error) {
	s := Default(now)
	var errs []error

	if v, ok := q.Get(KeyViewType); ok {
		switch ViewType(v) {
		case ViewTimeline, ViewCalendar:
			s.ViewType = ViewType(v)
		default:
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrMalformedValue, KeyViewType, v))
		}
	}

	if v, ok := q.Get(KeyYear); ok && v != "" {
		candidate := State{Year: strings.TrimSpace(v)}
		if _, err := candidate.YearNumber(); err != nil {
			errs = append(errs, err)
		} else {
			s.Year = candidate.Year
		}
	}

	if v, ok := q.Get(KeyIsPlnEventOnly); ok {
		s.IsPlnEventOnly = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	if v, ok := q.Get(KeyLocations); ok {
		s.Locations = SplitSet(v)
	}
	if v, ok := q.Get(KeyTopics); ok {
		s.Topics = SplitSet(v)
	}
	if v, ok := q.Get(KeyEventHosts); ok {
		s.EventHosts = SplitSet(v)
	}

	if v, ok := q.Get(KeyEventType); ok {
		s.EventType = strings.TrimSpace(v)
	}
	if v, ok := q.Get(KeyStart); ok {
		s.StartDate = strings.TrimSpace(v)
	}
	if v, ok := q.Get(KeyEnd); ok {
		s.EndDate = strings.TrimSpace(v)
	}

	return s, errors.Join(errs...)
}

// DecodeString parses raw and decodes it. Malformed pairs are skipped.
func DecodeString(raw string, now time.Time) (State, error) {
	q, perr := ParseQuery(raw)
	s, derr := Decode(q, now)
	return s, errors.Join(perr, derr)
}

// Encode renders s in canonical key order, omitting every field that holds
// its default so Decode(Encode(s)) == s.
func Encode(s State, now time.Time) Query {
	q := NewQuery()
	if s.ViewType == ViewCalendar {
		q.Set(KeyViewType, string(s.ViewType))
	}
	if s.Year != "" && s.Year != strconv.Itoa(now.Year()) {
		q.Set(KeyYear, s.Year)
	}
	if s.IsPlnEventOnly {
		q.Set(KeyIsPlnEventOnly, "true")
	}
	if v := JoinSet(s.Locations); v != "" {
		q.Set(KeyLocations, v)
	}
	if v := JoinSet(s.Topics); v != "" {
		q.Set(KeyTopics, v)
	}
	if v := JoinSet(s.EventHosts); v != "" {
		q.Set(KeyEventHosts, v)
	}
	if s.EventType != "" {
		q.Set(KeyEventType, s.EventType)
	}
	if s.StartDate != "" {
		q.Set(KeyStart, s.StartDate)
	}
	if s.EndDate != "" {
		q.Set(KeyEnd, s.EndDate)
	}
	return q
}
