// Package model contains domain models passed between layers.
package model

import "time"

// Host is an organization hosting an event.
type Host struct {
	Name string `json:"name" yaml:"name"`
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Venue describes where an in-person event takes place.
type Venue struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	MapLink string `json:"mapLink,omitempty" yaml:"mapLink,omitempty"`
}

// Event is a raw catalog record as exported by the CMS or read from a feed.
type Event struct {
	Name       string    `json:"name" yaml:"name"`
	WebsiteURL string    `json:"websiteUrl,omitempty" yaml:"websiteUrl,omitempty"`
	Location   string    `json:"location" yaml:"location"`
	Venue      *Venue    `json:"venue,omitempty" yaml:"venue,omitempty"`
	Start      time.Time `json:"startDate" yaml:"startDate"`
	End        time.Time `json:"endDate" yaml:"endDate"`
	TimeZone   string    `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA zone the dates are nominal in
	Tag        string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	EventType  string    `json:"eventType,omitempty" yaml:"eventType,omitempty"`
	Topics     []string  `json:"topics,omitempty" yaml:"topics,omitempty"`
	Hosts      []Host    `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	IsPLNEvent bool      `json:"isPlnEvent" yaml:"isPlnEvent"`
	DateTBD    bool      `json:"dateTBD" yaml:"dateTBD"`
	Slug       string    `json:"slug,omitempty" yaml:"slug,omitempty"`

	// Floating marks Start and End as wall-clock values with no offset of
	// their own; they are read in the event's zone, not converted to it.
	Floating bool `json:"-" yaml:"-"`
}

// AnnotatedEvent is an Event plus the calendar fields derived from its start
// in the event's nominal zone. Values are never mutated after annotation.
type AnnotatedEvent struct {
	Event

	StartMonthIndex  int    `json:"startMonthIndex"` // 0-11
	StartDay         int    `json:"startDay"`        // 1-31
	StartWeekdayName string `json:"startDayString"`
	StartYear        string `json:"startYear"`
	DateRange        string `json:"dateRange"`
}

// HostNames returns the host names in order.
func (e Event) HostNames() []string {
	names := make([]string, 0, len(e.Hosts))
	for _, h := range e.Hosts {
		names = append(names, h.Name)
	}
	return names
}

// Duration returns the time between start and end, or zero when End is
// unset or before Start.
func (e Event) Duration() time.Duration {
	if e.End.IsZero() || e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}
