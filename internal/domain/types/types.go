// Package types contains the request and response shapes shared by the
// service and its HTTP adapter.
package types

import (
	"time"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/schedule"
)

// Facets lists the values a filter panel can offer.
type Facets struct {
	Locations  []string `json:"locations"`
	Topics     []string `json:"topics"`
	Hosts      []string `json:"hosts"`
	EventTypes []string `json:"eventTypes"`
	Years      []string `json:"years"`
}

// ActionKind names a recorded viewport or calendar call.
type ActionKind string

// Action kinds.
const (
	ActionScrollIntoView ActionKind = "scroll_into_view"
	ActionScrollTo       ActionKind = "scroll_to"
	ActionGotoMonth      ActionKind = "goto_month"
	ActionNext           ActionKind = "next_month"
	ActionPrev           ActionKind = "prev_month"
)

// Action is one call the view controller made against the page. Clients
// replay the list in order.
type Action struct {
	Kind       ActionKind              `json:"kind"`
	ElementID  string                  `json:"elementId,omitempty"`
	Options    *schedule.ScrollOptions `json:"options,omitempty"`
	X          int                     `json:"x,omitempty"`
	Y          int                     `json:"y,omitempty"`
	Year       int                     `json:"year,omitempty"`
	MonthIndex *int                    `json:"monthIndex,omitempty"`
}

// ScheduleRequest describes one render of the schedule page.
type ScheduleRequest struct {
	// RawQuery is the page query string, with or without the leading '?'.
	RawQuery      string
	BannerVisible bool
	// MonthHint is the calendar month to prefer; nil means the current one.
	MonthHint *int
	// ExpandPanel is the id of a filter panel just expanded, if any.
	ExpandPanel string
	// Nav pages the calendar one month from where it lands: NavPrev or
	// NavNext. Ignored on the timeline view.
	Nav string
}

// Calendar paging directions for ScheduleRequest.Nav.
const (
	NavPrev = "prev"
	NavNext = "next"
)

// ScheduleView is the answer to one schedule request.
type ScheduleView struct {
	Query          string                 `json:"query"`
	State          filter.State           `json:"state"`
	ActiveFilters  int                    `json:"activeFilters"`
	Buckets        []schedule.MonthBucket `json:"buckets"`
	EventCount     int                    `json:"eventCount"`
	Target         schedule.Target        `json:"target"`
	CalendarMonth  *int                   `json:"calendarMonth,omitempty"`
	Actions        []Action               `json:"actions"`
	Facets         Facets                 `json:"facets"`
	CatalogVersion uint64                 `json:"catalogVersion"`
	GeneratedAt    time.Time              `json:"generatedAt"`
}

// MutationRequest is one query mutation in a QueryRequest.
type MutationRequest struct {
	Op     string            `json:"op"`
	Key    string            `json:"key,omitempty"`
	Value  string            `json:"value,omitempty"`
	Record map[string]string `json:"record,omitempty"`
}

// QueryRequest applies mutations, in order, to a location.
type QueryRequest struct {
	Pathname  string            `json:"pathname"`
	Query     string            `json:"query"`
	Mutations []MutationRequest `json:"mutations"`
}

// QueryResponse is the location after a QueryRequest.
type QueryResponse struct {
	Pathname      string       `json:"pathname"`
	Query         string       `json:"query"`
	URL           string       `json:"url"`
	State         filter.State `json:"state"`
	ActiveFilters int          `json:"activeFilters"`
	Navigations   int          `json:"navigations"`
}

// SignalRequest publishes a signal.
type SignalRequest struct {
	Type   string `json:"type"`
	IsOpen *bool  `json:"isOpen,omitempty"`
	Slug   string `json:"slug,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
