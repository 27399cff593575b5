package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
)

// Kind is the viewport action selected by a resolution pass.
type Kind string

// Target kinds.
const (
	KindScrollToTop       Kind = "scroll_to_top"
	KindScrollToEvent     Kind = "scroll_to_event"
	KindScrollToBottom    Kind = "scroll_to_bottom"
	KindCalendarGoToMonth Kind = "calendar_go_to_month"
)

// Target is where the viewport should land.
type Target struct {
	Kind       Kind   `json:"kind"`
	AnchorID   string `json:"anchorId,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Year       int    `json:"year,omitempty"`
	MonthIndex int    `json:"monthIndex"`
	Day        int    `json:"day,omitempty"`
}

// AnchorID is the element id the timeline renderer puts on the first card
// of a given day.
func AnchorID(monthIndex, day int) string {
	return fmt.Sprintf("event-%d-%d", monthIndex, day)
}

func eventTarget(ev model.AnnotatedEvent) Target {
	return Target{
		Kind:       KindScrollToEvent,
		AnchorID:   AnchorID(ev.StartMonthIndex, ev.StartDay),
		Slug:       ev.Slug,
		MonthIndex: ev.StartMonthIndex,
		Day:        ev.StartDay,
	}
}

// ResolveTimeline picks the event the timeline should land on for now.
// Viewing another year scrolls to the top. Otherwise the first event of the
// current month on or after today wins, then the first event of the next
// populated month, and with nothing ahead the view scrolls to the bottom.
// Only the day of month is compared inside the current month.
func ResolveTimeline(s filter.State, buckets []MonthBucket, now time.Time) Target {
	if s.Year != strconv.Itoa(now.Year()) {
		return Target{Kind: KindScrollToTop}
	}

	month := int(now.Month()) - 1
	day := now.Day()

	for _, b := range buckets {
		if b.MonthIndex != month {
			continue
		}
		for _, ev := range b.Events {
			if ev.StartDay >= day {
				return eventTarget(ev)
			}
		}
	}

	for _, b := range buckets {
		if b.MonthIndex > month && len(b.Events) > 0 {
			return eventTarget(b.Events[0])
		}
	}

	return Target{Kind: KindScrollToBottom}
}

// ResolveCalendar picks the month page the calendar should show: the first
// populated month at or after hint, else the first populated month, else
// hint itself.
func ResolveCalendar(year int, buckets []MonthBucket, hint int) Target {
	t := Target{Kind: KindCalendarGoToMonth, Year: year, MonthIndex: hint}
	for _, b := range buckets {
		if b.MonthIndex >= hint {
			t.MonthIndex = b.MonthIndex
			return t
		}
	}
	if len(buckets) > 0 {
		t.MonthIndex = buckets[0].MonthIndex
	}
	return t
}
