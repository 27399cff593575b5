// Package schedule groups events into months and decides where the schedule
// viewport should land after every filter or view change.
package schedule

import (
	"time"

	"github.com/okian/plnevents/internal/domain/model"
)

// MonthBucket holds the events of one calendar month. Buckets are never
// empty.
type MonthBucket struct {
	MonthIndex int                    `json:"monthIndex"` // 0-11
	MonthName  string                 `json:"monthName"`
	Events     []model.AnnotatedEvent `json:"events"`
}

// GroupByMonth partitions events by StartMonthIndex in a single pass. The
// result is ordered by month and each bucket keeps the input order.
// Events with an out-of-range month index are dropped.
func GroupByMonth(events []model.AnnotatedEvent) []MonthBucket {
	var months [12][]model.AnnotatedEvent
	for _, ev := range events {
		if ev.StartMonthIndex < 0 || ev.StartMonthIndex > 11 {
			continue
		}
		months[ev.StartMonthIndex] = append(months[ev.StartMonthIndex], ev)
	}

	buckets := make([]MonthBucket, 0, 12)
	for i, evs := range months {
		if len(evs) == 0 {
			continue
		}
		buckets = append(buckets, MonthBucket{
			MonthIndex: i,
			MonthName:  time.Month(i + 1).String(),
			Events:     evs,
		})
	}
	return buckets
}

// CountEvents returns the number of events across buckets.
func CountEvents(buckets []MonthBucket) int {
	n := 0
	for _, b := range buckets {
		n += len(b.Events)
	}
	return n
}
