package schedule

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
)

func TestResolveTimeline(t *testing.T) {
	jan15 := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	state := filter.Default(jan15)

	Convey("Given the timeline on Jan 15 of the viewed year", t, func() {
		Convey("When the current month has a past and a future event", func() {
			buckets := GroupByMonth([]model.AnnotatedEvent{ev("day20", 0, 20), ev("day10", 0, 10)})
			got := ResolveTimeline(state, buckets, jan15)

			Convey("Then the future event of the month wins", func() {
				So(got.Kind, ShouldEqual, KindScrollToEvent)
				So(got.Slug, ShouldEqual, "day20")
				So(got.AnchorID, ShouldEqual, AnchorID(0, 20))
			})
		})

		Convey("When an event starts today", func() {
			got := ResolveTimeline(state, GroupByMonth([]model.AnnotatedEvent{ev("today", 0, 15)}), jan15)
			So(got.Slug, ShouldEqual, "today")
		})

		Convey("When only later months have events", func() {
			buckets := GroupByMonth([]model.AnnotatedEvent{ev("past", 0, 2), ev("apr", 3, 9), ev("mar", 2, 30)})
			got := ResolveTimeline(state, buckets, jan15)

			Convey("Then the first event of the next populated month is chosen", func() {
				So(got.Kind, ShouldEqual, KindScrollToEvent)
				So(got.Slug, ShouldEqual, "mar")
				So(got.MonthIndex, ShouldEqual, 2)
				So(got.Day, ShouldEqual, 30)
			})
		})

		Convey("When nothing is current or ahead", func() {
			got := ResolveTimeline(state, GroupByMonth([]model.AnnotatedEvent{ev("past", 0, 2)}), jan15)
			So(got.Kind, ShouldEqual, KindScrollToBottom)
		})

		Convey("When there are no events", func() {
			So(ResolveTimeline(state, nil, jan15).Kind, ShouldEqual, KindScrollToBottom)
		})
	})

	Convey("Given a different year is viewed", t, func() {
		now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		s := filter.Default(now)
		s.Year = "2023"
		buckets := GroupByMonth([]model.AnnotatedEvent{ev("jul", 6, 1)})

		Convey("Then the view scrolls to the top regardless of events", func() {
			So(ResolveTimeline(s, buckets, now).Kind, ShouldEqual, KindScrollToTop)
		})
	})

	Convey("Given December 31", t, func() {
		now := time.Date(2024, time.December, 31, 8, 0, 0, 0, time.UTC)
		buckets := GroupByMonth([]model.AnnotatedEvent{ev("dec20", 11, 20)})

		Convey("Then the year boundary falls through to the bottom", func() {
			So(ResolveTimeline(filter.Default(now), buckets, now).Kind, ShouldEqual, KindScrollToBottom)
		})
	})
}

func TestResolveCalendar(t *testing.T) {
	Convey("Given month buckets", t, func() {
		buckets := GroupByMonth([]model.AnnotatedEvent{ev("feb", 1, 1), ev("jun", 5, 1)})

		Convey("Then the first month at or after the hint is chosen", func() {
			got := ResolveCalendar(2024, buckets, 3)
			So(got.Kind, ShouldEqual, KindCalendarGoToMonth)
			So(got.MonthIndex, ShouldEqual, 5)
			So(got.Year, ShouldEqual, 2024)
			So(ResolveCalendar(2024, buckets, 1).MonthIndex, ShouldEqual, 1)
		})

		Convey("Then a hint past every bucket falls back to the first bucket", func() {
			So(ResolveCalendar(2024, buckets, 9).MonthIndex, ShouldEqual, 1)
		})

		Convey("Then no buckets keeps the hint", func() {
			So(ResolveCalendar(2024, nil, 7).MonthIndex, ShouldEqual, 7)
		})
	})
}
