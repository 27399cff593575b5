package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
)

func TestControllerTimeline(t *testing.T) {
	ctx := context.Background()
	jan15 := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return jan15 }

	Convey("Given a mounted timeline", t, func() {
		vp := newFakeViewport(4000, AnchorID(0, 20))
		c := NewController(WithViewport(vp), WithClock(clock), WithBannerOffset(64))
		So(c.Phase(), ShouldEqual, PhaseIdle)

		buckets := GroupByMonth([]model.AnnotatedEvent{ev("day20", 0, 20), ev("day10", 0, 10)})
		snap := Snapshot{Filter: filter.Default(jan15), Buckets: buckets, BannerVisible: true}

		Convey("When the first snapshot arrives", func() {
			target, ran := c.Observe(ctx, snap)

			Convey("Then the anchor is scrolled into view below the banner", func() {
				So(ran, ShouldBeTrue)
				So(target.Slug, ShouldEqual, "day20")
				So(vp.intoCalls(), ShouldResemble, []string{AnchorID(0, 20)})
				So(vp.lastOpts.TopOffset, ShouldEqual, 64)
				So(c.Phase(), ShouldEqual, PhaseApplied)
				So(c.Target(), ShouldResemble, target)
			})

			Convey("Then an identical snapshot is a no-op", func() {
				_, ran := c.Observe(ctx, snap)
				So(ran, ShouldBeFalse)
				So(len(vp.intoCalls()), ShouldEqual, 1)
			})

			Convey("Then a banner change starts a new pass", func() {
				snap.BannerVisible = false
				_, ran := c.Observe(ctx, snap)
				So(ran, ShouldBeTrue)
				So(len(vp.intoCalls()), ShouldEqual, 2)
				So(vp.lastOpts.TopOffset, ShouldEqual, 0)
			})

			Convey("Then a new visible count starts a new pass", func() {
				snap.Buckets = GroupByMonth([]model.AnnotatedEvent{ev("day10", 0, 10)})
				target, ran := c.Observe(ctx, snap)
				So(ran, ShouldBeTrue)
				So(target.Kind, ShouldEqual, KindScrollToBottom)
				So(vp.toCalls(), ShouldResemble, [][2]int{{0, 4000}})
			})
		})

		Convey("When the anchor has not rendered", func() {
			empty := newFakeViewport(100)
			c := NewController(WithViewport(empty), WithClock(clock))
			target, ran := c.Observe(ctx, snap)

			Convey("Then nothing scrolls and nothing fails", func() {
				So(ran, ShouldBeTrue)
				So(target.Kind, ShouldEqual, KindScrollToEvent)
				So(empty.intoCalls(), ShouldBeEmpty)
				So(c.Phase(), ShouldEqual, PhaseApplied)
			})
		})

		Convey("When another year is viewed", func() {
			s := filter.Default(jan15)
			s.Year = "2023"
			target, _ := c.Observe(ctx, Snapshot{Filter: s, Buckets: buckets})

			Convey("Then the page scrolls to the top", func() {
				So(target.Kind, ShouldEqual, KindScrollToTop)
				So(vp.toCalls(), ShouldResemble, [][2]int{{0, 0}})
			})
		})

		Convey("When no viewport is mounted", func() {
			c := NewController(WithClock(clock))
			So(func() { c.Observe(ctx, snap) }, ShouldNotPanic)
		})

		Convey("When reset", func() {
			c.Observe(ctx, snap)
			c.Reset()
			_, ran := c.Observe(ctx, snap)
			So(ran, ShouldBeTrue)
		})
	})
}

func TestControllerCalendar(t *testing.T) {
	ctx := context.Background()
	mar10 := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return mar10 }
	buckets := GroupByMonth([]model.AnnotatedEvent{ev("feb", 1, 3), ev("may", 4, 6)})

	calendarState := func(year string) filter.State {
		s := filter.Default(mar10)
		s.ViewType = filter.ViewCalendar
		s.Year = year
		return s
	}

	Convey("Given a calendar controller", t, func() {
		cal := &fakeCalendar{}
		c := NewController(WithCalendar(cal), WithClock(clock))
		So(c.Cursor().Index(), ShouldEqual, 2)

		Convey("When observing without a hint", func() {
			target, _ := c.Observe(ctx, Snapshot{Filter: calendarState("2024"), Buckets: buckets})

			Convey("Then the first month from the current one is shown", func() {
				So(target.Kind, ShouldEqual, KindCalendarGoToMonth)
				So(cal.month, ShouldEqual, 4)
				So(cal.year, ShouldEqual, 2024)
				So(c.Cursor().Index(), ShouldEqual, 4)
			})

			Convey("Then a year change with the same events runs again", func() {
				_, ran := c.Observe(ctx, Snapshot{Filter: calendarState("2025"), Buckets: buckets})
				So(ran, ShouldBeTrue)
				So(cal.year, ShouldEqual, 2025)
			})
		})

		Convey("When a hint is given", func() {
			hint := 0
			c.Observe(ctx, Snapshot{Filter: calendarState("2024"), Buckets: buckets, MonthHint: &hint})
			So(cal.month, ShouldEqual, 1)
		})

		Convey("When the widget is not ready", func() {
			cal.fail = errors.New("ref missing")
			_, ran := c.Observe(ctx, Snapshot{Filter: calendarState("2024"), Buckets: buckets})

			Convey("Then the pass completes and the cursor stays", func() {
				So(ran, ShouldBeTrue)
				So(c.Cursor().Index(), ShouldEqual, 2)
				So(c.Phase(), ShouldEqual, PhaseApplied)
			})
		})

		Convey("When the widget panics", func() {
			cal.panics = true
			So(func() { c.Observe(ctx, Snapshot{Filter: calendarState("2024"), Buckets: buckets}) }, ShouldNotPanic)
		})

		Convey("When no widget is attached", func() {
			bare := NewController(WithClock(clock))
			So(func() { bare.Observe(ctx, Snapshot{Filter: calendarState("2024"), Buckets: buckets}) }, ShouldNotPanic)
		})
	})
}

func TestCursor(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cursor at January", t, func() {
		cal := &fakeCalendar{}
		c := NewCursor(cal, 0, nil)

		Convey("Then prev is a no-op", func() {
			So(c.Prev(ctx), ShouldBeFalse)
			So(c.Index(), ShouldEqual, 0)
			So(cal.month, ShouldEqual, 0)
		})

		Convey("Then next walks to December and stops", func() {
			for i := 0; i < 11; i++ {
				So(c.Next(ctx), ShouldBeTrue)
			}
			So(c.Next(ctx), ShouldBeFalse)
			So(c.Index(), ShouldEqual, 11)
			So(cal.month, ShouldEqual, 11)
		})

		Convey("Then a failing widget keeps both in step", func() {
			cal.fail = errors.New("not ready")
			So(c.Next(ctx), ShouldBeFalse)
			So(c.Index(), ShouldEqual, cal.month)
		})
	})

	Convey("Given a cursor without a widget", t, func() {
		c := NewCursor(nil, 14, nil)
		So(c.Index(), ShouldEqual, 11)
		So(c.Prev(ctx), ShouldBeFalse)
		So(errors.Is(c.Goto(ctx, 2024, 3), ErrCalendarNotReady), ShouldBeTrue)
	})
}
