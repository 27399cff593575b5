package schedule

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRevealer(t *testing.T) {
	Convey("Given a revealer with a short delay", t, func() {
		r := NewRevealer(10*time.Millisecond, nil)

		Convey("When the panel is rendered", func() {
			vp := newFakeViewport(500, "topics-panel")
			r.Reveal(context.Background(), vp, "topics-panel")

			Convey("Then it is scrolled into view after the delay", func() {
				So(vp.intoCalls(), ShouldBeEmpty)
				time.Sleep(100 * time.Millisecond)
				So(vp.intoCalls(), ShouldResemble, []string{"topics-panel"})
			})
		})

		Convey("When the panel is missing", func() {
			vp := newFakeViewport(500)
			r.Reveal(context.Background(), vp, "topics-panel")
			time.Sleep(100 * time.Millisecond)

			Convey("Then the container scrolls to its height", func() {
				So(vp.toCalls(), ShouldResemble, [][2]int{{0, 500}})
			})
		})

		Convey("When stopped before firing", func() {
			vp := newFakeViewport(500, "topics-panel")
			stop := r.Reveal(context.Background(), vp, "topics-panel")
			So(stop(), ShouldBeTrue)
			time.Sleep(50 * time.Millisecond)
			So(vp.intoCalls(), ShouldBeEmpty)
		})

		Convey("When the context is cancelled before firing", func() {
			vp := newFakeViewport(500, "topics-panel")
			ctx, cancel := context.WithCancel(context.Background())
			r.Reveal(ctx, vp, "topics-panel")
			cancel()
			time.Sleep(50 * time.Millisecond)
			So(vp.intoCalls(), ShouldBeEmpty)
		})
	})

	Convey("Given a non-positive delay", t, func() {
		So(NewRevealer(0, nil).Delay(), ShouldEqual, DefaultRevealDelay)
	})
}

func TestRevealWait(t *testing.T) {
	Convey("Given a revealer waiting inline", t, func() {
		r := NewRevealer(5*time.Millisecond, nil)

		Convey("When the delay passes", func() {
			vp := newFakeViewport(300, "hosts-panel")
			err := r.RevealWait(context.Background(), vp, "hosts-panel")

			Convey("Then the panel was revealed before returning", func() {
				So(err, ShouldBeNil)
				So(vp.intoCalls(), ShouldResemble, []string{"hosts-panel"})
			})
		})

		Convey("When the context ends first", func() {
			vp := newFakeViewport(300, "hosts-panel")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Convey("Then nothing is scrolled", func() {
				So(r.RevealWait(ctx, vp, "hosts-panel"), ShouldEqual, context.Canceled)
				So(vp.intoCalls(), ShouldBeEmpty)
			})
		})

		Convey("When the context is cancelled while the timer is pending", func() {
			slow := NewRevealer(time.Second, nil)
			vp := newFakeViewport(300, "hosts-panel")
			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(10*time.Millisecond, cancel)

			started := time.Now()
			err := slow.RevealWait(ctx, vp, "hosts-panel")

			Convey("Then it returns without waiting out the delay", func() {
				So(err, ShouldEqual, context.Canceled)
				So(time.Since(started), ShouldBeLessThan, 500*time.Millisecond)
				time.Sleep(50 * time.Millisecond)
				So(vp.intoCalls(), ShouldBeEmpty)
			})
		})

		Convey("When there is no viewport", func() {
			So(r.RevealWait(context.Background(), nil, "hosts-panel"), ShouldEqual, ErrViewportNotReady)
		})
	})
}
