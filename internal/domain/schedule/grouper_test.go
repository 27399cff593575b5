package schedule

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/plnevents/internal/domain/model"
)

func TestGroupByMonth(t *testing.T) {
	Convey("Given an unordered event list", t, func() {
		events := []model.AnnotatedEvent{
			ev("c", 5, 1), ev("a", 0, 20), ev("b", 0, 10), ev("d", 11, 31), ev("e", 5, 2),
		}

		Convey("When grouping by month", func() {
			buckets := GroupByMonth(events)

			Convey("Then only populated months appear, in order", func() {
				So(len(buckets), ShouldEqual, 3)
				So(buckets[0].MonthIndex, ShouldEqual, 0)
				So(buckets[0].MonthName, ShouldEqual, "January")
				So(buckets[1].MonthIndex, ShouldEqual, 5)
				So(buckets[2].MonthName, ShouldEqual, "December")
			})

			Convey("Then events keep their input order inside a month", func() {
				So(buckets[0].Events[0].Name, ShouldEqual, "a")
				So(buckets[0].Events[1].Name, ShouldEqual, "b")
				So(buckets[1].Events[0].Name, ShouldEqual, "c")
				So(CountEvents(buckets), ShouldEqual, 5)
			})
		})

		Convey("When the list is empty", func() {
			So(GroupByMonth(nil), ShouldBeEmpty)
		})
	})

	Convey("Given random event lists", t, func() {
		rng := rand.New(rand.NewSource(3)) //nolint:gosec // deterministic test data
		for round := 0; round < 100; round++ {
			n := rng.Intn(40)
			events := make([]model.AnnotatedEvent, n)
			for i := range events {
				events[i] = ev(string(rune('A'+i%26))+string(rune('0'+i/26)), rng.Intn(12), 1+rng.Intn(28))
			}
			buckets := GroupByMonth(events)

			for i := 1; i < len(buckets); i++ {
				So(buckets[i].MonthIndex, ShouldBeGreaterThan, buckets[i-1].MonthIndex)
			}
			for _, b := range buckets {
				So(b.Events, ShouldNotBeEmpty)
				var want []string
				for _, e := range events {
					if e.StartMonthIndex == b.MonthIndex {
						want = append(want, e.Name)
					}
				}
				var got []string
				for _, e := range b.Events {
					got = append(got, e.Name)
				}
				So(got, ShouldResemble, want)
			}
			So(CountEvents(buckets), ShouldEqual, n)
		}
	})
}
