package service_test

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/plnevents/internal/adapters/repository"
	service "github.com/okian/plnevents/internal/app"
	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/schedule"
	"github.com/okian/plnevents/internal/domain/types"
	"github.com/okian/plnevents/pkg/logger"
)

const integrationCatalog = `events:
  - name: Winter Meetup
    location: NYC
    startDate: 2024-01-10T18:00:00Z
    eventType: meetup
    isPlnEvent: true
    topics: [AI]
  - name: IPFS Camp
    location: Lisbon
    startDate: 2024-01-20T09:00:00Z
    endDate: 2024-01-22T18:00:00Z
    eventType: conference
    topics: [IPFS]
    hosts:
      - name: Protocol Labs
  - name: Hack Week
    location: NYC
    startDate: 2024-03-05T09:00:00Z
    eventType: hackathon
  - name: Old Summit
    location: Berlin
    startDate: 2023-06-01T09:00:00Z
    eventType: conference
`

func writeCatalog(path, extra string) {
	if err := os.WriteFile(path, []byte(integrationCatalog+extra), 0o600); err != nil {
		panic(err)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service loaded from a catalog file on Jan 15, 2024", t, func() {
		path := filepath.Join(t.TempDir(), "events.yaml")
		writeCatalog(path, "")
		now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithClock(func() time.Time { return now }),
			service.WithCatalogFile(path),
			service.WithRefreshSchedule(""),
			service.WithRevealDelay(time.Millisecond),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the default schedule is requested", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{BannerVisible: true})
			So(err, ShouldBeNil)

			Convey("Then this year's events are grouped by month", func() {
				So(view.Query, ShouldEqual, "")
				So(view.ActiveFilters, ShouldEqual, 0)
				So(view.EventCount, ShouldEqual, 3)
				So(len(view.Buckets), ShouldEqual, 2)
				So(view.Buckets[0].MonthName, ShouldEqual, "January")
				So(view.Buckets[0].Events[0].Name, ShouldEqual, "Winter Meetup")
				So(view.Buckets[1].MonthIndex, ShouldEqual, 2)
			})

			Convey("Then the timeline lands on the next upcoming event", func() {
				So(view.Target.Kind, ShouldEqual, schedule.KindScrollToEvent)
				So(view.Target.AnchorID, ShouldEqual, "event-0-20")
				So(view.Target.Slug, ShouldEqual, "ipfs-camp-2024-01-20")
				So(len(view.Actions), ShouldEqual, 1)
				So(view.Actions[0].Kind, ShouldEqual, types.ActionScrollIntoView)
				So(view.Actions[0].Options.TopOffset, ShouldEqual, 64)
			})

			Convey("Then facets cover the whole catalog", func() {
				So(view.Facets.Locations, ShouldResemble, []string{"Berlin", "Lisbon", "NYC"})
				So(view.Facets.Years, ShouldResemble, []string{"2023", "2024"})
			})

			Convey("Then the same request is served from cache", func() {
				again, err := svc.Schedule(ctx, service.ScheduleRequest{BannerVisible: true})
				So(err, ShouldBeNil)
				So(again.GeneratedAt, ShouldEqual, view.GeneratedAt)
				So(svc.GetStats()["cachedViews"], ShouldEqual, 1)
			})
		})

		Convey("When filtering by location", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "?locations=NYC"})
			So(err, ShouldBeNil)

			Convey("Then the next populated month is targeted", func() {
				So(view.ActiveFilters, ShouldEqual, 1)
				So(view.EventCount, ShouldEqual, 2)
				So(view.Target.AnchorID, ShouldEqual, "event-2-5")
				So(view.Actions[0].Options.TopOffset, ShouldEqual, 0)
			})
		})

		Convey("When viewing a past year", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "year=2023"})
			So(err, ShouldBeNil)

			Convey("Then the timeline scrolls to the top", func() {
				So(view.Query, ShouldEqual, "?year=2023")
				So(view.EventCount, ShouldEqual, 1)
				So(view.Target.Kind, ShouldEqual, schedule.KindScrollToTop)
				So(view.Actions[0].Kind, ShouldEqual, types.ActionScrollTo)
				So(view.Actions[0].Y, ShouldEqual, 0)
			})
		})

		Convey("When the calendar view is requested", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "?viewType=calendar"})
			So(err, ShouldBeNil)

			Convey("Then the calendar pages to the current month", func() {
				So(view.Target.Kind, ShouldEqual, schedule.KindCalendarGoToMonth)
				So(view.Target.Year, ShouldEqual, 2024)
				So(view.Target.MonthIndex, ShouldEqual, 0)
				So(view.Actions[0].Kind, ShouldEqual, types.ActionGotoMonth)
			})
		})

		Convey("When the calendar is paged forward", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "?viewType=calendar", Nav: types.NavNext})
			So(err, ShouldBeNil)

			Convey("Then the widget steps from the landing month to the next one", func() {
				So(len(view.Actions), ShouldEqual, 2)
				So(view.Actions[0].Kind, ShouldEqual, types.ActionGotoMonth)
				So(view.Actions[1].Kind, ShouldEqual, types.ActionNext)
				So(*view.Actions[1].MonthIndex, ShouldEqual, 1)
				So(view.CalendarMonth, ShouldNotBeNil)
				So(*view.CalendarMonth, ShouldEqual, 1)
			})
		})

		Convey("When the calendar is paged back from January", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "?viewType=calendar", Nav: types.NavPrev})
			So(err, ShouldBeNil)

			Convey("Then it stays on January", func() {
				So(len(view.Actions), ShouldEqual, 1)
				So(view.Actions[0].Kind, ShouldEqual, types.ActionGotoMonth)
				So(*view.CalendarMonth, ShouldEqual, 0)
			})
		})

		Convey("When the timeline is paged", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{Nav: types.NavNext})
			So(err, ShouldBeNil)

			Convey("Then the calendar is left alone", func() {
				So(view.CalendarMonth, ShouldBeNil)
				for _, a := range view.Actions {
					So(a.Kind, ShouldNotEqual, types.ActionNext)
				}
			})
		})

		Convey("When the paging direction is unknown", func() {
			_, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "?viewType=calendar", Nav: "sideways"})

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When a filter panel was just expanded", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "?year=2023", ExpandPanel: "locations-panel"})
			So(err, ShouldBeNil)

			Convey("Then the reveal follows the viewport action", func() {
				So(len(view.Actions), ShouldEqual, 2)
				So(view.Actions[1].Kind, ShouldEqual, types.ActionScrollTo)
				So(view.Actions[1].Y, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When mutations are applied", func() {
			resp, err := svc.ApplyMutations(ctx, types.QueryRequest{
				Query: "?viewType=calendar&locations=A|B",
				Mutations: []types.MutationRequest{
					{Op: "clearAll"},
				},
			})
			So(err, ShouldBeNil)

			Convey("Then only the view type survives a clear", func() {
				So(resp.Pathname, ShouldEqual, "/events")
				So(resp.Query, ShouldEqual, "?viewType=calendar")
				So(resp.URL, ShouldEqual, "/events?viewType=calendar")
				So(resp.State.ViewType, ShouldEqual, filter.ViewCalendar)
				So(resp.ActiveFilters, ShouldEqual, 0)
				So(resp.Navigations, ShouldEqual, 1)
			})
		})

		Convey("When a location is toggled twice", func() {
			toggle := types.MutationRequest{Op: "toggle", Key: "locations", Value: "NYC"}
			once, err := svc.ApplyMutations(ctx, types.QueryRequest{Mutations: []types.MutationRequest{toggle}})
			So(err, ShouldBeNil)
			twice, err := svc.ApplyMutations(ctx, types.QueryRequest{Query: once.Query, Mutations: []types.MutationRequest{toggle}})
			So(err, ShouldBeNil)

			Convey("Then it is added and removed again", func() {
				So(once.Query, ShouldEqual, "?locations=NYC")
				So(once.ActiveFilters, ShouldEqual, 1)
				So(twice.Query, ShouldEqual, "")
				So(twice.URL, ShouldEqual, "/events")
			})
		})

		Convey("When a mutation is malformed", func() {
			_, err := svc.ApplyMutations(ctx, types.QueryRequest{Mutations: []types.MutationRequest{{Op: "explode"}}})

			Convey("Then the request is rejected before anything runs", func() {
				So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When looking up events", func() {
			ev, err := svc.Event(ctx, "hack-week-2024-03-05")
			So(err, ShouldBeNil)
			So(ev.StartMonthIndex, ShouldEqual, 2)

			_, err = svc.Event(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = svc.ActivateEvent(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the catalog file changes and is refreshed", func() {
			writeCatalog(path, `  - name: Spring Hack
    location: Paris
    startDate: 2024-04-02T09:00:00Z
    eventType: hackathon
`)
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the new event is served", func() {
				view, err := svc.Schedule(ctx, service.ScheduleRequest{})
				So(err, ShouldBeNil)
				So(view.EventCount, ShouldEqual, 4)
				So(view.CatalogVersion, ShouldEqual, 2)
			})
		})

		Convey("When signals are published", func() {
			So(errors.Is(svc.PublishSignal(ctx, types.SignalRequest{Type: "filter-panel-toggled"}), service.ErrInvalidRequest), ShouldBeTrue)
			So(errors.Is(svc.PublishSignal(ctx, types.SignalRequest{Type: "event-selected"}), service.ErrInvalidRequest), ShouldBeTrue)
			So(errors.Is(svc.PublishSignal(ctx, types.SignalRequest{Type: "resize"}), service.ErrInvalidRequest), ShouldBeTrue)

			srv := httptest.NewServer(svc.Signals())
			defer srv.Close()
			reqCtx, stop := context.WithCancel(ctx)
			defer stop()
			req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL, nil)
			So(err, ShouldBeNil)
			resp, err := srv.Client().Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			reader := bufio.NewReader(resp.Body)

			next := func() string {
				var event string
				for {
					line, err := reader.ReadString('\n')
					if err != nil || line == "\n" {
						return event
					}
					if strings.HasPrefix(line, "event: ") {
						event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
					}
				}
			}
			So(next(), ShouldEqual, "connected")

			open := true
			So(svc.PublishSignal(ctx, types.SignalRequest{Type: "filter-panel-toggled", IsOpen: &open}), ShouldBeNil)
			So(svc.PublishSignal(ctx, types.SignalRequest{Type: "event-selected", Slug: "ipfs-camp-2024-01-20"}), ShouldBeNil)

			Convey("Then subscribers receive them in order", func() {
				So(next(), ShouldEqual, "filter-panel-toggled")
				So(next(), ShouldEqual, "event-selected")
			})
		})
	})
}

func TestScheduleAcrossYearBoundary(t *testing.T) {
	Convey("Given an event running from Dec 28, 2025 to Jan 3, 2026", t, func() {
		path := filepath.Join(t.TempDir(), "events.yaml")
		So(os.WriteFile(path, []byte(`events:
  - name: Winter Retreat
    location: Oslo
    startDate: 2025-12-28
    endDate: 2026-01-03
`), 0o600), ShouldBeNil)
		now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)

		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithClock(func() time.Time { return now }),
			service.WithCatalogFile(path),
			service.WithRefreshSchedule(""),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When this year's timeline is requested", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{})
			So(err, ShouldBeNil)

			Convey("Then nothing is upcoming and the page scrolls to the bottom", func() {
				So(view.EventCount, ShouldEqual, 0)
				So(view.Buckets, ShouldBeEmpty)
				So(view.Target.Kind, ShouldEqual, schedule.KindScrollToBottom)
			})
		})

		Convey("When this year's calendar is requested", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "viewType=calendar"})
			So(err, ShouldBeNil)

			Convey("Then it opens the current month of this year", func() {
				So(view.Target.Kind, ShouldEqual, schedule.KindCalendarGoToMonth)
				So(view.Target.Year, ShouldEqual, 2026)
				So(view.Target.MonthIndex, ShouldEqual, 0)
			})
		})

		Convey("When the previous year is requested", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{RawQuery: "year=2025"})
			So(err, ShouldBeNil)

			Convey("Then the event sits in December of its own year", func() {
				So(view.EventCount, ShouldEqual, 1)
				So(view.Buckets[0].MonthIndex, ShouldEqual, 11)
				So(view.Buckets[0].Events[0].StartYear, ShouldEqual, "2025")
			})
		})
	})
}

func TestScheduleFloatingDates(t *testing.T) {
	Convey("Given a date-only event in a zone west of UTC", t, func() {
		path := filepath.Join(t.TempDir(), "events.yaml")
		So(os.WriteFile(path, []byte(`events:
  - name: Spring Summit
    location: Portland
    startDate: 2026-03-01
    timezone: America/Los_Angeles
`), 0o600), ShouldBeNil)
		now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithClock(func() time.Time { return now }),
			service.WithCatalogFile(path),
			service.WithRefreshSchedule(""),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the schedule is requested", func() {
			view, err := svc.Schedule(ctx, service.ScheduleRequest{})
			So(err, ShouldBeNil)

			Convey("Then the event stays on March 1", func() {
				So(view.EventCount, ShouldEqual, 1)
				So(view.Buckets[0].MonthIndex, ShouldEqual, 2)
				So(view.Target.Kind, ShouldEqual, schedule.KindScrollToEvent)
				So(view.Target.AnchorID, ShouldEqual, "event-2-1")
				So(view.Target.Slug, ShouldEqual, "spring-summit-2026-03-01")
			})
		})
	})
}
