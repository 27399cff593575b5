package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register its collectors there", func() {
				So(manager, ShouldNotBeNil)
				manager.navigations.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.navigations.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_ns_test_sub_navigations_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording query mutations", func() {
			before := testutil.ToFloat64(globalManager.queryMutations.WithLabelValues("toggle", "applied"))
			RecordQueryMutation("toggle", "applied")
			RecordQueryMutation("toggle", "applied")

			Convey("Then the counter increases", func() {
				after := testutil.ToFloat64(globalManager.queryMutations.WithLabelValues("toggle", "applied"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateCatalogEvents(42)
			UpdateSignalSubscribers(3)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.catalogEvents), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.signalSubscribers), ShouldEqual, 3)
			})
		})

		Convey("When recording cache lookups", func() {
			hits := testutil.ToFloat64(globalManager.scheduleCache.WithLabelValues("hit"))
			RecordScheduleCacheLookup(true)
			RecordScheduleCacheLookup(false)

			Convey("Then hits and misses are split", func() {
				So(testutil.ToFloat64(globalManager.scheduleCache.WithLabelValues("hit"))-hits, ShouldEqual, 1)
			})
		})

		Convey("When recording the remaining helpers", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordHTTPRequest("/api/schedule", "GET", "200")
					RecordHTTPRequestDuration("/api/schedule", "GET", "200", 3)
					RecordNavigation()
					UpdateQueueCapacity(128)
					RecordQueueEnqueueError("closed")
					RecordViewportResolution("timeline", "scroll_to_event")
					RecordViewportSoftFailure("missing_anchor")
					ObserveActiveFilters(2)
					RecordCatalogRefresh("yaml", "ok")
					RecordCatalogRefreshDuration(12)
					RecordSignalPublished("event.selected")
					RecordErrorByComponent("querystore", "navigate")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
