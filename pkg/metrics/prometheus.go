// Package metrics provides Prometheus metrics for the events discovery service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Query-state store
	queryMutations     *prometheus.CounterVec
	navigations        prometheus.Counter
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec

	// Schedule view
	viewportResolutions  *prometheus.CounterVec
	viewportSoftFailures *prometheus.CounterVec
	activeFilters        prometheus.Histogram
	scheduleCache        *prometheus.CounterVec

	// Catalog
	catalogEvents          prometheus.Gauge
	catalogRefreshes       *prometheus.CounterVec
	catalogRefreshDuration prometheus.Histogram

	// Signals
	signalsPublished  *prometheus.CounterVec
	signalSubscribers prometheus.Gauge

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "plnevents",
		subsystem:        "discovery",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.queryMutations = auto.NewCounterVec(
		m.counterOpts("query_mutations_total", "Query-state mutations by operation and result"),
		[]string{"op", "result"},
	)
	m.navigations = auto.NewCounter(
		m.counterOpts("navigations_total", "Client-side navigations issued by the query-state store"),
	)
	m.queueSize = auto.NewGauge(m.gaugeOpts("mutation_queue_size", "Pending query mutations"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("mutation_queue_capacity", "Capacity of the query mutation queue"))
	m.queueEnqueueErrors = auto.NewCounterVec(
		m.counterOpts("mutation_queue_enqueue_errors_total", "Mutations rejected by the queue"),
		[]string{"reason"},
	)

	m.viewportResolutions = auto.NewCounterVec(
		m.counterOpts("viewport_resolutions_total", "Viewport targets resolved by view mode and kind"),
		[]string{"mode", "kind"},
	)
	m.viewportSoftFailures = auto.NewCounterVec(
		m.counterOpts("viewport_soft_failures_total", "Viewport actions that were skipped (missing anchor, calendar not ready)"),
		[]string{"reason"},
	)
	m.activeFilters = auto.NewHistogram(
		m.histogramOpts("active_filters", "Number of active filters per schedule request", []float64{0, 1, 2, 3, 4, 5, 6, 7}),
	)
	m.scheduleCache = auto.NewCounterVec(
		m.counterOpts("schedule_cache_lookups_total", "Schedule response cache lookups by result"),
		[]string{"result"},
	)

	m.catalogEvents = auto.NewGauge(m.gaugeOpts("catalog_events", "Annotated events currently held by the catalog"))
	m.catalogRefreshes = auto.NewCounterVec(
		m.counterOpts("catalog_refreshes_total", "Catalog refreshes by source and result"),
		[]string{"source", "result"},
	)
	m.catalogRefreshDuration = auto.NewHistogram(
		m.histogramOpts("catalog_refresh_duration_milliseconds", "Catalog refresh duration in milliseconds",
			[]float64{1, 5, 10, 50, 100, 250, 500, 1000, 5000, 10000}),
	)

	m.signalsPublished = auto.NewCounterVec(
		m.counterOpts("signals_published_total", "Broadcast signals published by type"),
		[]string{"type"},
	)
	m.signalSubscribers = auto.NewGauge(m.gaugeOpts("signal_subscribers", "Registered signal subscribers"))

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Allocated heap memory in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordQueryMutation counts a mutation by op ("set", "clear", ...) and
// result ("applied", "rejected", "failed").
func RecordQueryMutation(op, result string) {
	globalManager.queryMutations.WithLabelValues(op, result).Inc()
}

// RecordNavigation counts one navigation.
func RecordNavigation() {
	globalManager.navigations.Inc()
}

// UpdateQueueSize sets the number of pending mutations.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the mutation queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordViewportResolution counts a resolved viewport target.
func RecordViewportResolution(mode, kind string) {
	globalManager.viewportResolutions.WithLabelValues(mode, kind).Inc()
}

// RecordViewportSoftFailure counts a skipped viewport action.
func RecordViewportSoftFailure(reason string) {
	globalManager.viewportSoftFailures.WithLabelValues(reason).Inc()
}

// ObserveActiveFilters records the badge count of one request.
func ObserveActiveFilters(count int) {
	globalManager.activeFilters.Observe(float64(count))
}

// RecordScheduleCacheLookup counts a cache hit or miss.
func RecordScheduleCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.scheduleCache.WithLabelValues(result).Inc()
}

// UpdateCatalogEvents sets the catalog size.
func UpdateCatalogEvents(count int) {
	globalManager.catalogEvents.Set(float64(count))
}

// RecordCatalogRefresh counts a refresh by source and result.
func RecordCatalogRefresh(source, result string) {
	globalManager.catalogRefreshes.WithLabelValues(source, result).Inc()
}

// RecordCatalogRefreshDuration records refresh latency in milliseconds.
func RecordCatalogRefreshDuration(durationMs float64) {
	globalManager.catalogRefreshDuration.Observe(durationMs)
}

// RecordSignalPublished counts a broadcast signal.
func RecordSignalPublished(signalType string) {
	globalManager.signalsPublished.WithLabelValues(signalType).Inc()
}

// UpdateSignalSubscribers sets the number of signal subscribers.
func UpdateSignalSubscribers(count int) {
	globalManager.signalSubscribers.Set(float64(count))
}

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
