// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Pathname is the page path the query-state store navigates to.
	Pathname string `koanf:"pathname"`

	// Timezone is the IANA zone used for events without their own zone and
	// for "now" when resolving viewport targets.
	Timezone string `koanf:"timezone"`

	// MutationQueueSize bounds the in-memory query mutation queue.
	MutationQueueSize int `koanf:"mutation_queue_size"`

	// CatalogFile is an optional YAML export of the event catalog.
	CatalogFile string `koanf:"catalog_file"`

	// ICSFeeds lists ICS subscription URLs merged into the catalog.
	ICSFeeds []string `koanf:"ics_feeds"`

	// RefreshCron is the cron schedule for catalog refreshes. Empty disables
	// periodic refresh.
	RefreshCron string `koanf:"refresh_cron"`

	// EventTypes is the known event-type enumeration; eventType values outside
	// it are not treated as filters.
	EventTypes []string `koanf:"event_types"`

	// BannerOffset is the top offset in pixels applied to scroll targets while
	// the announcement banner is visible.
	BannerOffset int `koanf:"banner_offset"`

	// RevealDelayMS is the delay before measuring an expanded filter panel.
	RevealDelayMS int `koanf:"reveal_delay_ms"`

	// ScheduleCacheTTLSeconds controls how long schedule responses are cached.
	ScheduleCacheTTLSeconds int `koanf:"schedule_cache_ttl_seconds"`

	// SignalBufferSize bounds the broadcast signal channel.
	SignalBufferSize int `koanf:"signal_buffer_size"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		Pathname:                "/events",
		Timezone:                "UTC",
		MutationQueueSize:       1024,
		RefreshCron:             "*/15 * * * *",
		EventTypes:              []string{"conference", "hackathon", "meetup", "workshop", "virtual"},
		BannerOffset:            64,
		RevealDelayMS:           50,
		ScheduleCacheTTLSeconds: 30,
		SignalBufferSize:        256,
	}
}
