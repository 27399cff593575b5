package service

import (
	"slices"
	"time"

	"github.com/okian/plnevents/internal/adapters/source"
	"github.com/okian/plnevents/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the display zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPathname sets the page path mutations navigate on.
func WithPathname(p string) Option {
	return func(s *Service) {
		if p != "" {
			s.pathname = p
		}
	}
}

// WithQueueSize sets the mutation queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithEventTypes sets the known event-type enumeration.
func WithEventTypes(types []string) Option {
	return func(s *Service) {
		if len(types) > 0 {
			s.eventTypes = slices.Clone(types)
		}
	}
}

// WithBannerOffset sets the scroll offset used while the banner shows.
func WithBannerOffset(px int) Option {
	return func(s *Service) {
		if px >= 0 {
			s.bannerOffset = px
		}
	}
}

// WithRevealDelay sets the panel reveal delay.
func WithRevealDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.revealDelay = d
		}
	}
}

// WithCacheTTL sets how long schedule views are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithSignalBufferSize bounds the signal bus buffers.
func WithSignalBufferSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.signalBuffer = n
		}
	}
}

// WithCatalogFile loads the CMS export at path.
func WithCatalogFile(path string) Option {
	return func(s *Service) { s.catalogFile = path }
}

// WithICSFeeds merges the given ICS feeds into the catalog.
func WithICSFeeds(urls []string) Option {
	return func(s *Service) { s.icsFeeds = slices.Clone(urls) }
}

// WithRefreshSchedule sets the cron expression for catalog refreshes.
func WithRefreshSchedule(spec string) Option {
	return func(s *Service) { s.refreshCron = spec }
}

// WithLoaders replaces the loaders built from the catalog file and feeds.
func WithLoaders(loaders ...source.Loader) Option {
	return func(s *Service) { s.loaders = loaders }
}
