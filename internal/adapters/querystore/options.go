package querystore

import (
	"time"

	"github.com/okian/plnevents/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithQueueSize sets how many mutations may be pending.
func WithQueueSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the clock used to decode the filter state.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
