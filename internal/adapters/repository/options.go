package repository

import (
	"slices"

	"github.com/okian/plnevents/pkg/logger"
)

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithEventTypes sets the known event-type enumeration. Event-type filters
// outside it are ignored.
func WithEventTypes(types []string) Option {
	return func(c *Catalog) {
		if len(types) > 0 {
			c.eventTypes = slices.Clone(types)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}
