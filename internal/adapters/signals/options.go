package signals

import "github.com/okian/plnevents/pkg/logger"

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithBufferSize sets the publish buffer and the per-subscriber buffer.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}
