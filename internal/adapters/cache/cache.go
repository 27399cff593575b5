// Package cache keeps rendered schedule views for a short while. Entries
// are keyed by catalog version and canonical query, so a catalog refresh
// never serves a stale view.
package cache

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/okian/plnevents/internal/domain/types"
	"github.com/okian/plnevents/pkg/metrics"
)

const defaultTTL = 30 * time.Second

// ScheduleCache wraps go-cache for schedule views.
type ScheduleCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries live for ttl. A non-positive ttl uses
// the default.
func New(ttl time.Duration) *ScheduleCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ScheduleCache{store: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// Key builds the cache key of a canonical query at a catalog version.
func Key(version uint64, canonicalQuery string) string {
	return strconv.FormatUint(version, 10) + "|" + canonicalQuery
}

// Get returns the view stored for key.
func (c *ScheduleCache) Get(key string) (types.ScheduleView, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		metrics.RecordScheduleCacheLookup(false)
		return types.ScheduleView{}, false
	}
	view, ok := v.(types.ScheduleView)
	metrics.RecordScheduleCacheLookup(ok)
	return view, ok
}

// Set stores view under key with the default TTL.
func (c *ScheduleCache) Set(key string, view types.ScheduleView) {
	c.store.Set(key, view, gocache.DefaultExpiration)
}

// SetWithTTL stores view under key for ttl.
func (c *ScheduleCache) SetWithTTL(key string, view types.ScheduleView, ttl time.Duration) {
	c.store.Set(key, view, ttl)
}

// Flush drops every entry.
func (c *ScheduleCache) Flush() { c.store.Flush() }

// ItemCount returns the number of entries, expired ones included until
// the janitor runs.
func (c *ScheduleCache) ItemCount() int { return c.store.ItemCount() }

// TTL returns the default entry lifetime.
func (c *ScheduleCache) TTL() time.Duration { return c.ttl }
