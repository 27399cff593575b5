// Package router is an in-memory stand-in for the browser router: it holds
// the current location and records every navigation.
package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/plnevents/internal/adapters/querystore"
)

const defaultHistoryLimit = 256

// Entry is one navigation.
type Entry struct {
	Pathname       string    `json:"pathname"`
	Query          string    `json:"query"`
	PreserveScroll bool      `json:"preserveScroll"`
	At             time.Time `json:"at"`
}

// URL renders the entry as pathname?query.
func (e Entry) URL() string {
	return join(e.Pathname, e.Query)
}

// Option configures a Router.
type Option func(*Router)

// WithHistoryLimit caps the recorded history.
func WithHistoryLimit(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithListener registers fn to be called after every navigation.
func WithListener(fn func(Entry)) Option {
	return func(r *Router) {
		if fn != nil {
			r.listeners = append(r.listeners, fn)
		}
	}
}

// Router implements querystore.Router with replace semantics.
type Router struct {
	mu        sync.RWMutex
	pathname  string
	query     string
	history   []Entry
	limit     int
	listeners []func(Entry)
}

var _ querystore.Router = (*Router)(nil)

// New creates a router at pathname?query. A leading '?' on query is
// ignored.
func New(pathname, query string, opts ...Option) *Router {
	r := &Router{
		pathname: pathname,
		query:    strings.TrimPrefix(query, "?"),
		limit:    defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pathname returns the current path.
func (r *Router) Pathname() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pathname
}

// CurrentQuery returns the current query without the leading '?'.
func (r *Router) CurrentQuery() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.query
}

// URL returns pathname?query, or just pathname when the query is empty.
func (r *Router) URL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return join(r.pathname, r.query)
}

// Navigate replaces the current location.
func (r *Router) Navigate(ctx context.Context, pathname, query string, opts querystore.NavigateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := Entry{
		Pathname:       pathname,
		Query:          strings.TrimPrefix(query, "?"),
		PreserveScroll: opts.PreserveScroll,
		At:             time.Now(),
	}

	r.mu.Lock()
	r.pathname = e.Pathname
	r.query = e.Query
	r.history = append(r.history, e)
	if len(r.history) > r.limit {
		r.history = r.history[len(r.history)-r.limit:]
	}
	listeners := r.listeners
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
	return nil
}

// History returns the recorded navigations, oldest first.
func (r *Router) History() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.history))
	copy(out, r.history)
	return out
}

func join(pathname, query string) string {
	if query == "" {
		return pathname
	}
	return pathname + "?" + query
}
