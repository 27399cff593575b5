package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Query is a flat key -> value map that remembers insertion order, the way a
// browser's URLSearchParams does. Each key holds at most one value.
type Query struct {
	keys []string
	vals map[string]string
}

// NewQuery returns an empty query.
func NewQuery() Query {
	return Query{vals: make(map[string]string)}
}

// ParseQuery parses a raw query string, with or without the leading '?'.
// Pairs that cannot be unescaped are skipped and reported in the returned
// error; everything else is kept, so the result is always usable. Repeated
// keys keep their first value.
func ParseQuery(raw string) (Query, error) {
	q := NewQuery()
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	if raw == "" {
		return q, nil
	}

	var errs []error
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: key %q: %w", ErrMalformedQuery, k, err))
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: value of %q: %w", ErrMalformedQuery, key, err))
			continue
		}
		if key == "" {
			continue
		}
		if _, seen := q.vals[key]; seen {
			continue
		}
		q.Set(key, val)
	}
	return q, errors.Join(errs...)
}

// Get returns the value stored for key.
func (q Query) Get(key string) (string, bool) {
	v, ok := q.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (q Query) Has(key string) bool {
	_, ok := q.vals[key]
	return ok
}

// Set stores value under key. Existing keys keep their position; new keys
// are appended.
func (q *Query) Set(key, value string) {
	if q.vals == nil {
		q.vals = make(map[string]string)
	}
	if _, ok := q.vals[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.vals[key] = value
}

// Del removes key.
func (q *Query) Del(key string) {
	if _, ok := q.vals[key]; !ok {
		return
	}
	delete(q.vals, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i:i], q.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (q Query) Keys() []string {
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

// Len returns the number of keys.
func (q Query) Len() int {
	return len(q.keys)
}

// Clone returns an independent copy.
func (q Query) Clone() Query {
	c := Query{keys: q.Keys(), vals: make(map[string]string, len(q.vals))}
	for k, v := range q.vals {
		c.vals[k] = v
	}
	return c
}

// Encode renders the query without the leading '?'.
func (q Query) Encode() string {
	var b strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.vals[k]))
	}
	return b.String()
}

// String renders the query with the leading '?', or "" when empty.
func (q Query) String() string {
	if len(q.keys) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
