package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrEmptyBody    = errors.New("empty calendar body")
	ErrFetch        = errors.New("fetch failed")
	ErrInvalidEvent = errors.New("invalid event")
	ErrBadWindow    = errors.New("window end is before start")
)
