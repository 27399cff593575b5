package querystore

import "errors"

// Sentinel kinds for query store errors.
var (
	ErrInvalidMutation = errors.New("invalid query mutation")
	ErrNotStarted      = errors.New("query store not started")
	ErrClosed          = errors.New("query store closed")
)
