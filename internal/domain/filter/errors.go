package filter

import "errors"

// Sentinel kinds for filter errors.
var (
	ErrMalformedQuery = errors.New("malformed query")
	ErrMalformedValue = errors.New("malformed filter value")
	ErrMalformedDate  = errors.New("malformed date")
)
