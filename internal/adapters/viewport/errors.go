package viewport

import "errors"

// Sentinel kinds for page errors.
var (
	ErrMonthOutOfRange = errors.New("month index out of range")
	ErrUnknownEvent    = errors.New("event not on the calendar")
)
