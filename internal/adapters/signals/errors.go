package signals

import "errors"

// Sentinel kinds for signal errors.
var (
	ErrUnknownType = errors.New("unknown signal type")
	ErrStopped     = errors.New("signal bus stopped")
)
