package schedule

import "errors"

// Sentinel errors of the schedule view.
var (
	ErrCalendarNotReady = errors.New("calendar not ready")
	ErrViewportNotReady = errors.New("viewport not ready")
	ErrAnchorNotFound   = errors.New("anchor not found")
)
