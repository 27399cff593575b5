// Package source loads raw events from the CMS export and from ICS feeds
// and keeps the catalog refreshed.
package source

import (
	"context"
	"time"

	"github.com/okian/plnevents/internal/domain/model"
)

// Loader produces raw events.
type Loader interface {
	// Name identifies the loader in logs and metrics.
	Name() string
	Load(ctx context.Context) ([]model.Event, error)
}

// Window bounds recurrence expansion.
type Window struct {
	Start time.Time
	End   time.Time
}

// YearWindow covers the year before and the year after now's year, which
// is the range the year filter can reasonably select.
func YearWindow(now time.Time) Window {
	loc := now.Location()
	return Window{
		Start: time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc),
		End:   time.Date(now.Year()+2, time.January, 1, 0, 0, 0, 0, loc),
	}
}
