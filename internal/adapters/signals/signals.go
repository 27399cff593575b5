// Package signals broadcasts UI signals (filter panel toggles, calendar
// event selections) to whoever is listening. Publishers never learn who,
// if anyone, received a signal.
package signals

import (
	"time"

	"github.com/okian/plnevents/internal/domain/model"
)

// Type names a signal.
type Type string

// Signal types.
const (
	TypeFilterPanelToggled Type = "filter-panel-toggled"
	TypeEventSelected      Type = "event-selected"
)

// Signal is one broadcast message.
type Signal struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// FilterPanelToggled reports the filter panel opening or closing.
type FilterPanelToggled struct {
	IsOpen bool `json:"isOpen"`
}

// EventSelected reports an event picked in the calendar.
type EventSelected struct {
	Event model.AnnotatedEvent `json:"event"`
}
