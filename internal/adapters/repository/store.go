// Package repository holds the annotated event catalog and answers filter
// queries against it.
package repository

import (
	"context"

	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/internal/domain/types"
)

// Facets lists the values a filter panel can offer.
type Facets = types.Facets

// Store provides read/write access to the event catalog.
type Store interface {
	// Replace swaps the whole catalog and returns the new version.
	Replace(ctx context.Context, events []model.AnnotatedEvent) uint64

	// Match returns the events selected by s, ordered by start then name.
	Match(ctx context.Context, s filter.State) []model.AnnotatedEvent

	// BySlug returns one event. Returns ErrNotFound if the slug is unknown.
	BySlug(ctx context.Context, slug string) (model.AnnotatedEvent, error)

	// Facets returns the filter values present in the catalog.
	Facets(ctx context.Context) Facets

	// Version changes on every Replace.
	Version() uint64

	// Count returns the number of events.
	Count(ctx context.Context) int
}
