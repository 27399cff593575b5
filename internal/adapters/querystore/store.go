// Package querystore keeps the filter state in the URL query. Mutations are
// fire-and-forget: they are queued and applied in call order, each on top
// of the query current at that moment, and each ends in exactly one
// navigation.
package querystore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/plnevents/internal/adapters/mq/queue"
	"github.com/okian/plnevents/internal/adapters/mq/worker"
	"github.com/okian/plnevents/internal/domain/filter"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

const defaultQueueSize = 1024

// NavigateOptions tune a navigation.
type NavigateOptions struct {
	// PreserveScroll keeps the scroll position instead of jumping to top.
	PreserveScroll bool
}

// Router is the hosting router: it exposes the current location and
// performs client-side navigations.
type Router interface {
	Pathname() string
	CurrentQuery() string
	Navigate(ctx context.Context, pathname, query string, opts NavigateOptions) error
}

// Store is the query-state store.
type Store struct {
	router    Router
	queueSize int
	log       logger.Logger
	now       func() time.Time

	queue  *queue.InMemoryQueue
	worker *worker.InMemoryWorker

	mu      sync.Mutex
	started bool
	closed  bool
}

// New creates a store bound to router. Call Start before mutating.
func New(router Router, opts ...Option) *Store {
	s := &Store{
		router:    router,
		queueSize: defaultQueueSize,
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s,
		worker.WithName("query-worker"),
		worker.WithLogger(s.log),
	)
	return s
}

// Start launches the worker that applies mutations.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	go s.worker.Run(ctx)
}

// Close stops accepting mutations, lets the worker drain what is queued
// and waits for it until ctx expires.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	if err := s.queue.Close(); err != nil {
		return fmt.Errorf("close mutation queue: %w", err)
	}
	if !started {
		return nil
	}
	select {
	case <-s.worker.Done():
		return nil
	case <-ctx.Done():
		return s.worker.Shutdown(ctx)
	}
}

// Set merges key=value into the query.
func (s *Store) Set(ctx context.Context, key, value string) {
	s.Apply(ctx, model.Mutation{Op: model.OpSet, Key: key, Value: value})
}

// SetAll merges every pair of record into the query.
func (s *Store) SetAll(ctx context.Context, record map[string]string) {
	s.Apply(ctx, model.Mutation{Op: model.OpSetAll, Record: record})
}

// Clear removes key from the query.
func (s *Store) Clear(ctx context.Context, key string) {
	s.Apply(ctx, model.Mutation{Op: model.OpClear, Key: key})
}

// ClearAll removes every key except viewType.
func (s *Store) ClearAll(ctx context.Context) {
	s.Apply(ctx, model.Mutation{Op: model.OpClearAll})
}

// Toggle adds value to, or removes it from, the set stored under key.
func (s *Store) Toggle(ctx context.Context, key, value string) {
	s.Apply(ctx, model.Mutation{Op: model.OpToggle, Key: key, Value: value})
}

// ToggleSingle selects value for a radio filter, or clears it when it is
// already selected.
func (s *Store) ToggleSingle(ctx context.Context, key, value string) {
	s.Apply(ctx, model.Mutation{Op: model.OpToggleSingle, Key: key, Value: value})
}

// Apply queues m. Invalid mutations and a full or closed queue are logged
// and dropped; nothing escapes to the caller.
func (s *Store) Apply(ctx context.Context, m model.Mutation) { //nolint:gocritic // hugeParam
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordQueryMutation(string(m.Op), "failed")
			s.log.Error(ctx, "query mutation panicked", logger.Any("panic", r))
		}
	}()

	if err := s.submit(ctx, m); err != nil {
		s.log.Warn(ctx, "query mutation dropped",
			logger.String("op", string(m.Op)), logger.String("key", m.Key), logger.Error(err))
	}
}

func (s *Store) submit(ctx context.Context, m model.Mutation) error { //nolint:gocritic // hugeParam
	if err := Validate(m); err != nil {
		metrics.RecordQueryMutation(string(m.Op), "rejected")
		return err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if !s.queue.Enqueue(ctx, m) {
		metrics.RecordQueryMutation(string(m.Op), "rejected")
		if s.queue.IsClosed() {
			return ErrClosed
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return queue.ErrFull
	}
	return nil
}

// Sync waits until every mutation queued before it has been applied.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	done := make(chan struct{})
	if !s.queue.Enqueue(ctx, model.Mutation{ID: uuid.NewString(), Op: model.OpBarrier, Done: done}) {
		if s.queue.IsClosed() {
			return ErrClosed
		}
		return queue.ErrFull
	}
	select {
	case <-done:
		return nil
	case <-s.worker.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query returns the current query. A malformed query is logged and the
// readable part is returned.
func (s *Store) Query(ctx context.Context) filter.Query {
	q, err := filter.ParseQuery(s.router.CurrentQuery())
	if err != nil {
		s.log.Warn(ctx, "malformed query ignored", logger.Error(err))
	}
	return q
}

// State decodes the filter state from the current query.
func (s *Store) State(ctx context.Context) filter.State {
	st, err := filter.Decode(s.Query(ctx), s.now())
	if err != nil {
		s.log.Debug(ctx, "filter values fell back to defaults", logger.Error(err))
	}
	return st
}

// ApplyMutation implements worker.Applier. It runs on the worker goroutine.
func (s *Store) ApplyMutation(ctx context.Context, m model.Mutation) error { //nolint:gocritic // hugeParam
	q := s.Query(ctx)
	if err := mutate(&q, m); err != nil {
		return err
	}
	if err := s.router.Navigate(ctx, s.router.Pathname(), q.Encode(), NavigateOptions{PreserveScroll: true}); err != nil {
		metrics.RecordErrorByComponent("querystore", "navigate")
		return fmt.Errorf("navigate: %w", err)
	}
	metrics.RecordNavigation()
	return nil
}

// Validate reports whether m is a well-formed mutation.
func Validate(m model.Mutation) error { //nolint:gocritic // hugeParam
	switch m.Op {
	case model.OpSet, model.OpToggle, model.OpToggleSingle:
		if m.Key == "" {
			return fmt.Errorf("%w: %s needs a key", ErrInvalidMutation, m.Op)
		}
	case model.OpClear:
		if m.Key == "" {
			return fmt.Errorf("%w: clear needs a key", ErrInvalidMutation)
		}
	case model.OpSetAll:
		if m.Record == nil {
			return fmt.Errorf("%w: setAll needs a record", ErrInvalidMutation)
		}
		for k := range m.Record {
			if k == "" {
				return fmt.Errorf("%w: record with an empty key", ErrInvalidMutation)
			}
		}
	case model.OpClearAll:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidMutation, m.Op)
	}
	return nil
}

func mutate(q *filter.Query, m model.Mutation) error { //nolint:gocritic // hugeParam
	switch m.Op {
	case model.OpSet:
		q.Set(m.Key, m.Value)
	case model.OpSetAll:
		keys := make([]string, 0, len(m.Record))
		for k := range m.Record {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set(k, m.Record[k])
		}
	case model.OpClear:
		q.Del(m.Key)
	case model.OpClearAll:
		view, ok := q.Get(filter.KeyViewType)
		*q = filter.NewQuery()
		if ok {
			q.Set(filter.KeyViewType, view)
		}
	case model.OpToggle:
		current, _ := q.Get(m.Key)
		next := filter.Toggle(filter.SplitSet(current), m.Value)
		if len(next) == 0 {
			q.Del(m.Key)
		} else {
			q.Set(m.Key, filter.JoinSet(next))
		}
	case model.OpToggleSingle:
		current, _ := q.Get(m.Key)
		if next := filter.ToggleSingle(current, m.Value); next == "" {
			q.Del(m.Key)
		} else {
			q.Set(m.Key, next)
		}
	default:
		return errors.Join(ErrInvalidMutation, fmt.Errorf("unknown op %q", m.Op))
	}
	return nil
}
