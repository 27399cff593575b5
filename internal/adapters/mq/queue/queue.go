// Package queue carries query mutations from callers to the worker that
// applies them.
//
// The queue is FIFO; with a single consumer mutations are applied in the
// order they were enqueued.
package queue

import (
	"context"
	"sync"

	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Mutation is the payload flowing through the queue.
type Mutation = model.Mutation

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a mutation. It returns false when the queue is full or
	// closed.
	Enqueue(ctx context.Context, m Mutation) bool

	// Dequeue returns a channel receiving mutations in order. The channel
	// is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Mutation

	// Len returns the number of pending mutations.
	Len(ctx context.Context) int

	// Close stops accepting mutations.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	mutations chan Mutation
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.mutations = make(chan Mutation, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a mutation to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Mutation) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	}

	select {
	case q.mutations <- m:
		metrics.UpdateQueueSize(len(q.mutations))
		return true
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives mutations as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Mutation {
	out := make(chan Mutation)
	go func() {
		defer close(out)
		for m := range q.mutations {
			select {
			case out <- m:
				metrics.UpdateQueueSize(len(q.mutations))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending mutations.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.mutations)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting mutations. Pending ones are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.mutations)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
