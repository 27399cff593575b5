// Package worker applies queued query mutations one at a time.
package worker

import (
	"context"
	"fmt"

	"github.com/okian/plnevents/internal/adapters/mq/queue"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

// Mutation is what workers read off the queue.
type Mutation = queue.Mutation

// Applier applies one mutation on top of the current query.
type Applier interface {
	ApplyMutation(ctx context.Context, m Mutation) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, m Mutation) error

// ApplyMutation calls f.
func (f ApplierFunc) ApplyMutation(ctx context.Context, m Mutation) error { //nolint:gocritic // hugeParam
	return f(ctx, m)
}

// Queue defines how workers receive mutations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Mutation
}

// Worker processes mutations.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of a mutation queue, so mutations
// are applied strictly in enqueue order.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	mutations := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case m, ok := <-mutations:
			if !ok {
				return
			}
			if err := w.process(ctx, m); err != nil {
				w.logger.Error(ctx, "error applying mutation", logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// Shutdown stops the worker and waits for the loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process applies one mutation. Panics in the applier are recovered so one
// bad mutation never stops the loop.
func (w *InMemoryWorker) process(ctx context.Context, m Mutation) (err error) { //nolint:gocritic // hugeParam
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mutation %s panicked: %v", m.ID, r)
		}
		result := "applied"
		if err != nil {
			result = "failed"
			metrics.RecordErrorByComponent("worker", string(m.Op))
		}
		if m.Op != model.OpBarrier {
			metrics.RecordQueryMutation(string(m.Op), result)
		}
		if m.Done != nil {
			close(m.Done)
		}
	}()

	if m.Op == model.OpBarrier {
		return nil
	}
	if err := w.applier.ApplyMutation(ctx, m); err != nil {
		return fmt.Errorf("mutation %s (%s): %w", m.ID, m.Op, err)
	}
	return nil
}
