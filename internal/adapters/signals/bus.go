package signals

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/plnevents/internal/domain/schedule"
	"github.com/okian/plnevents/pkg/logger"
	"github.com/okian/plnevents/pkg/metrics"
)

const defaultBufferSize = 256

// Subscription receives signals until it is cancelled or the bus stops.
type Subscription struct {
	id string
	ch chan Signal
}

// ID identifies the subscription.
func (s *Subscription) ID() string { return s.id }

// C delivers signals. It is closed on Unsubscribe or when the bus stops.
func (s *Subscription) C() <-chan Signal { return s.ch }

// Bus fans signals out to subscribers. Slow subscribers miss signals rather
// than block the bus.
type Bus struct {
	bufferSize int
	log        logger.Logger

	events chan Signal

	mu      sync.RWMutex
	subs    map[string]*Subscription
	stopped bool
	done    chan struct{}
	now     func() time.Time
}

// NewBus creates a bus. Call Run to start delivering.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		bufferSize: defaultBufferSize,
		log:        logger.Nop(),
		subs:       make(map[string]*Subscription),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.Named("signals")
	b.events = make(chan Signal, b.bufferSize)
	return b
}

// Run delivers published signals until ctx is done, then closes every
// subscription.
func (b *Bus) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.stopped = true
			for id, sub := range b.subs {
				close(sub.ch)
				delete(b.subs, id)
			}
			b.mu.Unlock()
			metrics.UpdateSignalSubscribers(0)
			b.log.Info(ctx, "signal bus shut down")
			return

		case sig := <-b.events:
			b.fanOut(ctx, sig)
		}
	}
}

// Done is closed when Run returns.
func (b *Bus) Done() <-chan struct{} { return b.done }

func (b *Bus) fanOut(ctx context.Context, sig Signal) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- sig:
		default:
			b.log.Warn(ctx, "subscriber buffer full, signal skipped",
				logger.String("subscription", sub.id), logger.String("type", string(sig.Type)))
		}
	}
	b.log.Debug(ctx, "signal broadcast", logger.String("type", string(sig.Type)), logger.Int("subscribers", len(b.subs)))
}

// Publish broadcasts a signal of type t. It never blocks; when the buffer
// is full or the bus has stopped the signal is dropped.
func (b *Bus) Publish(ctx context.Context, t Type, data any) error {
	switch t {
	case TypeFilterPanelToggled, TypeEventSelected:
	default:
		return ErrUnknownType
	}

	b.mu.RLock()
	stopped := b.stopped
	b.mu.RUnlock()
	if stopped {
		return ErrStopped
	}

	sig := Signal{ID: uuid.NewString(), Type: t, Timestamp: b.now(), Data: data}
	select {
	case b.events <- sig:
		metrics.RecordSignalPublished(string(t))
	default:
		b.log.Warn(ctx, "signal buffer full, signal dropped", logger.String("type", string(t)))
	}
	return nil
}

// FilterPanelToggled publishes the panel state.
func (b *Bus) FilterPanelToggled(ctx context.Context, isOpen bool) error {
	return b.Publish(ctx, TypeFilterPanelToggled, FilterPanelToggled{IsOpen: isOpen})
}

// EventActivated publishes a calendar click as EventSelected. Its shape
// matches CalendarAdapter.OnEventActivated.
func (b *Bus) EventActivated(a schedule.EventActivation) {
	ctx := context.Background()
	if err := b.Publish(ctx, TypeEventSelected, EventSelected{Event: a.Event}); err != nil {
		b.log.Debug(ctx, "event selection not published", logger.String("slug", a.Slug), logger.Error(err))
	}
}

// Subscribe registers a new subscription.
func (b *Bus) Subscribe() (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrStopped
	}
	sub := &Subscription{id: uuid.NewString(), ch: make(chan Signal, b.bufferSize)}
	b.subs[sub.id] = sub
	metrics.UpdateSignalSubscribers(len(b.subs))
	return sub, nil
}

// Unsubscribe removes sub and closes its channel. Unknown or already
// removed subscriptions are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
	metrics.UpdateSignalSubscribers(len(b.subs))
}

// SubscriberCount returns the number of subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
