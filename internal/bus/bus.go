// Package bus provides process-wide publish/subscribe fan-out of swing
// events. Producers (the ingest endpoint) are decoupled from consumers
// (live stream connections): Publish delivers synchronously to every
// handler registered at call entry and forgets the event immediately.
// There is no buffering, no replay and no persistence; a consumer that
// subscribes after an event was published never sees it.
package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/pkg/logger"
	"github.com/fungoverse/fungo/pkg/metrics"
)

// Handler receives one swing event per Publish call. Handlers run on the
// publisher's goroutine and must not block; stream connections hand off to
// a buffered channel and drop when it is full.
type Handler func(e model.SwingEvent)

// CancelFunc removes a subscription. Safe to call more than once; calls
// after the first are no-ops.
type CancelFunc func()

// subscriber pairs a handler with a tombstone so a cancel racing an
// in-flight publish still wins for deliveries that have not started.
type subscriber struct {
	fn        Handler
	cancelled atomic.Bool
}

// Bus is the process-wide swing event register. Construct one in the app
// wiring and inject it; the zero value is not usable.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscriber
	logger logger.Logger
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithLogger sets a custom logger for the bus.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New constructs an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Get().Named("bus")
	}
	return b
}

// Subscribe registers fn to receive every event published after this call
// and before the returned cancel runs. Registration order is preserved
// across a single Publish. The cancel is idempotent.
func (b *Bus) Subscribe(fn Handler) CancelFunc {
	s := &subscriber{fn: fn}

	b.mu.Lock()
	b.subs = append(b.subs, s)
	n := len(b.subs)
	b.mu.Unlock()
	metrics.UpdateBusSubscriberCount(n)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.cancelled.Store(true)
			b.mu.Lock()
			for i, cur := range b.subs {
				if cur == s {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					break
				}
			}
			n := len(b.subs)
			b.mu.Unlock()
			metrics.UpdateBusSubscriberCount(n)
		})
	}
}

// Publish delivers e to every subscriber registered at call entry, in
// registration order, before returning. A subscriber cancelled while the
// fan-out is in flight is skipped if its delivery has not started yet
// (cancel wins). A panicking handler is recovered and logged; it never
// prevents delivery to the remaining subscribers or reaches the caller.
func (b *Bus) Publish(ctx context.Context, e model.SwingEvent) {
	b.mu.RLock()
	snapshot := make([]*subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		if s.cancelled.Load() {
			continue
		}
		b.deliver(ctx, s, e)
	}
	metrics.RecordBusPublish()
}

// deliver invokes one handler, containing any panic it raises.
func (b *Bus) deliver(ctx context.Context, s *subscriber, e model.SwingEvent) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordBusDeliveryPanic()
			b.logger.Error(ctx, "subscriber panicked during delivery",
				logger.Any("panic", r),
				logger.String("event_id", e.EventID),
			)
		}
	}()
	s.fn(e)
	metrics.RecordBusDelivery()
}

// Count returns the number of active subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
