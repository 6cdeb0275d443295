// Package queue defines the contract for enqueuing and consuming swings
// bound for the leaderboard workers.
//
// The bus path is synchronous and never touches this queue; only swings
// carrying a player_id flow through here.
package queue

import (
	"context"
	"sync"

	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 10_000
)

// Swing is the payload type flowing through the queue.
type Swing = model.SwingEvent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a swing to the queue.
	// Returns false if the queue is full or closed and the swing was not enqueued.
	Enqueue(ctx context.Context, s Swing) bool

	// Dequeue returns a channel that receives swings as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Swing

	// Len returns the current number of queued swings.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new swings
	// can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	swings   chan Swing
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.swings = make(chan Swing, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a swing to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Swing) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.swings <- s:
		metrics.RecordQueueEnqueue()
		size := len(q.swings)
		metrics.UpdateQueueSize(size)
		metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives swings as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Swing {
	out := make(chan Swing)
	go func() {
		defer close(out)
		for s := range q.swings {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				size := len(q.swings)
				metrics.UpdateQueueSize(size)
				metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued swings.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.swings)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.swings)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
