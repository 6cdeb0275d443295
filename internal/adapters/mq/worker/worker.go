// Package worker defines worker contracts for asynchronous leaderboard updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/fungoverse/fungo/internal/adapters/mq/queue"
	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/pkg/logger"
	"github.com/fungoverse/fungo/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Swing abstracts what workers read off the queue.
type Swing = model.SwingEvent

// Measurer turns raw swing metrics into a travel distance and a quality label.
type Measurer interface {
	Measure(ctx context.Context, batSpeedMPH, attackAngleDeg float64) (distanceFt float64, label string, err error)
}

// Updater records a player's best distance when improved.
type Updater interface {
	UpdateBest(ctx context.Context, playerID string, distanceFt float64, eventID, label string) (bool, error)
}

// Queue defines how workers receive swings.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Swing
}

// Worker processes swings and writes leaderboard updates using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing swings.
type InMemoryWorker struct {
	queue    Queue
	measurer Measurer
	updater  Updater
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, measurer Measurer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		measurer: measurer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	swings := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-swings:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			if err := w.processSwing(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing swing", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processSwing recomputes derived state for one swing and updates the
// leaderboard. The computation is pure, so redoing work the ingest handler
// already did is cheaper than carrying derived state on the queue.
func (w *InMemoryWorker) processSwing(ctx context.Context, s Swing) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	distance, label, err := w.measurer.Measure(ctx, s.BatSpeedMPH, s.AttackAngleDeg)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "measure_error")
		w.logger.Error(ctx, "distance computation failed",
			logger.String("event_id", s.EventID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to measure swing %s: %w", s.EventID, err)
	}

	updated, err := w.updater.UpdateBest(ctx, s.PlayerID, distance, s.EventID, label)
	if err != nil {
		metrics.RecordLeaderboardError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		w.logger.Error(ctx, "leaderboard update failed",
			logger.String("event_id", s.EventID),
			logger.String("player_id", s.PlayerID),
			logger.Error(err),
		)
		return fmt.Errorf("leaderboard update failed: %w", err)
	}

	if updated {
		metrics.RecordLeaderboardUpdate()
	}

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, measurer Measurer, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			measurer,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so no new swings arrive.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
