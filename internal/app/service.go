// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"

	swingqueue "github.com/fungoverse/fungo/internal/adapters/mq/queue"
	workerpool "github.com/fungoverse/fungo/internal/adapters/mq/worker"
	repository "github.com/fungoverse/fungo/internal/adapters/repository"
	"github.com/fungoverse/fungo/internal/bus"
	"github.com/fungoverse/fungo/internal/domain/dedupe"
	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/internal/domain/physics"
	"github.com/fungoverse/fungo/internal/domain/types"
	"github.com/fungoverse/fungo/pkg/logger"
	"github.com/fungoverse/fungo/pkg/metrics"
)

// physicsMeasurer adapts the pure physics functions to worker.Measurer.
type physicsMeasurer struct{}

func (physicsMeasurer) Measure(_ context.Context, batSpeedMPH, attackAngleDeg float64) (float64, string, error) {
	return physics.Distance(batSpeedMPH, attackAngleDeg), physics.Classify(attackAngleDeg, batSpeedMPH), nil
}

// Service wires the bus, queue, workers and leaderboard store together and
// implements the API dependencies. The bus lives exactly as long as the
// Service: constructed in Start, referenced nowhere else.
type Service struct {
	mu sync.RWMutex

	// Core components
	swingBus    *bus.Bus
	leaderboard repository.Store
	deduper     dedupe.Deduper
	swingQueue  swingqueue.Queue
	workerPool  *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the swing queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  50_000,
		logger:      nil, // set in Start when not injected
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting swing service...")

	s.swingBus = bus.New(bus.WithLogger(s.logger.Named("bus")))
	s.leaderboard = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.swingQueue = swingqueue.NewInMemoryQueue(
		swingqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.swingQueue, physicsMeasurer{}, s.leaderboard)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "swing service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping swing service...")

	if s.swingQueue != nil {
		_ = s.swingQueue.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "swing service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if not.
// Returns true if the event was already seen, false if it was newly recorded.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSwingDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Publish fans a swing event out to every live stream subscriber.
func (s *Service) Publish(ctx context.Context, e model.SwingEvent) {
	s.swingBus.Publish(ctx, e)
}

// Subscribe registers a delivery callback for future swing events.
func (s *Service) Subscribe(fn bus.Handler) bus.CancelFunc {
	return s.swingBus.Subscribe(fn)
}

// Enqueue submits a swing for asynchronous leaderboard processing.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, e model.SwingEvent) bool {
	ok := s.swingQueue.Enqueue(ctx, e)
	if !ok {
		s.logger.Warn(ctx, "swing queue rejected event",
			logger.String("event_id", e.EventID),
			logger.String("player_id", e.PlayerID),
		)
	}
	return ok
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.leaderboard.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = types.Entry{
			Rank:       entry.Rank,
			PlayerID:   entry.PlayerID,
			DistanceFt: entry.DistanceFt,
		}
	}

	return apiEntries, nil
}

// Rank returns the rank and best distance for a given player id.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	entry, err := s.leaderboard.Rank(ctx, playerID)
	if err != nil {
		return types.Entry{}, err
	}

	return types.Entry{
		Rank:       entry.Rank,
		PlayerID:   entry.PlayerID,
		DistanceFt: entry.DistanceFt,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.swingQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["totalPlayers"] = s.leaderboard.Count(ctx)
		stats["subscribers"] = s.swingBus.Count()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
