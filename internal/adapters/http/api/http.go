// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fungoverse/fungo/internal/adapters/repository"
	"github.com/fungoverse/fungo/internal/bus"
	"github.com/fungoverse/fungo/internal/domain/dedupe"
	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/internal/domain/types"
)

// Defaults applied when the server is constructed without options.
const (
	defaultKeepAliveInterval = 20 * time.Second
	defaultStreamBufferSize  = 16
	defaultMaxLimit          = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Publish fans a swing out to live stream subscribers synchronously.
	Publish(ctx context.Context, e model.SwingEvent)

	// Subscribe registers a stream consumer and returns its cancel func.
	Subscribe(fn bus.Handler) bus.CancelFunc

	// Enqueue pushes a swing for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.SwingEvent) bool

	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, playerID string) (Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the swing API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	swingsHandler      *SwingsHandler
	streamHandler      *StreamHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler

	keepAliveInterval time.Duration
	streamBufferSize  int
	maxLimit          int
}

// Option customizes server construction.
type Option func(*Server)

// WithKeepAliveInterval sets the SSE keep-alive comment cadence.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.keepAliveInterval = d
		}
	}
}

// WithStreamBufferSize sets the per-connection stream buffer depth.
func WithStreamBufferSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.streamBufferSize = n
		}
	}
}

// WithMaxLeaderboardLimit caps the limit parameter on leaderboard queries.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		keepAliveInterval: defaultKeepAliveInterval,
		streamBufferSize:  defaultStreamBufferSize,
		maxLimit:          defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.swingsHandler = NewSwingsHandler(deps)
	s.streamHandler = NewStreamHandler(deps, s.keepAliveInterval, s.streamBufferSize)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit)
	s.rankHandler = NewRankHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/swings/stream", MetricsMiddleware(s.streamHandler.HandleStream, "swings_stream"))
	mux.HandleFunc("/swings", MetricsMiddleware(s.swingsHandler.HandlePostSwing, "swings"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

type ackResponse struct {
	Status    string        `json:"status"`
	Duplicate bool          `json:"duplicate"`
	EventID   string        `json:"event_id"`
	Derived   *derivedSwing `json:"derived,omitempty"`
}

// derivedSwing carries everything the service computes from a raw swing.
type derivedSwing struct {
	DistanceFt     float64 `json:"distance_ft"`
	Label          string  `json:"label"`
	Zone           string  `json:"zone"`
	Milestone      string  `json:"milestone"`
	ProgressToNext float64 `json:"progress_to_next"`
	Feedback       string  `json:"feedback"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// NewKind tags a sentinel with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags a sentinel and the underlying cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap annotates an error with the operation that raised it.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
