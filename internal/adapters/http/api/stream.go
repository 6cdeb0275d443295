// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fungoverse/fungo/internal/bus"
	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/pkg/metrics"
)

// StreamDependencies defines the interface for live stream subscriptions.
type StreamDependencies interface {
	Subscribe(fn bus.Handler) bus.CancelFunc
}

// StreamHandler relays published swings to SSE clients.
type StreamHandler struct {
	deps       StreamDependencies
	keepAlive  time.Duration
	bufferSize int
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies, keepAlive time.Duration, bufferSize int) *StreamHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAliveInterval
	}
	if bufferSize <= 0 {
		bufferSize = defaultStreamBufferSize
	}
	return &StreamHandler{deps: deps, keepAlive: keepAlive, bufferSize: bufferSize}
}

// HandleStream handles GET /swings/stream requests. Each connection gets a
// bounded buffer; a slow reader drops events rather than stalling publishers.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind("api.stream", ErrServe))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan model.SwingEvent, h.bufferSize)
	cancel := h.deps.Subscribe(func(e model.SwingEvent) {
		select {
		case events <- e:
		default:
			metrics.RecordStreamDroppedEvent()
		}
	})
	defer cancel()

	metrics.IncStreamConnections()
	defer metrics.DecStreamConnections()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
			metrics.RecordStreamKeepAlive()
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
