package testswings

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
)

// streamWatcher counts swings delivered over the live SSE stream while the
// submission stage runs, so the test can confirm fan-out actually happened.
type streamWatcher struct {
	delivered int64
	cancel    context.CancelFunc
	done      chan struct{}
}

// watchStream opens the SSE stream and counts data frames until stopped.
// The connection deliberately has no client timeout; SSE is long-lived.
func watchStream(ctx context.Context, config *Config) (*streamWatcher, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	url := config.BaseURL + "/swings/stream"
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}
	if resp.StatusCode != StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("stream returned HTTP %d", resp.StatusCode)
	}

	w := &streamWatcher{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			// Keep-alive comments start with ':', data frames with "data:"
			if strings.HasPrefix(line, "data:") {
				atomic.AddInt64(&w.delivered, 1)
			}
		}
	}()

	log.Printf("📡 Watching live stream at %s", url)
	return w, nil
}

// Stop closes the stream connection and waits for the reader to drain.
func (w *streamWatcher) Stop() int {
	w.cancel()
	<-w.done
	return int(atomic.LoadInt64(&w.delivered))
}

// Delivered returns the running count of data frames seen so far.
func (w *streamWatcher) Delivered() int {
	return int(atomic.LoadInt64(&w.delivered))
}
