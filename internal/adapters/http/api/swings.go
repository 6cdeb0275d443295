// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fungoverse/fungo/internal/domain/dedupe"
	"github.com/fungoverse/fungo/internal/domain/model"
	"github.com/fungoverse/fungo/internal/domain/physics"
	"github.com/fungoverse/fungo/internal/domain/universe"
	"github.com/fungoverse/fungo/pkg/metrics"
)

// SwingDependencies defines the interface for swing ingestion dependencies.
type SwingDependencies interface {
	dedupe.Deduper
	Publish(ctx context.Context, e model.SwingEvent)
	Enqueue(ctx context.Context, e model.SwingEvent) bool
}

// SwingsHandler handles swing submissions.
type SwingsHandler struct {
	deps SwingDependencies
}

// NewSwingsHandler creates a new swings handler.
func NewSwingsHandler(deps SwingDependencies) *SwingsHandler {
	return &SwingsHandler{deps: deps}
}

// HandlePostSwing handles POST /swings requests. The payload schema is open:
// the three required sensor metrics are validated, every other field rides
// along untouched to stream subscribers.
func (h *SwingsHandler) HandlePostSwing(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_swing"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.RecordSwingRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	e, missing := model.FromPayload(payload)
	if len(missing) > 0 {
		metrics.RecordSwingRejected()
		err := WrapKind(op, ErrBadRequest, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "missing_fields",
			Message: err.Error(),
			Fields:  missing,
		})
		return
	}

	// Idempotency: producer-supplied ids are checked, absent ids are minted.
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	} else if h.deps.SeenAndRecord(r.Context(), e.EventID) {
		metrics.RecordSwingDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, EventID: e.EventID})
		return
	}

	derived := deriveSwing(e)
	metrics.RecordSwingDistance(derived.DistanceFt)

	// Fan out to live stream subscribers before the async leaderboard path;
	// stream consumers see every swing whether or not a player is attached.
	h.deps.Publish(r.Context(), e)

	if e.PlayerID != "" {
		if ok := h.deps.Enqueue(r.Context(), e); !ok {
			// Rollback the "seen" status since enqueue failed
			h.deps.Unrecord(r.Context(), e.EventID)
			metrics.RecordSwingRejected()
			writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
			return
		}
	}
	metrics.RecordSwingIngested()
	writeJSON(w, http.StatusAccepted, ackResponse{
		Status:    "accepted",
		Duplicate: false,
		EventID:   e.EventID,
		Derived:   &derived,
	})
}

// deriveSwing computes the projected carry and coaching readout for a swing.
func deriveSwing(e model.SwingEvent) derivedSwing {
	dist := physics.Distance(e.BatSpeedMPH, e.AttackAngleDeg)
	zone := universe.ZoneFor(dist)
	return derivedSwing{
		DistanceFt:     dist,
		Label:          physics.Classify(e.AttackAngleDeg, e.BatSpeedMPH),
		Zone:           zone.Name,
		Milestone:      zone.Milestone,
		ProgressToNext: universe.ProgressToNext(dist),
		Feedback:       physics.VelocityFeedback(e.BatSpeedMPH),
	}
}
