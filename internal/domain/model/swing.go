// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"sort"
)

// Required payload keys for a swing submission. Producers (the Bluetooth
// connector relay, the pose-analysis backfill) must supply all three.
const (
	FieldBatSpeed    = "bat_speed_mph"
	FieldAttackAngle = "attack_angle_deg"
	FieldOmegaPeak   = "omega_peak_dps"
)

// RequiredFields lists the payload keys every swing must carry.
var RequiredFields = []string{FieldBatSpeed, FieldAttackAngle, FieldOmegaPeak}

// SwingEvent represents one detected swing. The schema is intentionally
// open: the three required metrics are typed, everything else the producer
// sent rides along in Extra and is relayed to stream consumers verbatim.
type SwingEvent struct {
	EventID        string  // unique id for idempotency; generated when absent
	PlayerID       string  // optional; enables leaderboard persistence
	BatSpeedMPH    float64 // peak bat speed
	AttackAngleDeg float64 // attack angle at contact
	OmegaPeakDPS   float64 // peak angular velocity

	// Extra holds every other payload field, keyed as received.
	Extra map[string]any
}

// FromPayload builds a SwingEvent from a decoded JSON object. The second
// return value lists required field names that were absent or non-numeric;
// the event is only valid when that list is empty.
func FromPayload(payload map[string]any) (SwingEvent, []string) {
	var e SwingEvent
	var missing []string

	get := func(key string) (float64, bool) {
		v, ok := payload[key]
		if !ok {
			return 0, false
		}
		f, ok := v.(float64)
		return f, ok
	}

	if v, ok := get(FieldBatSpeed); ok {
		e.BatSpeedMPH = v
	} else {
		missing = append(missing, FieldBatSpeed)
	}
	if v, ok := get(FieldAttackAngle); ok {
		e.AttackAngleDeg = v
	} else {
		missing = append(missing, FieldAttackAngle)
	}
	if v, ok := get(FieldOmegaPeak); ok {
		e.OmegaPeakDPS = v
	} else {
		missing = append(missing, FieldOmegaPeak)
	}
	if missing != nil {
		sort.Strings(missing)
		return SwingEvent{}, missing
	}

	if id, ok := payload["event_id"].(string); ok {
		e.EventID = id
	}
	if id, ok := payload["player_id"].(string); ok {
		e.PlayerID = id
	}

	for k, v := range payload {
		switch k {
		case FieldBatSpeed, FieldAttackAngle, FieldOmegaPeak, "event_id", "player_id":
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]any)
		}
		e.Extra[k] = v
	}
	return e, nil
}

// Payload reassembles the full wire shape, required fields plus Extra,
// so that stream relays preserve every producer-supplied key.
func (e SwingEvent) Payload() map[string]any {
	p := make(map[string]any, len(e.Extra)+5)
	for k, v := range e.Extra {
		p[k] = v
	}
	p[FieldBatSpeed] = e.BatSpeedMPH
	p[FieldAttackAngle] = e.AttackAngleDeg
	p[FieldOmegaPeak] = e.OmegaPeakDPS
	if e.EventID != "" {
		p["event_id"] = e.EventID
	}
	if e.PlayerID != "" {
		p["player_id"] = e.PlayerID
	}
	return p
}

// MarshalJSON serializes the event in its wire shape.
func (e SwingEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Payload())
}
