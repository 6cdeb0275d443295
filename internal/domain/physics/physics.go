// Package physics computes derived game state from raw swing metrics.
//
// Every function here is pure and total: no I/O, no hidden state, defined
// for every real input. The ingest handler and the leaderboard workers both
// rely on recomputing the same values from the same inputs.
package physics

import "math"

// Gravity is the projectile constant in ft/s².
const Gravity = 32.174

// Classification labels returned by Classify.
const (
	LabelGood      = "good"
	LabelNeedsWork = "needs_work"
)

// Launch-window and power thresholds for a "good" swing.
const (
	goodAngleMinDeg = 25.0
	goodAngleMaxDeg = 35.0
	goodVelocityMPH = 90.0
)

// Velocity feedback tier thresholds in mph.
const (
	feedbackSolidMPH = 70.0
	feedbackGreatMPH = 90.0
	feedbackEliteMPH = 105.0
)

// Distance returns projected travel distance in feet using the
// projectile-range formula v²/g·sin(2θ). Angles outside (0°, 90°) can make
// sin(2θ) negative; the physical answer is zero forward distance, so the
// result is clamped at 0.
func Distance(exitVelocityMPH, launchAngleDeg float64) float64 {
	theta := launchAngleDeg * math.Pi / 180
	d := exitVelocityMPH * exitVelocityMPH / Gravity * math.Sin(2*theta)
	return math.Max(0, d)
}

// Classify labels a swing from its launch angle and exit velocity. Both
// thresholds are independent; there is no hysteresis or prior-state input.
func Classify(launchAngleDeg, exitVelocityMPH float64) string {
	if launchAngleDeg >= goodAngleMinDeg && launchAngleDeg <= goodAngleMaxDeg && exitVelocityMPH >= goodVelocityMPH {
		return LabelGood
	}
	return LabelNeedsWork
}

// VelocityFeedback returns the coaching message for an exit velocity.
func VelocityFeedback(exitVelocityMPH float64) string {
	switch {
	case exitVelocityMPH >= feedbackEliteMPH:
		return "Elite power! Mars is within reach."
	case exitVelocityMPH >= feedbackGreatMPH:
		return "Great exit velocity! That ball is flying."
	case exitVelocityMPH >= feedbackSolidMPH:
		return "Solid contact! Keep driving through the zone."
	default:
		return "Keep swinging - build up that bat speed."
	}
}
