// Package universe maps swing distances onto the "distance to Mars"
// progression the app shows players.
package universe

import "math"

// Zone is one named distance bracket. Min is inclusive, Max exclusive;
// the top zone is unbounded (Max = +Inf).
type Zone struct {
	Name      string
	Milestone string
	MinFt     float64
	MaxFt     float64
}

// Unbounded marks the top zone's MaxFt.
var Unbounded = math.Inf(1)

// zones is the fixed, ordered bracket table. Lookup returns the first
// bracket containing the distance, falling back to the last.
var zones = []Zone{
	{Name: "Sandlot", Milestone: "Clear the backyard fence", MinFt: 0, MaxFt: 300},
	{Name: "Out of the Park", Milestone: "Past the bleachers and counting", MinFt: 300, MaxFt: 1000},
	{Name: "Stratosphere", Milestone: "The ball just left the weather", MinFt: 1000, MaxFt: 6000},
	{Name: "Low Orbit", Milestone: "Ground control has your launch on radar", MinFt: 6000, MaxFt: 35000},
	{Name: "Mars Bound", Milestone: "On course for the red planet", MinFt: 35000, MaxFt: Unbounded},
}

// Zones returns a copy of the bracket table in order.
func Zones() []Zone {
	out := make([]Zone, len(zones))
	copy(out, zones)
	return out
}

// ZoneFor returns the bracket containing distanceFt. Any value past the
// largest threshold, including +Inf, lands in the top bracket.
func ZoneFor(distanceFt float64) Zone {
	for _, z := range zones {
		if distanceFt >= z.MinFt && distanceFt < z.MaxFt {
			return z
		}
	}
	return zones[len(zones)-1]
}

// ProgressToNext reports how far into its zone a distance is, as a
// fraction in [0,1]. The unbounded top zone always reports 1.
func ProgressToNext(distanceFt float64) float64 {
	z := ZoneFor(distanceFt)
	if math.IsInf(z.MaxFt, 1) {
		return 1
	}
	p := (distanceFt - z.MinFt) / (z.MaxFt - z.MinFt)
	return math.Min(1, math.Max(0, p))
}
