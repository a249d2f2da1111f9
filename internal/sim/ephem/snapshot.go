// Package ephem supplies live ephemeris snapshots used to seed initial
// scene orientation. A snapshot is optional everywhere: consumers fall
// back to analytic or deterministic-random phases when it is absent.
package ephem

import (
	"time"

	"solarpilot.ai/internal/sim/geom"
)

// BodyState is one body's heliocentric vector (scene axes: orbit plane XZ)
// and physical radius as reported by the upstream service.
type BodyState struct {
	Vector   geom.Vec3 `json:"vector"`
	RadiusKm float64   `json:"radius_km"`
}

// Snapshot is a point-in-time table of body states.
type Snapshot struct {
	Epoch  time.Time            `json:"epoch"`
	Bodies map[string]BodyState `json:"bodies"`
}

// Lookup returns the state for a body name, if present and finite.
func (s *Snapshot) Lookup(name string) (BodyState, bool) {
	if s == nil {
		return BodyState{}, false
	}
	b, ok := s.Bodies[name]
	if !ok || !b.Vector.IsFinite() {
		return BodyState{}, false
	}
	return b, true
}
