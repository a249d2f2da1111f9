package pilot

import (
	"fmt"
	"time"
)

// Status is the snapshot of roam-pilot activity exposed to the UI. Modes:
// "acquiring" (no target yet), "travel", "orbit".
type Status struct {
	Mode         string  `json:"mode"`
	TargetType   string  `json:"target_type,omitempty"`
	TargetKey    string  `json:"target_key,omitempty"`
	Label        string  `json:"label,omitempty"`
	Distance     float64 `json:"distance"`
	ETASeconds   float64 `json:"eta_seconds"`
	TurnProgress float64 `json:"turn_progress"`
	TurnTarget   float64 `json:"turn_target"`
}

// Emitter rate-limits status snapshots by wall clock and by a change
// signature. The throttle is advisory: dropping an emission never breaks
// pilot correctness.
type Emitter struct {
	minInterval time.Duration

	lastAt  time.Time
	lastSig string
}

func NewEmitter(minInterval time.Duration) *Emitter {
	return &Emitter{minInterval: minInterval}
}

// Offer returns true when the status is due for emission: the interval has
// elapsed and the coarse signature changed.
func (e *Emitter) Offer(now time.Time, s Status) bool {
	if !e.lastAt.IsZero() && now.Sub(e.lastAt) < e.minInterval {
		return false
	}
	sig := signature(s)
	if sig == e.lastSig {
		return false
	}
	e.lastAt = now
	e.lastSig = sig
	return true
}

// Reset clears throttle history so the first status after a re-enable
// always emits.
func (e *Emitter) Reset() {
	e.lastAt = time.Time{}
	e.lastSig = ""
}

// signature rounds the volatile fields so tiny per-tick jitter does not
// count as change.
func signature(s Status) string {
	return fmt.Sprintf("%s|%s|%s|%.0f|%.0f|%.1f/%.1f",
		s.Mode, s.TargetType, s.TargetKey, s.Distance, s.ETASeconds, s.TurnProgress, s.TurnTarget)
}
