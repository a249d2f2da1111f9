package pilot

import "solarpilot.ai/internal/sim/geom"

// Handle is the per-tick binding of a body name to its current world
// position and radius. Handles are overwritten every tick and never
// persisted.
type Handle struct {
	Pos    geom.Vec3
	Radius float64
}

// Registry is the frame-fresh body table pilots resolve targets against.
// It is written only by the scene integrator and read by pilots on the
// same goroutine; a missing entry means the body is not placed yet and the
// affected pilot tick is a no-op.
type Registry struct {
	handles map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle, 32)}
}

// Put records a body's position for the current tick.
func (r *Registry) Put(name string, pos geom.Vec3, radius float64) {
	r.handles[name] = Handle{Pos: pos, Radius: radius}
}

// Resolve returns the current handle for a body name.
func (r *Registry) Resolve(name string) (Handle, bool) {
	h, ok := r.handles[name]
	return h, ok
}

// Len reports how many bodies are currently placed.
func (r *Registry) Len() int { return len(r.handles) }
