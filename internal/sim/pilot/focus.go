package pilot

import (
	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/tuning"
)

// focusState is the glide phase of the focus pilot.
type focusState int

const (
	focusHome focusState = iota
	focusTravel
	focusTrack
)

// homeDir and planetViewDir are the fixed diagonal approach directions.
var (
	homeDir       = geom.Vec3{X: 1, Y: 0.45, Z: 1}
	planetViewDir = geom.Vec3{X: 1, Y: 0.5, Z: 1}
)

// FocusPilot glides the camera to a selected body and tracks it until the
// camera drifts away or the caller releases it.
type FocusPilot struct {
	cfg tuning.Focus
	cat *catalog.Catalog

	state  focusState
	target string // body name; empty means glide home
	lock   bool   // suppress auto-release for planet/sun targets
	frozen bool   // all-motion-frozen inspection mode: tighter offset
}

func NewFocusPilot(cfg tuning.Focus, cat *catalog.Catalog) *FocusPilot {
	return &FocusPilot{cfg: cfg, cat: cat}
}

// SetTarget starts a glide toward the named body. lock keeps the body in
// view indefinitely (exploratory mode); it never applies to moons.
func (f *FocusPilot) SetTarget(name string, lock bool) {
	f.target = name
	f.lock = lock
	f.state = focusTravel
}

// Home releases the target and glides back to the world-origin overview.
func (f *FocusPilot) Home() {
	f.target = ""
	f.lock = false
	f.state = focusHome
}

// SetFrozen toggles the tight inspection offset used when all scene motion
// is paused.
func (f *FocusPilot) SetFrozen(v bool) { f.frozen = v }

// Reset drops transient glide state; called on every mode switch.
func (f *FocusPilot) Reset() {
	f.target = ""
	f.lock = false
	f.state = focusHome
}

// Mode reports the exclusive pilot mode this state maps to.
func (f *FocusPilot) Mode() Mode {
	if f.state == focusTrack {
		return ModeFocusTrack
	}
	return ModeFocusTravel
}

// Target returns the currently focused body name (empty when homing).
func (f *FocusPilot) Target() string { return f.target }

// Update advances one tick. Returns release=true when tracking should end
// and the caller should drop back to free camera control. An unresolved
// target is a silent no-op tick.
func (f *FocusPilot) Update(cam *Camera, reg *Registry, dt float64, sc *geom.Scratch) (release bool) {
	if f.target == "" {
		f.glide(cam, geom.Vec3{}, homeDir.Norm().Scale(f.cfg.HomeOffset), dt, f.cfg.TravelRate)
		return false
	}

	h, ok := reg.Resolve(f.target)
	if !ok {
		return false
	}
	body := f.cat.ByName[f.target]

	var desired geom.Vec3
	if body != nil && body.Kind == catalog.KindMoon {
		desired = f.moonOffset(body, h, reg, sc)
	} else {
		mul := f.cfg.PlanetOffsetMul
		if f.frozen {
			mul = f.cfg.PlanetOffsetFrozenMul
		}
		desired = h.Pos.Add(planetViewDir.Norm().Scale(h.Radius * mul))
	}

	rate := f.cfg.TravelRate
	if f.state == focusTrack {
		rate = f.cfg.TrackRate
	}
	f.glide(cam, h.Pos, desired, dt, rate)

	switch f.state {
	case focusTravel:
		if cam.Pos.DistTo(desired) < f.cfg.SettleTolerance && cam.Look.DistTo(h.Pos) < f.cfg.SettleTolerance {
			f.state = focusTrack
		}
	case focusTrack:
		releaseDist := h.Radius * f.cfg.ReleaseRadiusMul
		if releaseDist < f.cfg.ReleaseFloor {
			releaseDist = f.cfg.ReleaseFloor
		}
		if cam.Pos.DistTo(h.Pos) > releaseDist {
			locked := f.lock && body != nil && body.Kind != catalog.KindMoon
			if !locked {
				return true
			}
		}
	}
	return false
}

// moonOffset views a moon from outside its parent: outward radial from the
// parent through the moon plus a perpendicular side vector, both scaled by
// the moon's radius, then pushed out of the parent's clearance sphere.
func (f *FocusPilot) moonOffset(body *catalog.Body, h Handle, reg *Registry, sc *geom.Scratch) geom.Vec3 {
	parent, ok := reg.Resolve(body.Parent)
	if !ok {
		return h.Pos.Add(planetViewDir.Norm().Scale(h.Radius * f.cfg.PlanetOffsetMul))
	}

	sc.A = h.Pos.Sub(parent.Pos).Norm() // outward
	sc.B = sc.A.Cross(geom.Up).Norm()   // side
	desired := h.Pos.
		Add(sc.A.Scale(h.Radius * f.cfg.MoonSideScale)).
		Add(sc.B.Scale(h.Radius * f.cfg.MoonSideScale))

	minClear := parent.Radius * f.cfg.MoonParentClearance
	if d := desired.DistTo(parent.Pos); d < minClear {
		desired = parent.Pos.Add(desired.Sub(parent.Pos).Norm().Scale(minClear))
	}
	return desired
}

func (f *FocusPilot) glide(cam *Camera, lookAt, desired geom.Vec3, dt, rate float64) {
	t := geom.DampFactor(rate, dt)
	cam.Look = cam.Look.Lerp(lookAt, t)
	cam.Pos = cam.Pos.Lerp(desired, t)
	cam.FaceLook()
}
