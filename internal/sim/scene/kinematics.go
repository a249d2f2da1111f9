package scene

import (
	"math"

	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/pose"
)

// bodyState is the integrator state of one body. Angles advance every
// tick; the plane orientation is fixed at solve time.
type bodyState struct {
	body *catalog.Body

	orbitAngle float64
	spinAngle  float64

	inclination   float64 // radians
	node          float64 // radians
	tiltDeg       float64
	retrograde    bool
	eclipticFrame bool

	pos geom.Vec3
}

func (s *Scene) initBodies(phases map[string]pose.Phase) {
	s.bodies = make([]*bodyState, 0, len(s.cat.Bodies))
	s.byName = make(map[string]*bodyState, len(s.cat.Bodies))
	for i := range s.cat.Bodies {
		b := &s.cat.Bodies[i]
		if b.Kind == catalog.KindField {
			continue
		}
		ph := phases[b.Name]
		st := &bodyState{
			body:          b,
			orbitAngle:    ph.OrbitAngle,
			spinAngle:     ph.SpinAngle,
			inclination:   ph.InclinationRad,
			node:          ph.AscendingNodeRad,
			tiltDeg:       ph.TiltDeg,
			retrograde:    ph.Retrograde,
			eclipticFrame: ph.EclipticFrame,
		}
		s.bodies = append(s.bodies, st)
		s.byName[b.Name] = st
	}
}

// integrate advances every body by the given number of simulated days and
// recomputes positions. Planets resolve before moons so parent positions
// are current within the same tick.
func (s *Scene) integrate(days float64) {
	for _, st := range s.bodies {
		st.advance(days)
	}
	for _, st := range s.bodies {
		if st.body.Kind != catalog.KindMoon {
			st.pos = st.heliocentric()
		}
	}
	for _, st := range s.bodies {
		if st.body.Kind != catalog.KindMoon {
			continue
		}
		parent := s.byName[st.body.Parent]
		if parent == nil {
			continue
		}
		st.pos = parent.pos.Add(st.orbitOffset(parent))
	}
	for _, st := range s.bodies {
		s.reg.Put(st.body.Name, st.pos, st.body.Radius)
	}
}

func (st *bodyState) advance(days float64) {
	if p := st.body.OrbitPeriodDays; p != 0 && days != 0 {
		d := geom.TwoPi * days / math.Abs(p)
		if st.retrograde {
			d = -d
		}
		st.orbitAngle = math.Mod(st.orbitAngle+d, geom.TwoPi)
	}
	if p := st.body.RotationPeriodDays; p != 0 && days != 0 {
		st.spinAngle = math.Mod(st.spinAngle+geom.TwoPi*days/p, geom.TwoPi)
	}
}

// heliocentric places a star or planet in the ecliptic XZ plane.
func (st *bodyState) heliocentric() geom.Vec3 {
	if st.body.Kind == catalog.KindStar || st.body.Distance == 0 {
		return geom.Vec3{}
	}
	return geom.Vec3{
		X: math.Cos(st.orbitAngle) * st.body.Distance,
		Z: math.Sin(st.orbitAngle) * st.body.Distance,
	}
}

// orbitOffset computes a moon's displacement from its parent: circle in
// the orbit plane, incline, swing to the ascending node, and for
// equatorial moons inherit the parent's axial tilt.
func (st *bodyState) orbitOffset(parent *bodyState) geom.Vec3 {
	v := geom.Vec3{
		X: math.Cos(st.orbitAngle) * st.body.Distance,
		Z: math.Sin(st.orbitAngle) * st.body.Distance,
	}
	v = rotX(v, st.inclination)
	v = rotY(v, st.node)
	if !st.eclipticFrame {
		v = rotX(v, parent.body.AxialTiltDeg*geom.Deg2Rad)
	}
	return v
}

func rotX(v geom.Vec3, a float64) geom.Vec3 {
	if a == 0 {
		return v
	}
	sin, cos := math.Sincos(a)
	return geom.Vec3{X: v.X, Y: v.Y*cos - v.Z*sin, Z: v.Y*sin + v.Z*cos}
}

func rotY(v geom.Vec3, a float64) geom.Vec3 {
	if a == 0 {
		return v
	}
	sin, cos := math.Sincos(a)
	return geom.Vec3{X: v.X*cos + v.Z*sin, Y: v.Y, Z: -v.X*sin + v.Z*cos}
}
