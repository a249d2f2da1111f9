package pilot

import (
	"math"
	"math/rand"
	"time"

	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/tuning"
)

// TargetType categorizes roam destinations.
type TargetType string

const (
	TargetNone     TargetType = ""
	TargetSun      TargetType = "sun"
	TargetPlanet   TargetType = "planet"
	TargetMoon     TargetType = "moon"
	TargetAsteroid TargetType = "asteroid-field"
	TargetKuiper   TargetType = "kuiper-field"
	TargetOort     TargetType = "oort-field"
)

// fieldKeys maps field target types onto catalog field names.
var fieldKeys = map[TargetType]string{
	TargetAsteroid: "asteroid_belt",
	TargetKuiper:   "kuiper_belt",
	TargetOort:     "oort_cloud",
}

// roamPhase is the per-destination state machine phase.
type roamPhase int

const (
	phaseAcquire roamPhase = iota // no target; choose on next tick
	phaseTravel
	phaseOrbit
)

// RoamState is the mutable session state of the roam pilot. Replaced
// wholesale when a destination is chosen, reset to zero when the pilot is
// disabled.
type RoamState struct {
	Phase       roamPhase
	Focus       geom.Vec3
	Waypoint    geom.Vec3
	TargetType  TargetType
	TargetKey   string // empty for synthesized field points
	TargetRad   float64
	ArrivalDist float64
	SpinSign    float64
	Strafe      float64

	TurnProgress float64
	TurnTarget   float64
	HoldUntil    time.Time
	TravelStart  time.Time
	PreferInner  bool

	lastAzimuth float64
	haveAzimuth bool
}

// AutoRoamPilot tours the system indefinitely: pick a destination, travel
// to it, circle it, pick the next. It never teleports and never violates
// the Earth exclusion radius.
type AutoRoamPilot struct {
	cfg       tuning.Roam
	realScale bool
	cat       *catalog.Catalog
	rng       *rand.Rand
	now       func() time.Time

	st       RoamState
	lastType TargetType

	forward geom.Vec3 // smoothed ship-forward
	speed   float64   // damped scalar speed

	// Persistent mouse-look offset, layered on the computed orientation.
	lookYawTarget, lookPitchTarget float64
	lookYaw, lookPitch             float64
}

func NewAutoRoamPilot(cfg tuning.Roam, realScale bool, cat *catalog.Catalog, rng *rand.Rand, now func() time.Time) *AutoRoamPilot {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AutoRoamPilot{cfg: cfg, realScale: realScale, cat: cat, rng: rng, now: now}
}

// Reset clears the whole session: target, counters, timers, look offset.
// Disabling and re-enabling the pilot must always start from "no target".
func (a *AutoRoamPilot) Reset() {
	a.st = RoamState{}
	a.lastType = TargetNone
	a.forward = geom.Vec3{}
	a.speed = 0
	a.lookYawTarget, a.lookPitchTarget = 0, 0
	a.lookYaw, a.lookPitch = 0, 0
}

// Mode reports the exclusive pilot mode of the current phase.
func (a *AutoRoamPilot) Mode() Mode {
	if a.st.Phase == phaseOrbit {
		return ModeAutoOrbit
	}
	return ModeAutoTravel
}

// State returns a copy of the session state (snapshot/telemetry use).
func (a *AutoRoamPilot) State() RoamState { return a.st }

// Restore resumes a session from a snapshot.
func (a *AutoRoamPilot) Restore(st RoamState) { a.st = st }

// PhaseName reports the state-machine phase as a stable string for
// snapshots and telemetry.
func (s RoamState) PhaseName() string {
	switch s.Phase {
	case phaseTravel:
		return "travel"
	case phaseOrbit:
		return "orbit"
	}
	return "acquire"
}

// WithPhaseName returns a copy of the state with the named phase; unknown
// names fall back to acquire, which is always safe to resume from.
func (s RoamState) WithPhaseName(name string) RoamState {
	switch name {
	case "travel":
		s.Phase = phaseTravel
	case "orbit":
		s.Phase = phaseOrbit
	default:
		s.Phase = phaseAcquire
	}
	return s
}

// AddLookOffset accumulates a mouse-drag yaw/pitch offset; in this mode
// the offset persists until the pilot is reset.
func (a *AutoRoamPilot) AddLookOffset(yaw, pitch float64) {
	a.lookYawTarget += yaw
	a.lookPitchTarget = geom.Clamp(a.lookPitchTarget+pitch, -pitchLimit, pitchLimit)
}

// Update advances one tick.
func (a *AutoRoamPilot) Update(cam *Camera, reg *Registry, dt float64, sc *geom.Scratch) {
	now := a.now()

	if a.st.Phase == phaseAcquire {
		if !a.acquire(cam, reg) {
			return // registry not populated yet; no-op tick
		}
	}

	// Body targets move every tick; re-pin focus (and drag the waypoint
	// along) so arrival geometry stays correct. An unresolved handle means
	// the target is not placed this tick: no-op, no mode change.
	if a.st.TargetKey != "" {
		h, ok := reg.Resolve(a.st.TargetKey)
		if !ok {
			return
		}
		shift := h.Pos.Sub(a.st.Focus)
		a.st.Focus = h.Pos
		a.st.Waypoint = a.st.Waypoint.Add(shift)
		a.st.TargetRad = h.Radius
	}

	switch a.st.Phase {
	case phaseTravel:
		a.travelTick(cam, reg, now, dt)
	case phaseOrbit:
		a.orbitTick(cam, reg, now, dt)
	}

	// Earth exclusion holds every frame, wherever the maneuver happens.
	cam.Pos = a.clampEarth(cam.Pos, reg)

	a.applyLookOffset(cam, dt)
}

// acquire selects the next destination and builds its waypoint. Returns
// false when the registry can't resolve the chosen body yet.
func (a *AutoRoamPilot) acquire(cam *Camera, reg *Registry) bool {
	tt, key := a.chooseTarget()

	st := RoamState{
		TargetType:  tt,
		TargetKey:   key,
		SpinSign:    1,
		Strafe:      a.rng.Float64() * a.cfg.StrafeMax,
		TravelStart: a.now(),
	}
	if a.rng.Float64() < 0.5 {
		st.SpinSign = -1
	}

	switch tt {
	case TargetSun, TargetPlanet, TargetMoon:
		h, ok := reg.Resolve(key)
		if !ok {
			return false
		}
		st.Focus = h.Pos
		st.TargetRad = h.Radius
	default:
		st.Focus = a.fieldPoint(tt)
		st.TargetKey = ""
	}

	st.ArrivalDist = a.arrivalDist(tt, key)
	st.Waypoint = a.buildWaypoint(st, reg)
	st.Phase = phaseTravel

	a.st = st
	a.lastType = tt
	a.forward = st.Waypoint.Sub(cam.Pos).Norm()
	return true
}

// chooseTarget is the weighted-random category roll. Inner-system
// categories are boosted after a timeout or a remote-field visit, and the
// previous category is penalized to avoid repeats. A planet pick often
// resolves into one of that planet's moons.
func (a *AutoRoamPilot) chooseTarget() (TargetType, string) {
	type cand struct {
		tt TargetType
		w  float64
	}
	cands := []cand{
		{TargetSun, a.cfg.WeightSun},
		{TargetPlanet, a.cfg.WeightPlanet},
		{TargetMoon, a.cfg.WeightMoon},
		{TargetAsteroid, a.cfg.WeightAsteroid},
		{TargetKuiper, a.cfg.WeightKuiper},
		{TargetOort, a.cfg.WeightOort},
	}
	inner := map[TargetType]bool{TargetSun: true, TargetPlanet: true, TargetMoon: true, TargetAsteroid: true}
	total := 0.0
	for i := range cands {
		if a.st.PreferInner && inner[cands[i].tt] {
			cands[i].w *= a.cfg.InnerBias
		}
		if cands[i].tt == a.lastType {
			cands[i].w *= a.cfg.RepeatPenalty
		}
		total += cands[i].w
	}

	roll := a.rng.Float64() * total
	tt := TargetPlanet
	for _, c := range cands {
		if roll < c.w {
			tt = c.tt
			break
		}
		roll -= c.w
	}

	switch tt {
	case TargetSun:
		if s := a.cat.Star(); s != nil {
			return TargetSun, s.Name
		}
		return TargetSun, "Sun"
	case TargetPlanet, TargetMoon:
		p := a.pickPlanet()
		if p == nil {
			return TargetSun, "Sun"
		}
		moons := a.cat.Moons(p.Name)
		wantMoon := tt == TargetMoon || a.rng.Float64() < a.cfg.MoonBranchP
		if wantMoon && len(moons) > 0 {
			return TargetMoon, moons[a.rng.Intn(len(moons))].Name
		}
		return TargetPlanet, p.Name
	default:
		return tt, fieldKeys[tt]
	}
}

// pickPlanet chooses uniformly, or from the inner half (by distance) when
// pulling the tour back toward the inner system.
func (a *AutoRoamPilot) pickPlanet() *catalog.Body {
	planets := a.cat.Planets()
	if len(planets) == 0 {
		return nil
	}
	if a.st.PreferInner {
		n := (len(planets) + 1) / 2
		return planets[a.rng.Intn(n)]
	}
	return planets[a.rng.Intn(len(planets))]
}

// fieldPoint synthesizes a destination inside a field's radial band.
func (a *AutoRoamPilot) fieldPoint(tt TargetType) geom.Vec3 {
	var band *catalog.Body
	if b, ok := a.cat.ByName[fieldKeys[tt]]; ok {
		band = b
	}
	inner, outer := 200.0, 400.0
	if band != nil {
		inner, outer = band.BandInner, band.BandOuter
	}
	r := inner + a.rng.Float64()*(outer-inner)
	theta := a.rng.Float64() * geom.TwoPi
	y := (a.rng.Float64() - 0.5) * (outer - inner) * 0.2
	return geom.Vec3{X: r * math.Cos(theta), Y: y, Z: r * math.Sin(theta)}
}

func (a *AutoRoamPilot) arrivalDist(tt TargetType, key string) float64 {
	switch tt {
	case TargetMoon:
		return a.cfg.ArrivalMoon
	case TargetAsteroid, TargetKuiper, TargetOort:
		return a.cfg.ArrivalField
	default:
		if key == "Earth" {
			return a.cfg.ArrivalEarth
		}
		return a.cfg.ArrivalPlanet
	}
}

// buildWaypoint places the arrival point on a random direction from the
// focus, outside the type-dependent safety buffer. Earth's buffer never
// drops below the map-enter threshold so a flyby can't trigger the ground
// transition.
func (a *AutoRoamPilot) buildWaypoint(st RoamState, reg *Registry) geom.Vec3 {
	buffer := a.cfg.PlanetBuffer
	switch st.TargetType {
	case TargetMoon:
		buffer = a.cfg.MoonBuffer
	case TargetAsteroid, TargetKuiper, TargetOort:
		buffer = a.cfg.FieldBuffer
	}
	if a.realScale {
		buffer *= a.cfg.RealScaleMul
	}
	if st.TargetKey == "Earth" && buffer < a.cfg.MapEnterBuffer {
		buffer = a.cfg.MapEnterBuffer
	}

	dir := a.randomUnit()
	wp := st.Focus.Add(dir.Scale(st.TargetRad + buffer + a.rng.Float64()*a.cfg.BufferJitter))
	return a.clampEarth(wp, reg)
}

func (a *AutoRoamPilot) randomUnit() geom.Vec3 {
	v := geom.Vec3{X: a.rng.NormFloat64(), Y: a.rng.NormFloat64() * 0.5, Z: a.rng.NormFloat64()}
	return v.Norm()
}

// clampEarth projects a point outward along the Earth-to-point direction
// until it clears EarthRadius+MapEnterBuffer+EarthMargin.
func (a *AutoRoamPilot) clampEarth(p geom.Vec3, reg *Registry) geom.Vec3 {
	earth, ok := reg.Resolve("Earth")
	if !ok {
		return p
	}
	minDist := earth.Radius + a.cfg.MapEnterBuffer + a.cfg.EarthMargin
	if p.DistTo(earth.Pos) >= minDist {
		return p
	}
	return earth.Pos.Add(p.Sub(earth.Pos).Norm().Scale(minDist))
}

func (a *AutoRoamPilot) travelTick(cam *Camera, reg *Registry, now time.Time, dt float64) {
	remaining := cam.Pos.DistTo(a.st.Waypoint)

	if remaining <= a.st.ArrivalDist {
		a.enterOrbit(cam, now)
		return
	}

	timeout := a.cfg.TravelTimeoutSec
	if a.realScale {
		timeout = a.cfg.TravelTimeoutRealSec
	}
	if now.Sub(a.st.TravelStart).Seconds() > timeout {
		// Designed escape, not an error: abandon the crossing and pull the
		// tour back inward.
		a.st = RoamState{Phase: phaseAcquire, PreferInner: true}
		return
	}

	desired := a.st.Waypoint.Sub(cam.Pos).Norm()
	a.steer(desired, dt)

	target := geom.Clamp(remaining*a.cfg.SpeedDistFactor, a.cfg.SpeedMin, a.cfg.SpeedMax)
	a.speed += (target - a.speed) * geom.DampFactor(a.cfg.MoveDamp, dt)

	step := a.speed * dt
	if maxStep := remaining * a.cfg.StepMaxFrac; step > maxStep {
		step = maxStep
	}
	cam.Pos = cam.Pos.Add(a.forward.Scale(step))

	// Frame the body before arrival instead of flying past it face-on.
	var lookAt geom.Vec3
	if remaining <= a.st.ArrivalDist*a.cfg.NearLookMul {
		lookAt = a.st.Focus
	} else {
		lookAt = cam.Pos.Add(a.forward.Scale(math.Max(a.speed, 10)))
	}
	cam.Look = cam.Look.Lerp(lookAt, geom.DampFactor(a.cfg.LookRate, dt))
	cam.FaceLook()
}

func (a *AutoRoamPilot) enterOrbit(cam *Camera, now time.Time) {
	body := a.st.TargetType == TargetSun || a.st.TargetType == TargetPlanet || a.st.TargetType == TargetMoon
	holdMin, holdMax := a.cfg.HoldFieldMinSec, a.cfg.HoldFieldMaxSec
	turnMin, turnMax := a.cfg.TurnsFieldMin, a.cfg.TurnsFieldMax
	if body {
		holdMin, holdMax = a.cfg.HoldBodyMinSec, a.cfg.HoldBodyMaxSec
		turnMin, turnMax = a.cfg.TurnsBodyMin, a.cfg.TurnsBodyMax
	}

	a.st.Phase = phaseOrbit
	a.st.HoldUntil = now.Add(time.Duration((holdMin + a.rng.Float64()*(holdMax-holdMin)) * float64(time.Second)))
	a.st.TurnTarget = turnMin + a.rng.Float64()*(turnMax-turnMin)
	a.st.TurnProgress = 0
	a.st.lastAzimuth = cam.Pos.Sub(a.st.Focus).Azimuth()
	a.st.haveAzimuth = true
}

func (a *AutoRoamPilot) orbitTick(cam *Camera, reg *Registry, now time.Time, dt float64) {
	radial := cam.Pos.Sub(a.st.Focus)
	if radial.Len() < 1e-9 {
		radial = geom.FallbackDir
	}

	// Turn accounting: wrapped shortest-path azimuth deltas accumulated in
	// revolution units. Geometric, so orbit speed never skews completion.
	az := radial.Azimuth()
	if a.st.haveAzimuth {
		a.st.TurnProgress += math.Abs(geom.ShortestDelta(a.st.lastAzimuth, az)) / geom.TwoPi
	}
	a.st.lastAzimuth = az
	a.st.haveAzimuth = true

	if now.After(a.st.HoldUntil) && a.st.TurnProgress >= a.st.TurnTarget {
		prefer := a.st.TargetType == TargetKuiper || a.st.TargetType == TargetOort
		a.st = RoamState{Phase: phaseAcquire, PreferInner: prefer}
		return
	}

	outward := radial.Norm()
	tangent := geom.Up.Cross(outward).Norm().Scale(a.st.SpinSign)
	desired := tangent.
		Add(outward.Scale(-a.cfg.OrbitInward)).
		Add(geom.Up.Scale(a.st.Strafe * 0.3)).
		Norm()
	a.steer(desired, dt)

	target := geom.Clamp(radial.Len()*a.cfg.SpeedDistFactor, a.cfg.SpeedMin, a.cfg.SpeedMax*0.5)
	a.speed += (target - a.speed) * geom.DampFactor(a.cfg.MoveDamp, dt)
	cam.Pos = cam.Pos.Add(a.forward.Scale(a.speed * dt))

	cam.Look = cam.Look.Lerp(a.st.Focus, geom.DampFactor(a.cfg.LookRate, dt))
	cam.FaceLook()
}

// steer damps the ship-forward vector toward the desired direction; the
// craft banks through turns instead of snapping.
func (a *AutoRoamPilot) steer(desired geom.Vec3, dt float64) {
	a.forward = a.forward.Lerp(desired, geom.DampFactor(a.cfg.SteerRate, dt)).Norm()
}

func (a *AutoRoamPilot) applyLookOffset(cam *Camera, dt float64) {
	t := geom.DampFactor(a.cfg.LookOffDecay*10, dt)
	a.lookYaw += (a.lookYawTarget - a.lookYaw) * t
	a.lookPitch += (a.lookPitchTarget - a.lookPitch) * t
	if a.lookYaw != 0 || a.lookPitch != 0 {
		cam.OffsetLook(a.lookYaw, a.lookPitch)
	}
}

// Status summarizes the current activity for the UI.
func (a *AutoRoamPilot) Status(cam *Camera) Status {
	now := a.now()
	s := Status{
		Mode:         "acquiring",
		TargetType:   string(a.st.TargetType),
		TargetKey:    a.st.TargetKey,
		TurnProgress: a.st.TurnProgress,
		TurnTarget:   a.st.TurnTarget,
	}
	if a.st.TargetKey != "" {
		s.Label = a.cat.QualifiedName(a.st.TargetKey)
	} else if a.st.TargetType != TargetNone {
		s.Label = string(a.st.TargetType)
	}
	switch a.st.Phase {
	case phaseTravel:
		s.Mode = "travel"
		s.Distance = cam.Pos.DistTo(a.st.Waypoint)
		if a.speed > 1e-6 {
			s.ETASeconds = s.Distance / a.speed
		}
	case phaseOrbit:
		s.Mode = "orbit"
		s.Distance = cam.Pos.DistTo(a.st.Focus)
		if rem := a.st.HoldUntil.Sub(now); rem > 0 {
			s.ETASeconds = rem.Seconds()
		}
	}
	return s
}
