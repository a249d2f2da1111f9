// Package pose computes initial per-body orbital state at scene start: an
// orbital phase angle and spin angle for every planet, plus orbital-plane
// orientation for every moon. It runs once per scene (re)initialization;
// the scene's integrator advances the angles from there.
package pose

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetposition"

	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/ephem"
	"solarpilot.ai/internal/sim/geom"
)

// Phase is the solved initial state for one body.
type Phase struct {
	OrbitAngle float64 // radians in the XZ orbital plane
	SpinAngle  float64 // radians

	// Moon-only plane orientation.
	InclinationRad   float64
	AscendingNodeRad float64
	TiltDeg          float64 // rendered tilt, mirrored into [0°,90°]
	Retrograde       bool
	EclipticFrame    bool // skip parent's axial tilt when true
}

var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// vsop87Index maps catalog planet names onto VSOP87 tables.
var vsop87Index = map[string]int{
	"Mercury": planetposition.Mercury,
	"Venus":   planetposition.Venus,
	"Earth":   planetposition.Earth,
	"Mars":    planetposition.Mars,
	"Jupiter": planetposition.Jupiter,
	"Saturn":  planetposition.Saturn,
	"Uranus":  planetposition.Uranus,
	"Neptune": planetposition.Neptune,
}

// Solver resolves initial phases. Rand feeds only the last-resort tier, so
// runs with ephemeris data are fully deterministic.
type Solver struct {
	Now       func() time.Time
	Rand      *rand.Rand
	VSOP87Dir string
	Log       *log.Logger

	vsop map[string]*planetposition.V87Planet
}

// New builds a solver. now and rng may be nil (wall clock, global-seeded
// source).
func New(vsopDir string, now func() time.Time, rng *rand.Rand, logger *log.Logger) *Solver {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Solver{
		Now:       now,
		Rand:      rng,
		VSOP87Dir: vsopDir,
		Log:       logger,
		vsop:      make(map[string]*planetposition.V87Planet),
	}
}

// Solve computes phases for every planet and moon in the catalog. It never
// fails: each tier of the fallback chain absorbs the one above it.
func (s *Solver) Solve(cat *catalog.Catalog, snap *ephem.Snapshot) map[string]Phase {
	now := s.Now()
	elapsedDays := now.Sub(j2000).Hours() / 24

	out := make(map[string]Phase, len(cat.Bodies))
	for i := range cat.Bodies {
		b := &cat.Bodies[i]
		switch b.Kind {
		case catalog.KindPlanet:
			out[b.Name] = Phase{
				OrbitAngle: s.planetAngle(b, snap, now),
				SpinAngle:  spinAngle(elapsedDays, b.RotationPeriodDays),
			}
		case catalog.KindMoon:
			out[b.Name] = s.moonPhase(cat, b, snap, elapsedDays)
		case catalog.KindStar:
			out[b.Name] = Phase{SpinAngle: spinAngle(elapsedDays, b.RotationPeriodDays)}
		}
	}
	return out
}

// planetAngle is the three-tier fallback: ephemeris vector, then VSOP87
// heliocentric longitude, then uniform random.
func (s *Solver) planetAngle(b *catalog.Body, snap *ephem.Snapshot, now time.Time) float64 {
	if state, ok := snap.Lookup(b.Name); ok {
		return math.Atan2(state.Vector.Z, state.Vector.X)
	}
	if a, ok := s.analyticAngle(b.Name, now); ok {
		return a
	}
	return s.Rand.Float64() * geom.TwoPi
}

func (s *Solver) analyticAngle(name string, now time.Time) (float64, bool) {
	idx, ok := vsop87Index[name]
	if !ok {
		return 0, false
	}
	pp, ok := s.vsop[name]
	if !ok {
		loaded, err := planetposition.LoadPlanetPath(idx, s.VSOP87Dir)
		if err != nil {
			if s.Log != nil {
				s.Log.Printf("vsop87 %s unavailable: %v", name, err)
			}
			loaded = nil
		}
		s.vsop[name] = loaded
		pp = loaded
	}
	if pp == nil {
		return 0, false
	}
	l, _, _ := pp.Position2000(julian.TimeToJD(now))
	a := l.Rad()
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, false
	}
	return geom.WrapAngle(a), true
}

// spinAngle derives the rotation phase from elapsed days over the absolute
// rotation period, modulo one revolution. Non-finite or zero periods spin
// to zero.
func spinAngle(elapsedDays, rotationPeriodDays float64) float64 {
	p := math.Abs(rotationPeriodDays)
	if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	frac := math.Mod(elapsedDays/p, 1)
	if frac < 0 {
		frac += 1
	}
	return frac * geom.TwoPi
}

func (s *Solver) moonPhase(cat *catalog.Catalog, b *catalog.Body, snap *ephem.Snapshot, elapsedDays float64) Phase {
	q := cat.QualifiedName(b.Name)

	var angle float64
	if state, ok := snap.Lookup(b.Name); ok {
		angle = math.Atan2(state.Vector.Z, state.Vector.X)
	} else {
		angle = Phase01(q) * geom.TwoPi
		if p := math.Abs(b.OrbitPeriodDays); p > 0 && !math.IsInf(p, 0) {
			angle += (elapsedDays / p) * geom.TwoPi
		}
		angle = geom.WrapAngle(angle)
	}

	inclDeg := hashOrConfigured(b.InclinationDeg, q+"#inclination")
	nodeDeg := hashOrConfigured(b.AscendingNodeDeg, q+"#node")

	folded := foldInclination(inclDeg)
	tilt := folded
	if folded > 90 {
		tilt = 180 - folded
	}

	return Phase{
		OrbitAngle:       angle,
		SpinAngle:        spinAngle(elapsedDays, b.RotationPeriodDays),
		InclinationRad:   inclDeg * geom.Deg2Rad,
		AscendingNodeRad: nodeDeg * geom.Deg2Rad,
		TiltDeg:          tilt,
		Retrograde:       b.OrbitPeriodDays < 0 || folded > 90,
		EclipticFrame:    b.OrbitReference == catalog.RefEcliptic,
	}
}

func hashOrConfigured(configured *float64, hashKey string) float64 {
	if configured != nil {
		return *configured
	}
	return Phase01(hashKey) * 360
}

// foldInclination normalizes degrees into [0°,360°) and mirrors values
// over 180° back, yielding [0°,180°].
func foldInclination(deg float64) float64 {
	d := geom.Wrap360(deg)
	if d > 180 {
		d = 360 - d
	}
	return d
}
