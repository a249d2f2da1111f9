package pose

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/ephem"
	"solarpilot.ai/internal/sim/geom"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestSolver() *Solver {
	// Empty VSOP87 dir: the analytic tier fails over to random.
	return New("", fixedClock(), rand.New(rand.NewSource(1)), nil)
}

func TestPlanetAngle_FromEphemerisVector(t *testing.T) {
	cat := catalog.Default()
	snap := &ephem.Snapshot{Bodies: map[string]ephem.BodyState{
		"Mars": {Vector: geom.Vec3{X: 1, Y: 0, Z: 1}},
	}}
	phases := newTestSolver().Solve(cat, snap)
	got := phases["Mars"].OrbitAngle
	if math.Abs(got-math.Pi/4) > 1e-12 {
		t.Fatalf("orbit angle = %v, want π/4 exactly from atan2(1,1)", got)
	}
}

func TestSolve_IdempotentWithSnapshot(t *testing.T) {
	cat := catalog.Default()
	snap := &ephem.Snapshot{Bodies: map[string]ephem.BodyState{}}
	for _, p := range cat.Planets() {
		snap.Bodies[p.Name] = ephem.BodyState{Vector: geom.Vec3{X: p.Distance, Z: p.Distance / 2}}
	}
	for i := range cat.Bodies {
		if cat.Bodies[i].Kind == catalog.KindMoon {
			snap.Bodies[cat.Bodies[i].Name] = ephem.BodyState{Vector: geom.Vec3{X: 1, Z: -1}}
		}
	}
	a := New("", fixedClock(), rand.New(rand.NewSource(7)), nil).Solve(cat, snap)
	b := New("", fixedClock(), rand.New(rand.NewSource(99)), nil).Solve(cat, snap)
	for name, pa := range a {
		pb := b[name]
		if pa != pb {
			t.Fatalf("%s: phases differ across runs with identical inputs: %+v vs %+v", name, pa, pb)
		}
	}
}

func TestPlanetAngle_RandomFallbackIsFinite(t *testing.T) {
	cat := catalog.Default()
	phases := newTestSolver().Solve(cat, nil)
	for _, p := range cat.Planets() {
		a := phases[p.Name].OrbitAngle
		if math.IsNaN(a) || math.IsInf(a, 0) {
			t.Fatalf("%s: non-finite fallback angle %v", p.Name, a)
		}
	}
}

func TestSpinAngle(t *testing.T) {
	if got := spinAngle(10.25, 1); math.Abs(got-0.25*geom.TwoPi) > 1e-9 {
		t.Fatalf("spin = %v, want quarter revolution", got)
	}
	// Retrograde rotation uses the absolute period.
	if got := spinAngle(10.25, -1); math.Abs(got-0.25*geom.TwoPi) > 1e-9 {
		t.Fatalf("retrograde spin = %v, want quarter revolution", got)
	}
	if got := spinAngle(10, 0); got != 0 {
		t.Fatalf("zero period spin = %v, want 0", got)
	}
	if got := spinAngle(10, math.Inf(1)); got != 0 {
		t.Fatalf("infinite period spin = %v, want 0", got)
	}
}

func TestMoonPhase_DeterministicHashFallback(t *testing.T) {
	cat := catalog.Default()
	a := newTestSolver().Solve(cat, nil)["Europa"]
	b := newTestSolver().Solve(cat, nil)["Europa"]
	if a.OrbitAngle != b.OrbitAngle {
		t.Fatalf("hash-fallback moon angle unstable: %v vs %v", a.OrbitAngle, b.OrbitAngle)
	}
}

func TestMoonPhase_RetrogradeByInclination(t *testing.T) {
	cat := catalog.Default()
	phases := newTestSolver().Solve(cat, nil)

	triton := phases["Triton"]
	if !triton.Retrograde {
		t.Fatal("Triton (period<0, inclination 156.87°) must be retrograde")
	}
	if math.Abs(triton.TiltDeg-(180-156.87)) > 1e-9 {
		t.Fatalf("rendered tilt = %v, want mirrored %v", triton.TiltDeg, 180-156.87)
	}

	europa := phases["Europa"]
	if europa.Retrograde {
		t.Fatal("Europa must be prograde")
	}
	if math.Abs(europa.TiltDeg-0.47) > 1e-9 {
		t.Fatalf("Europa tilt = %v, want 0.47", europa.TiltDeg)
	}
}

func TestFoldInclination(t *testing.T) {
	cases := map[float64]float64{-10: 10, 0: 0, 90: 90, 170: 170, 190: 170, 350: 10, 360: 0}
	for in, want := range cases {
		if got := foldInclination(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("fold(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestMoonPhase_FrameSelection(t *testing.T) {
	cat := catalog.Default()
	phases := newTestSolver().Solve(cat, nil)
	if !phases["Moon"].EclipticFrame {
		t.Fatal("Moon is configured ecliptic-referenced")
	}
	if phases["Europa"].EclipticFrame {
		t.Fatal("Europa defaults to the equatorial frame")
	}
}

func TestPhase01_ExactAlgorithm(t *testing.T) {
	// Independent recomputation of the FNV-1a variant.
	ref := func(s string) float64 {
		h := uint32(2166136261)
		for _, b := range []byte(s) {
			h ^= uint32(b)
			h *= 16777619
		}
		return float64(h%360) / 360
	}
	for _, name := range []string{"Europa (Jupiter)", "Moon (Earth)", "x", ""} {
		if got, want := Phase01(name), ref(name); got != want {
			t.Fatalf("Phase01(%q) = %v, want %v", name, got, want)
		}
	}
	if p := Phase01("Titan (Saturn)"); p < 0 || p >= 1 {
		t.Fatalf("phase out of range: %v", p)
	}
}
