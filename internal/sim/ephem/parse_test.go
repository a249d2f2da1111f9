package ephem

import (
	"math"
	"testing"

	"solarpilot.ai/internal/sim/geom"
)

func TestParseVector(t *testing.T) {
	text := `$$SOE
2460000.500000000 = A.D. 2023-Feb-25 00:00:00.0000 TDB
 X = 1.234567E+00 Y =-4.321000E-01 Z = 2.000000E-03
$$EOE`
	v, err := ParseVector(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if math.Abs(v.X-1.234567) > 1e-9 || math.Abs(v.Y+0.4321) > 1e-9 || math.Abs(v.Z-0.002) > 1e-9 {
		t.Fatalf("vector = %+v", v)
	}
}

func TestParseVector_Missing(t *testing.T) {
	if _, err := ParseVector("no vectors here"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseRadiusKm(t *testing.T) {
	text := `Vol. mean radius (km) = 6371.01+-0.02  Mass x10^24 (kg)= 5.97219`
	if r := ParseRadiusKm(text); math.Abs(r-6371.01) > 1e-9 {
		t.Fatalf("radius = %v", r)
	}
	if r := ParseRadiusKm("Mean radius (km)    =  1737.4"); math.Abs(r-1737.4) > 1e-9 {
		t.Fatalf("radius = %v", r)
	}
	if r := ParseRadiusKm("nothing"); r != 0 {
		t.Fatalf("radius = %v, want 0", r)
	}
}

func TestSnapshotLookup_RejectsNonFinite(t *testing.T) {
	s := &Snapshot{Bodies: map[string]BodyState{
		"Bad": {Vector: geom.Vec3{X: math.NaN()}},
	}}
	if _, ok := s.Lookup("Bad"); ok {
		t.Fatal("non-finite vector must not resolve")
	}
	if _, ok := s.Lookup("Absent"); ok {
		t.Fatal("absent body must not resolve")
	}
	var nilSnap *Snapshot
	if _, ok := nilSnap.Lookup("Earth"); ok {
		t.Fatal("nil snapshot must not resolve")
	}
}
