package geom

import (
	"math"
	"testing"
)

func TestNorm_DegenerateFallsBack(t *testing.T) {
	v := Vec3{}.Norm()
	if v != FallbackDir {
		t.Fatalf("zero vector normalized to %v, want fallback %v", v, FallbackDir)
	}
	v = Vec3{X: 1e-15, Y: -1e-15}.Norm()
	if v != FallbackDir {
		t.Fatalf("near-zero vector normalized to %v, want fallback", v)
	}
}

func TestNorm_UnitLength(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 12}.Norm()
	if l := v.Len(); math.Abs(l-1) > 1e-12 {
		t.Fatalf("norm length = %v, want 1", l)
	}
}

func TestAzimuth(t *testing.T) {
	a := Vec3{X: 1, Z: 1}.Azimuth()
	if math.Abs(a-math.Pi/4) > 1e-12 {
		t.Fatalf("azimuth(1,0,1) = %v, want π/4", a)
	}
}

func TestShortestDelta_WrapsAcrossPi(t *testing.T) {
	d := ShortestDelta(math.Pi-0.1, -math.Pi+0.1)
	if math.Abs(d-0.2) > 1e-9 {
		t.Fatalf("delta = %v, want 0.2 (short way across the seam)", d)
	}
	d = ShortestDelta(0.1, -0.1)
	if math.Abs(d+0.2) > 1e-9 {
		t.Fatalf("delta = %v, want -0.2", d)
	}
}

func TestWrap360(t *testing.T) {
	cases := map[float64]float64{-30: 330, 0: 0, 360: 0, 725: 5}
	for in, want := range cases {
		if got := Wrap360(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("Wrap360(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestDampFactor_Monotone(t *testing.T) {
	slow := DampFactor(2, 0.016)
	fast := DampFactor(8, 0.016)
	if !(fast > slow && slow > 0 && fast < 1) {
		t.Fatalf("damp factors out of order: slow=%v fast=%v", slow, fast)
	}
	if DampFactor(0, 0.016) != 0 {
		t.Fatal("zero rate must freeze")
	}
}
