package geom

import "math"

const (
	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
	TwoPi   = 2 * math.Pi
)

// WrapAngle folds a into (-π, π].
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= TwoPi
	}
	for a <= -math.Pi {
		a += TwoPi
	}
	return a
}

// Wrap360 folds degrees into [0, 360).
func Wrap360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// ShortestDelta returns the signed shortest angular path from a to b,
// both in radians, result in (-π, π].
func ShortestDelta(a, b float64) float64 {
	return WrapAngle(b - a)
}

// Clamp bounds x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// DampFactor converts a per-second exponential approach rate into a
// per-step lerp fraction for a step of dt seconds. Rate 0 means frozen;
// large rates saturate at 1 (snap).
func DampFactor(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}
