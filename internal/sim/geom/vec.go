package geom

import "math"

// Vec3 is a world-space vector. Y is up; orbits lie in the XZ plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var (
	// Up is the world up axis.
	Up = Vec3{Y: 1}
	// FallbackDir substitutes for degenerate (near-zero) vectors before
	// normalization so NaNs never reach the render pose.
	FallbackDir = Vec3{X: 1}
)

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) DistTo(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Norm returns the unit vector, or FallbackDir when v is too short to
// normalize safely.
func (v Vec3) Norm() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return FallbackDir
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Lerp moves v toward o by fraction t in [0,1].
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Azimuth returns the angle of v projected onto the XZ plane, in radians.
func (v Vec3) Azimuth() float64 {
	return math.Atan2(v.Z, v.X)
}
