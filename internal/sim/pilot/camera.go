package pilot

import (
	"math"

	"solarpilot.ai/internal/sim/geom"
)

// pitchLimit keeps the camera off the poles so yaw stays well defined.
const pitchLimit = math.Pi/2 - 0.01

// Camera is the shared pose written by whichever pilot is active.
// Orientation is carried as yaw/pitch plus the orbit-controls look target;
// the renderer derives its quaternion from either.
type Camera struct {
	Pos   geom.Vec3 `json:"pos"`
	Look  geom.Vec3 `json:"look"`
	Yaw   float64   `json:"yaw"`
	Pitch float64   `json:"pitch"`
}

// Forward is the unit view direction from yaw/pitch.
func (c *Camera) Forward() geom.Vec3 {
	cp := math.Cos(c.Pitch)
	return geom.Vec3{
		X: cp * math.Cos(c.Yaw),
		Y: math.Sin(c.Pitch),
		Z: cp * math.Sin(c.Yaw),
	}
}

// FaceLook re-derives yaw/pitch from the current look target.
func (c *Camera) FaceLook() {
	dir := c.Look.Sub(c.Pos)
	if dir.Len() < 1e-9 {
		return
	}
	d := dir.Norm()
	c.Yaw = math.Atan2(d.Z, d.X)
	c.Pitch = geom.Clamp(math.Asin(geom.Clamp(d.Y, -1, 1)), -pitchLimit, pitchLimit)
}

// OffsetLook rotates the look direction by yaw/pitch offsets without
// moving the camera, preserving the look distance.
func (c *Camera) OffsetLook(yawOff, pitchOff float64) {
	dir := c.Look.Sub(c.Pos)
	dist := dir.Len()
	if dist < 1e-9 {
		return
	}
	d := dir.Norm()
	yaw := math.Atan2(d.Z, d.X) + yawOff
	pitch := geom.Clamp(math.Asin(geom.Clamp(d.Y, -1, 1))+pitchOff, -pitchLimit, pitchLimit)
	cp := math.Cos(pitch)
	nd := geom.Vec3{X: cp * math.Cos(yaw), Y: math.Sin(pitch), Z: cp * math.Sin(yaw)}
	c.Look = c.Pos.Add(nd.Scale(dist))
	c.Yaw = yaw
	c.Pitch = pitch
}
