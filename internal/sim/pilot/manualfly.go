package pilot

import (
	"time"

	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/tuning"
)

// ManualFlyPilot integrates continuous 6DOF input into camera motion.
// Speed scales with distance from the world origin so motion feels
// proportionate near a planet and out in open space alike.
type ManualFlyPilot struct {
	cfg  tuning.Fly
	port *InputPort
	now  func() time.Time
}

func NewManualFlyPilot(cfg tuning.Fly, port *InputPort, now func() time.Time) *ManualFlyPilot {
	if now == nil {
		now = time.Now
	}
	return &ManualFlyPilot{cfg: cfg, port: port, now: now}
}

// Port exposes the input port for the host/transport to populate.
func (m *ManualFlyPilot) Port() *InputPort { return m.port }

// Program drives the same motion model from a scripted source; the axes
// expire after the configured validity window.
func (m *ManualFlyPilot) Program(ax Axes) {
	ttl := time.Duration(m.cfg.ProgramTTLMs) * time.Millisecond
	m.port.Program(ax, m.now().Add(ttl))
}

// Reset drops held input on mode switches.
func (m *ManualFlyPilot) Reset() { m.port.Reset() }

// Update advances one tick of fly motion.
func (m *ManualFlyPilot) Update(cam *Camera, dt float64) {
	in := m.port.Sample(m.now())

	// Mouse-look applies immediately: re-derive orientation from spherical
	// angles, then re-point the look target a fixed distance ahead.
	if in.LookActive {
		cam.Yaw += in.LookYaw * m.cfg.LookSensitivity
		cam.Pitch = geom.Clamp(cam.Pitch-in.LookPitch*m.cfg.LookSensitivity, -pitchLimit, pitchLimit)
	}

	fwd := cam.Forward()
	right := fwd.Cross(geom.Up).Norm()

	move := fwd.Scale(in.Axes.Forward).
		Add(right.Scale(in.Axes.Strafe)).
		Add(geom.Up.Scale(in.Axes.Vertical))
	if move.Len() > 1e-9 {
		speed := geom.Clamp(cam.Pos.Len()*m.cfg.SpeedDistFactor, m.cfg.SpeedMin, m.cfg.SpeedMax)
		if in.Axes.Boost {
			speed *= m.cfg.BoostMul
		}
		cam.Pos = cam.Pos.Add(move.Norm().Scale(speed * dt))
	}

	cam.Look = cam.Pos.Add(cam.Forward().Scale(m.cfg.LookAhead))
}
