package pilot

import (
	"math"
	"testing"
	"time"

	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/tuning"
)

func newFly(clk *fakeClock) *ManualFlyPilot {
	return NewManualFlyPilot(tuning.Defaults().Fly, NewInputPort(), clk.now)
}

func TestFly_ForwardMovesAlongViewDirection(t *testing.T) {
	clk := newFakeClock()
	m := newFly(clk)
	cam := &Camera{Pos: geom.Vec3{X: 100}, Yaw: math.Pi / 2} // looking +Z

	m.Port().Set(Input{Axes: Axes{Forward: 1}})
	m.Update(cam, tickDt)

	if cam.Pos.Z <= 0 {
		t.Fatalf("camera did not move along +Z: %+v", cam.Pos)
	}
	if math.Abs(cam.Pos.X-100) > 1e-6 || math.Abs(cam.Pos.Y) > 1e-6 {
		t.Fatalf("motion leaked off-axis: %+v", cam.Pos)
	}
}

func TestFly_SpeedScalesWithOriginDistance(t *testing.T) {
	clk := newFakeClock()
	m := newFly(clk)

	run := func(x float64) float64 {
		cam := &Camera{Pos: geom.Vec3{X: x}}
		m.Port().Set(Input{Axes: Axes{Forward: 1}})
		m.Update(cam, tickDt)
		return cam.Pos.DistTo(geom.Vec3{X: x})
	}
	near, far := run(20), run(300)
	if far <= near {
		t.Fatalf("far step %v not larger than near step %v", far, near)
	}
}

func TestFly_BoostMultiplier(t *testing.T) {
	clk := newFakeClock()
	m := newFly(clk)
	cfg := tuning.Defaults().Fly

	step := func(boost bool) float64 {
		cam := &Camera{Pos: geom.Vec3{X: 100}}
		m.Port().Set(Input{Axes: Axes{Forward: 1, Boost: boost}})
		m.Update(cam, tickDt)
		return cam.Pos.DistTo(geom.Vec3{X: 100})
	}
	plain, boosted := step(false), step(true)
	if math.Abs(boosted/plain-cfg.BoostMul) > 1e-6 {
		t.Fatalf("boost ratio = %v, want %v", boosted/plain, cfg.BoostMul)
	}
}

func TestFly_MouseLookRepointsAhead(t *testing.T) {
	clk := newFakeClock()
	m := newFly(clk)
	cfg := tuning.Defaults().Fly
	cam := &Camera{Pos: geom.Vec3{X: 10}}

	m.Port().Set(Input{LookActive: true, LookYaw: 100})
	m.Update(cam, tickDt)

	if cam.Yaw == 0 {
		t.Fatal("yaw unchanged by mouse look")
	}
	if d := cam.Look.DistTo(cam.Pos); math.Abs(d-cfg.LookAhead) > 1e-6 {
		t.Fatalf("look target %v ahead, want %v", d, cfg.LookAhead)
	}
}

func TestFly_ProgramInputExpires(t *testing.T) {
	clk := newFakeClock()
	m := newFly(clk)
	cam := &Camera{Pos: geom.Vec3{X: 100}}

	m.Program(Axes{Forward: 1})
	m.Update(cam, tickDt)
	moved := cam.Pos.DistTo(geom.Vec3{X: 100})
	if moved == 0 {
		t.Fatal("programmatic input ignored inside its validity window")
	}

	clk.advance(time.Duration(tuning.Defaults().Fly.ProgramTTLMs+50) * time.Millisecond)
	before := cam.Pos
	m.Update(cam, tickDt)
	if cam.Pos != before {
		t.Fatal("programmatic input still driving motion after expiry")
	}
}

func TestInputPort_HostAxesWinOverProgram(t *testing.T) {
	clk := newFakeClock()
	p := NewInputPort()
	p.Program(Axes{Forward: 1}, clk.now().Add(time.Hour))
	p.Set(Input{Axes: Axes{Forward: -1}})

	in := p.Sample(clk.now())
	if in.Axes.Forward != -1 {
		t.Fatalf("forward = %v, host input must win", in.Axes.Forward)
	}
}
