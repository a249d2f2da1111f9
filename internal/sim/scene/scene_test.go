package scene

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"solarpilot.ai/internal/protocol"
	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/pose"
	"solarpilot.ai/internal/sim/tuning"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestScene(t *testing.T, clk *fakeClock) *Scene {
	t.Helper()
	cat := catalog.Default()
	phases := map[string]pose.Phase{}
	for i := range cat.Bodies {
		phases[cat.Bodies[i].Name] = pose.Phase{}
	}
	cfg := tuning.Defaults()
	return New(cat, cfg, Options{Seed: 7}, phases, nil, clk.now)
}

func stepN(s *Scene, clk *fakeClock, n int, inputs []InputEnvelope) {
	dt := 1.0 / float64(s.cfg.TickRateHz)
	for i := 0; i < n; i++ {
		s.StepOnce(dt, inputs)
		inputs = nil
		clk.advance(time.Second / time.Duration(s.cfg.TickRateHz))
	}
}

func input(cmd string) []InputEnvelope {
	return []InputEnvelope{{ClientID: "C0001", Msg: protocol.InputMsg{
		Type: protocol.TypeInput, Command: cmd,
	}}}
}

func TestIntegrate_MoonTracksParent(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newTestScene(t, clk)

	earth := s.byName["Earth"]
	moon := s.byName["Moon"]
	for i := 0; i < 300; i++ {
		s.integrate(0.5)
		if got := earth.pos.Len(); math.Abs(got-160) > 1e-6 {
			t.Fatalf("earth distance drifted: %v", got)
		}
		if got := moon.pos.DistTo(earth.pos); math.Abs(got-10) > 1e-6 {
			t.Fatalf("moon-earth distance drifted: %v", got)
		}
	}
}

func TestIntegrate_RetrogradeRunsBackwards(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	cat := catalog.Default()
	phases := map[string]pose.Phase{
		"Triton": {Retrograde: true},
	}
	s := New(cat, tuning.Defaults(), Options{Seed: 7}, phases, nil, clk.now)

	triton := s.byName["Triton"]
	before := triton.orbitAngle
	s.integrate(1.0)
	after := triton.orbitAngle
	if after >= before {
		t.Fatalf("retrograde orbit angle advanced forward: %v -> %v", before, after)
	}

	earth := s.byName["Earth"]
	if earth.orbitAngle <= 0 {
		t.Fatalf("prograde orbit angle did not advance: %v", earth.orbitAngle)
	}
}

func TestModeTransitions_ExclusiveAndReset(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newTestScene(t, clk)

	if got := s.Mode().String(); got != "idle" {
		t.Fatalf("initial mode = %q", got)
	}

	stepN(s, clk, 1, input(protocol.CmdAuto))
	if s.active != pilotRoam {
		t.Fatalf("auto command did not enable roam")
	}
	// Give the tour time to pick a target and leave "acquiring".
	stepN(s, clk, 60, nil)
	if s.roam.State().TargetType == "" {
		t.Fatalf("roam never acquired a target")
	}

	stepN(s, clk, 1, input(protocol.CmdFly))
	if s.Mode().String() != "manual-fly" {
		t.Fatalf("fly command did not switch mode: %s", s.Mode())
	}

	// Re-enabling the tour must start a fresh session.
	stepN(s, clk, 1, input(protocol.CmdAuto))
	if st := s.roam.State(); st.TargetType != "" || st.TurnProgress != 0 {
		t.Fatalf("roam session survived a mode switch: %+v", st)
	}
}

func TestFocusCommand_TracksBody(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newTestScene(t, clk)

	env := []InputEnvelope{{Msg: protocol.InputMsg{Command: protocol.CmdFocus, Target: "Mars"}}}
	stepN(s, clk, 1, env)
	if s.active != pilotFocus {
		t.Fatalf("focus command did not enable focus pilot")
	}
	stepN(s, clk, 600, nil)

	mars := s.byName["Mars"]
	dist := s.cam.Pos.DistTo(mars.pos)
	want := mars.body.Radius * s.cfg.Focus.PlanetOffsetMul
	if math.Abs(dist-want) > 1.0 {
		t.Fatalf("camera did not settle at focus offset: dist=%v want~%v", dist, want)
	}
	if st := s.buildStatus(); st.Mode != "focus" || st.TargetKey != "Mars" {
		t.Fatalf("focus status = %+v", st)
	}
}

func TestStatusBroadcast_FirstAfterEnableIsAcquiring(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newTestScene(t, clk)

	out := make(chan []byte, 64)
	resp := make(chan JoinResponse, 1)
	s.step(1.0/30, []JoinRequest{{ClientName: "probe", Out: out, Resp: resp}}, nil, nil)
	welcome := <-resp
	if welcome.Welcome.ClientID == "" {
		t.Fatalf("no client id assigned")
	}
	if welcome.Catalog.Digest != s.cat.Digest {
		t.Fatalf("catalog digest mismatch")
	}
	drain(out)

	stepN(s, clk, 1, input(protocol.CmdAuto))

	var first *protocol.StatusMsg
	for _, raw := range drain(out) {
		base, err := protocol.DecodeBase(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type != protocol.TypeStatus {
			continue
		}
		var msg protocol.StatusMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal status: %v", err)
		}
		first = &msg
		break
	}
	if first == nil {
		t.Fatalf("no status emitted after enabling the tour")
	}
	if first.Mode != "acquiring" {
		t.Fatalf("first status mode = %q, want acquiring", first.Mode)
	}
}

func TestFrameBroadcast_CarriesBodies(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newTestScene(t, clk)

	out := make(chan []byte, 64)
	s.step(1.0/30, []JoinRequest{{ClientName: "probe", Out: out}}, nil, nil)

	var frame *protocol.FrameMsg
	for _, raw := range drain(out) {
		base, _ := protocol.DecodeBase(raw)
		if base.Type != protocol.TypeFrame {
			continue
		}
		var msg protocol.FrameMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		frame = &msg
	}
	if frame == nil {
		t.Fatalf("no frame broadcast")
	}
	// Fields have no pose; every star, planet and moon does.
	want := 0
	for i := range s.cat.Bodies {
		if s.cat.Bodies[i].Kind != catalog.KindField {
			want++
		}
	}
	if len(frame.Bodies) != want {
		t.Fatalf("frame bodies = %d, want %d", len(frame.Bodies), want)
	}
	if frame.Mode != "idle" {
		t.Fatalf("frame mode = %q", frame.Mode)
	}
}

func TestSessionRoundtrip_ResumesTour(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newTestScene(t, clk)

	stepN(s, clk, 1, input(protocol.CmdAuto))
	stepN(s, clk, 120, nil)
	if s.roam.State().TargetType == "" {
		t.Fatalf("tour never picked a target")
	}

	snap := s.ExportSession(s.CurrentTick())

	clk2 := &fakeClock{t: clk.t}
	s2 := newTestScene(t, clk2)
	s2.RestoreSession(snap)

	if s2.active != pilotRoam {
		t.Fatalf("restore did not resume the tour")
	}
	if got, want := s2.roam.State().TargetKey, s.roam.State().TargetKey; got != want {
		t.Fatalf("target key = %q, want %q", got, want)
	}
	if s2.cam.Pos != s.cam.Pos {
		t.Fatalf("camera pos = %+v, want %+v", s2.cam.Pos, s.cam.Pos)
	}
	if math.Abs(s2.simDays-s.simDays) > 1e-12 {
		t.Fatalf("sim clock = %v, want %v", s2.simDays, s.simDays)
	}

	// The resumed scene keeps driving without re-acquiring.
	stepN(s2, clk2, 30, nil)
	if s2.roam.State().TargetKey != snap.Roam.TargetKey && snap.Roam.TargetKey != "" {
		t.Fatalf("resumed tour dropped its target")
	}
}

func drain(ch chan []byte) [][]byte {
	var out [][]byte
	for {
		select {
		case b := <-ch:
			out = append(out, b)
		default:
			return out
		}
	}
}
