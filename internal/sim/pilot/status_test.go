package pilot

import (
	"testing"
	"time"
)

func TestEmitter_ThrottlesByInterval(t *testing.T) {
	clk := newFakeClock()
	e := NewEmitter(200 * time.Millisecond)

	s := Status{Mode: "travel", TargetKey: "Mars", Distance: 100}
	if !e.Offer(clk.now(), s) {
		t.Fatal("first offer must emit")
	}
	s.Distance = 50
	if e.Offer(clk.now().Add(50*time.Millisecond), s) {
		t.Fatal("emitted inside the throttle window")
	}
	if !e.Offer(clk.now().Add(250*time.Millisecond), s) {
		t.Fatal("changed status after the window must emit")
	}
}

func TestEmitter_SuppressesUnchanged(t *testing.T) {
	clk := newFakeClock()
	e := NewEmitter(200 * time.Millisecond)

	s := Status{Mode: "orbit", TargetKey: "Io", Distance: 12, TurnProgress: 0.5, TurnTarget: 1.5}
	if !e.Offer(clk.now(), s) {
		t.Fatal("first offer must emit")
	}
	// Sub-rounding jitter: same signature, no emission even after the window.
	s.Distance = 12.3
	s.TurnProgress = 0.51
	if e.Offer(clk.now().Add(time.Second), s) {
		t.Fatal("jitter below signature resolution must not emit")
	}
	s.Mode = "travel"
	if !e.Offer(clk.now().Add(2*time.Second), s) {
		t.Fatal("mode change must emit")
	}
}

func TestEmitter_ResetForcesNextEmission(t *testing.T) {
	clk := newFakeClock()
	e := NewEmitter(200 * time.Millisecond)
	s := Status{Mode: "acquiring"}

	if !e.Offer(clk.now(), s) {
		t.Fatal("first offer must emit")
	}
	e.Reset()
	if !e.Offer(clk.now().Add(time.Millisecond), s) {
		t.Fatal("offer after reset must emit regardless of history")
	}
}
