package pilot

import (
	"testing"

	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/tuning"
)

func newFocus() *FocusPilot {
	return NewFocusPilot(tuning.Defaults().Focus, catalog.Default())
}

func TestFocus_TravelSettlesIntoTrack(t *testing.T) {
	f := newFocus()
	reg := stdRegistry()
	cam := &Camera{Pos: geom.Vec3{X: 500, Y: 200}}

	f.SetTarget("Mars", false)
	if f.Mode() != ModeFocusTravel {
		t.Fatalf("mode = %v, want focus-travel", f.Mode())
	}
	for i := 0; i < 5000 && f.Mode() != ModeFocusTrack; i++ {
		if released := f.Update(cam, reg, tickDt, &geom.Scratch{}); released {
			t.Fatal("released while still traveling")
		}
	}
	if f.Mode() != ModeFocusTrack {
		t.Fatal("never settled into tracking")
	}

	mars, _ := reg.Resolve("Mars")
	if d := cam.Look.DistTo(mars.Pos); d > tuning.Defaults().Focus.SettleTolerance {
		t.Fatalf("look target %v off the body, want within settle tolerance", d)
	}
}

func TestFocus_UnresolvedTargetIsNoop(t *testing.T) {
	f := newFocus()
	reg := NewRegistry() // empty
	cam := &Camera{Pos: geom.Vec3{X: 10, Y: 5, Z: 10}, Look: geom.Vec3{X: 1}}
	before := *cam

	f.SetTarget("Mars", false)
	if released := f.Update(cam, reg, tickDt, &geom.Scratch{}); released {
		t.Fatal("release on unresolved target")
	}
	if *cam != before {
		t.Fatalf("camera moved on unresolved target: %+v -> %+v", before, *cam)
	}
}

func TestFocus_AutoReleaseWhenDriftedAway(t *testing.T) {
	f := newFocus()
	reg := stdRegistry()
	cfg := tuning.Defaults().Focus

	mars, _ := reg.Resolve("Mars")
	cam := &Camera{Pos: mars.Pos.Add(geom.Vec3{X: 5, Y: 2, Z: 5})}
	f.SetTarget("Mars", false)
	f.state = focusTrack

	// Teleport the camera far beyond the release distance.
	far := mars.Radius*cfg.ReleaseRadiusMul + cfg.ReleaseFloor + 100
	cam.Pos = mars.Pos.Add(geom.Vec3{X: far})
	if released := f.Update(cam, reg, tickDt, &geom.Scratch{}); !released {
		t.Fatal("expected release after drifting past the release distance")
	}
}

func TestFocus_LockSuppressesReleaseForPlanets(t *testing.T) {
	f := newFocus()
	reg := stdRegistry()
	cfg := tuning.Defaults().Focus

	mars, _ := reg.Resolve("Mars")
	f.SetTarget("Mars", true)
	f.state = focusTrack
	cam := &Camera{Pos: mars.Pos.Add(geom.Vec3{X: mars.Radius*cfg.ReleaseRadiusMul + cfg.ReleaseFloor + 100})}
	if released := f.Update(cam, reg, tickDt, &geom.Scratch{}); released {
		t.Fatal("locked planet focus must never release")
	}

	// The lock does not extend to moons.
	f.SetTarget("Moon", true)
	f.state = focusTrack
	moon, _ := reg.Resolve("Moon")
	cam.Pos = moon.Pos.Add(geom.Vec3{X: 500})
	if released := f.Update(cam, reg, tickDt, &geom.Scratch{}); !released {
		t.Fatal("locked moon focus must still release")
	}
}

func TestFocus_MoonOffsetClearsParent(t *testing.T) {
	f := newFocus()
	cfg := tuning.Defaults().Focus
	reg := NewRegistry()
	// Moon nearly touching its parent, so the naive offset would land
	// inside the planet.
	reg.Put("Jupiter", geom.Vec3{}, 14)
	reg.Put("Io", geom.Vec3{X: 14.5}, 1.2)

	body := catalog.Default().ByName["Io"]
	h, _ := reg.Resolve("Io")
	desired := f.moonOffset(body, h, reg, &geom.Scratch{})

	minClear := 14 * cfg.MoonParentClearance
	if d := desired.DistTo(geom.Vec3{}); d < minClear-1e-9 {
		t.Fatalf("desired camera point %.3f from parent center, want >= %.3f", d, minClear)
	}
}

func TestFocus_FrozenUsesTighterOffset(t *testing.T) {
	f := newFocus()
	reg := stdRegistry()
	mars, _ := reg.Resolve("Mars")

	run := func(frozen bool) float64 {
		f.Reset()
		f.SetFrozen(frozen)
		f.SetTarget("Mars", false)
		cam := &Camera{Pos: geom.Vec3{X: 500}}
		for i := 0; i < 5000 && f.Mode() != ModeFocusTrack; i++ {
			f.Update(cam, reg, tickDt, &geom.Scratch{})
		}
		return cam.Pos.DistTo(mars.Pos)
	}

	if dFrozen, dLive := run(true), run(false); dFrozen >= dLive {
		t.Fatalf("frozen offset %v not tighter than live %v", dFrozen, dLive)
	}
}
