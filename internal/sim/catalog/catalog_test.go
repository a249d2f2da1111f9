package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()
	if c.Star() == nil {
		t.Fatal("default catalog has no star")
	}
	if len(c.Planets()) != 8 {
		t.Fatalf("planets = %d, want 8", len(c.Planets()))
	}
	if len(c.Fields()) != 3 {
		t.Fatalf("fields = %d, want 3", len(c.Fields()))
	}
	if got := len(c.Moons("Jupiter")); got != 4 {
		t.Fatalf("jupiter moons = %d, want 4", got)
	}
	if c.Digest == "" {
		t.Fatal("missing digest")
	}
}

func TestQualifiedName(t *testing.T) {
	c := Default()
	if got := c.QualifiedName("Europa"); got != "Europa (Jupiter)" {
		t.Fatalf("qualified = %q", got)
	}
	if got := c.QualifiedName("Mars"); got != "Mars" {
		t.Fatalf("qualified = %q", got)
	}
	if got := c.QualifiedName("nope"); got != "nope" {
		t.Fatalf("unknown name should pass through, got %q", got)
	}
}

func TestLoad_RejectsOrphanMoon(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bodies.yaml")
	yaml := `bodies:
  - name: Earth
    kind: planet
    radius: 4
    distance: 160
    orbit_period_days: 365.25
    rotation_period_days: 1
  - name: Charon
    kind: moon
    parent: Pluto
    radius: 0.4
    distance: 3
    orbit_period_days: 6.39
    rotation_period_days: 6.39
`
	if err := os.WriteFile(p, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for moon with unknown parent")
	}
}

func TestLoad_RoundTripDigestStable(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bodies.yaml")
	yaml := `bodies:
  - name: Sun
    kind: star
    radius: 30
    rotation_period_days: 25.38
  - name: Earth
    kind: planet
    radius: 4
    distance: 160
    orbit_period_days: 365.25
    rotation_period_days: 1
    axial_tilt_deg: 23.44
`
	if err := os.WriteFile(p, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Digest != b.Digest {
		t.Fatalf("digest unstable: %s vs %s", a.Digest, b.Digest)
	}
}
