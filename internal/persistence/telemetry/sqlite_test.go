package telemetry

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"solarpilot.ai/internal/persistence/snapshot"
	"solarpilot.ai/internal/sim/pilot"
	"solarpilot.ai/internal/sim/scene"
)

func entry(tick uint64, mode, key, label string) scene.StatusEntry {
	return scene.StatusEntry{
		Tick: tick,
		At:   time.Unix(int64(1000+tick), 0),
		Mode: "auto-travel",
		S:    pilot.Status{Mode: mode, TargetKey: key, Label: label},
	}
}

func TestSQLiteTelemetry_StatusesAndVisits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_ = s.WriteStatus(entry(1, "travel", "Europa", "Europa (Jupiter)"))
	_ = s.WriteStatus(entry(2, "orbit", "Europa", "Europa (Jupiter)"))
	_ = s.WriteStatus(entry(3, "orbit", "Europa", "Europa (Jupiter)"))
	_ = s.WriteStatus(entry(4, "travel", "", "oort-field"))
	_ = s.WriteStatus(entry(5, "orbit", "", "oort-field"))
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	statuses, err := s.RecentStatuses(10)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(statuses) != 5 {
		t.Fatalf("status rows = %d, want 5", len(statuses))
	}
	if statuses[0].Tick != 5 || statuses[0].Mode != "orbit" {
		t.Fatalf("newest status = %+v", statuses[0])
	}

	// Two arrivals: re-emitting the same orbit must not duplicate a visit.
	visits, err := s.Visits(10)
	if err != nil {
		t.Fatalf("visits: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("visit rows = %d, want 2", len(visits))
	}
	if visits[0].Label != "oort-field" || visits[1].TargetKey != "Europa" {
		t.Fatalf("visits = %+v", visits)
	}
}

func TestSQLiteTelemetry_EphemStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	blob := []byte(`{"epoch":"2026-08-29T10:00:00Z"}`)
	if err := s.PutSnapshot("2026-08-29T10", blob); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutSnapshot("2026-08-29T09", []byte(`old`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	epoch, got, err := s.LatestSnapshot()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if epoch != "2026-08-29T10" {
		t.Fatalf("latest epoch = %q", epoch)
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("blob mismatch: %q", got)
	}
}

func TestSQLiteTelemetry_RecordSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.RecordSnapshot("/data/session/000100.snap.zst", snapshot.SessionV1{
		Header:  snapshot.Header{Version: 1, Tick: 100},
		Seed:    42,
		SimDays: 12.5,
		Mode:    "auto-orbit",
	})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	snaps, err := s.Snapshots(5)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Tick != 100 || snaps[0].Mode != "auto-orbit" {
		t.Fatalf("snapshots = %+v", snaps)
	}
}
