// Package snapshot persists the navigation session to disk so a server
// restart resumes the tour instead of starting over. Files are a one-line
// JSON header followed by a gob body, zstd-compressed.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
}

// SessionV1 captures everything needed to resume: scene clock, camera,
// roam session, and the integrator angle of every body.
type SessionV1 struct {
	Header Header `json:"header"`

	SavedAt       time.Time `json:"saved_at"`
	Seed          int64     `json:"seed"`
	RealScale     bool      `json:"real_scale"`
	DaysPerSecond float64   `json:"days_per_second"`
	CatalogDigest string    `json:"catalog_digest"`

	SimDays float64 `json:"sim_days"`
	Mode    string  `json:"mode"`

	Camera CameraV1      `json:"camera"`
	Roam   RoamV1        `json:"roam"`
	Bodies []BodyPhaseV1 `json:"bodies"`
}

type CameraV1 struct {
	Pos   [3]float64 `json:"pos"`
	Look  [3]float64 `json:"look"`
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
}

type RoamV1 struct {
	Phase       string     `json:"phase"`
	Focus       [3]float64 `json:"focus"`
	Waypoint    [3]float64 `json:"waypoint"`
	TargetType  string     `json:"target_type"`
	TargetKey   string     `json:"target_key"`
	TargetRad   float64    `json:"target_rad"`
	ArrivalDist float64    `json:"arrival_dist"`
	SpinSign    float64    `json:"spin_sign"`
	Strafe      float64    `json:"strafe"`

	TurnProgress float64   `json:"turn_progress"`
	TurnTarget   float64   `json:"turn_target"`
	HoldUntil    time.Time `json:"hold_until"`
	TravelStart  time.Time `json:"travel_start"`
	PreferInner  bool      `json:"prefer_inner"`
}

type BodyPhaseV1 struct {
	Name       string  `json:"name"`
	OrbitAngle float64 `json:"orbit_angle"`
	SpinAngle  float64 `json:"spin_angle"`
}

func WriteSession(path string, snap SessionV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSession(path string) (SessionV1, error) {
	var snap SessionV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is informational; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
