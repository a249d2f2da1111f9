package scene

import (
	"solarpilot.ai/internal/persistence/snapshot"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/pilot"
)

// ExportSession captures the resumable session state at the given tick.
func (s *Scene) ExportSession(tick uint64) snapshot.SessionV1 {
	rs := s.roam.State()
	snap := snapshot.SessionV1{
		Header:        snapshot.Header{Version: 1, Tick: tick},
		SavedAt:       s.now(),
		Seed:          s.opts.Seed,
		RealScale:     s.cfg.RealScale,
		DaysPerSecond: s.cfg.DaysPerSecond,
		CatalogDigest: s.cat.Digest,
		SimDays:       s.simDays,
		Mode:          s.Mode().String(),
		Camera: snapshot.CameraV1{
			Pos:   v3(s.cam.Pos),
			Look:  v3(s.cam.Look),
			Yaw:   s.cam.Yaw,
			Pitch: s.cam.Pitch,
		},
		Roam: snapshot.RoamV1{
			Phase:        rs.PhaseName(),
			Focus:        v3(rs.Focus),
			Waypoint:     v3(rs.Waypoint),
			TargetType:   string(rs.TargetType),
			TargetKey:    rs.TargetKey,
			TargetRad:    rs.TargetRad,
			ArrivalDist:  rs.ArrivalDist,
			SpinSign:     rs.SpinSign,
			Strafe:       rs.Strafe,
			TurnProgress: rs.TurnProgress,
			TurnTarget:   rs.TurnTarget,
			HoldUntil:    rs.HoldUntil,
			TravelStart:  rs.TravelStart,
			PreferInner:  rs.PreferInner,
		},
		Bodies: make([]snapshot.BodyPhaseV1, 0, len(s.bodies)),
	}
	for _, st := range s.bodies {
		snap.Bodies = append(snap.Bodies, snapshot.BodyPhaseV1{
			Name:       st.body.Name,
			OrbitAngle: st.orbitAngle,
			SpinAngle:  st.spinAngle,
		})
	}
	return snap
}

// RestoreSession resumes from a snapshot. Bodies missing from the current
// catalog are skipped; the camera and roam session come back verbatim.
// Roam resumes only when the snapshot was in an auto mode, otherwise the
// scene starts idle.
func (s *Scene) RestoreSession(snap snapshot.SessionV1) {
	s.simDays = snap.SimDays
	for _, bp := range snap.Bodies {
		if st := s.byName[bp.Name]; st != nil {
			st.orbitAngle = bp.OrbitAngle
			st.spinAngle = bp.SpinAngle
		}
	}
	s.integrate(0)

	s.cam.Pos = fromV3(snap.Camera.Pos)
	s.cam.Look = fromV3(snap.Camera.Look)
	s.cam.Yaw = snap.Camera.Yaw
	s.cam.Pitch = snap.Camera.Pitch

	switch snap.Mode {
	case pilot.ModeAutoTravel.String(), pilot.ModeAutoOrbit.String():
		rs := pilot.RoamState{
			Focus:        fromV3(snap.Roam.Focus),
			Waypoint:     fromV3(snap.Roam.Waypoint),
			TargetType:   pilot.TargetType(snap.Roam.TargetType),
			TargetKey:    snap.Roam.TargetKey,
			TargetRad:    snap.Roam.TargetRad,
			ArrivalDist:  snap.Roam.ArrivalDist,
			SpinSign:     snap.Roam.SpinSign,
			Strafe:       snap.Roam.Strafe,
			TurnProgress: snap.Roam.TurnProgress,
			TurnTarget:   snap.Roam.TurnTarget,
			HoldUntil:    snap.Roam.HoldUntil,
			TravelStart:  snap.Roam.TravelStart,
			PreferInner:  snap.Roam.PreferInner,
		}
		s.roam.Restore(rs.WithPhaseName(snap.Roam.Phase))
		s.active = pilotRoam
	default:
		s.active = pilotNone
	}
	s.emitter.Reset()
}

func fromV3(v [3]float64) geom.Vec3 { return geom.Vec3{X: v[0], Y: v[1], Z: v[2]} }
