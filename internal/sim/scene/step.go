package scene

import (
	"encoding/json"
	"time"

	"solarpilot.ai/internal/protocol"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/pilot"
)

func (s *Scene) step(dt float64, joins []JoinRequest, leaves []string, inputs []InputEnvelope) {
	stepStart := time.Now()
	nowTick := s.tick.Load()
	now := s.now()

	// Leaves and joins apply deterministically at the tick boundary.
	for _, id := range leaves {
		if _, ok := s.clients[id]; ok {
			delete(s.clients, id)
			s.log.Printf("leave client=%s", id)
		}
	}
	for _, req := range joins {
		resp := s.joinClient(req)
		if req.Resp != nil {
			req.Resp <- resp
		}
	}

	// Inputs apply in server receive order.
	for _, env := range inputs {
		s.applyInput(env)
	}

	// Advance kinematics, then let the active pilot drive the camera.
	s.simDays += dt * s.cfg.DaysPerSecond
	s.integrate(dt * s.cfg.DaysPerSecond)

	switch s.active {
	case pilotFocus:
		if released := s.focus.Update(&s.cam, s.reg, dt, &s.scratch); released {
			// Drifting out of range hands the camera back to the tour.
			s.focus.Reset()
			s.roam.Reset()
			s.emitter.Reset()
			s.active = pilotRoam
		}
	case pilotRoam:
		s.roam.Update(&s.cam, s.reg, dt, &s.scratch)
	case pilotFly:
		s.fly.Update(&s.cam, dt)
	}

	st := s.buildStatus()
	s.lastStatus = st
	s.emitStatus(now, nowTick, st)

	s.broadcastFrame(nowTick)

	if s.snapshotSink != nil && nowTick != 0 && s.opts.SnapshotEveryTicks > 0 &&
		nowTick%uint64(s.opts.SnapshotEveryTicks) == 0 {
		snap := s.ExportSession(nowTick)
		select {
		case s.snapshotSink <- snap:
		default:
			// Drop when the sink is backed up.
		}
	}

	s.tick.Add(1)
	s.metrics.Store(Metrics{
		Tick:       nowTick + 1,
		Clients:    len(s.clients),
		Mode:       s.Mode().String(),
		StatusMode: st.Mode,
		StepMS:     float64(time.Since(stepStart).Microseconds()) / 1000.0,
		Queues: QueueDepths{
			Inbox: len(s.inbox),
			Join:  len(s.join),
			Leave: len(s.leave),
		},
	})
}

func (s *Scene) applyInput(env InputEnvelope) {
	msg := env.Msg
	switch msg.Command {
	case protocol.CmdFocus:
		if msg.Target == "" {
			return
		}
		s.setActive(pilotFocus)
		s.focus.SetTarget(msg.Target, msg.Lock)
	case protocol.CmdHome:
		s.setActive(pilotFocus)
		s.focus.Home()
	case protocol.CmdAuto:
		s.setActive(pilotRoam)
		// The tour picks its first target later this same tick; report the
		// brief acquiring state so clients see the mode change immediately.
		s.emitStatus(s.now(), s.tick.Load(), s.roam.Status(&s.cam))
	case protocol.CmdFly:
		s.setActive(pilotFly)
	case protocol.CmdIdle:
		s.setActive(pilotNone)
	case protocol.CmdFreeze:
		s.focus.SetFrozen(msg.Frozen)
	case protocol.CmdInput:
		switch s.active {
		case pilotFly:
			var ax pilot.Axes
			if msg.Axes != nil {
				ax = axesFromMsg(msg.Axes)
			}
			s.fly.Port().Set(pilot.Input{
				Axes:       ax,
				LookYaw:    msg.LookYaw,
				LookPitch:  msg.LookPitch,
				LookActive: msg.LookActive,
			})
		case pilotRoam:
			if msg.LookActive {
				sens := s.cfg.Fly.LookSensitivity
				s.roam.AddLookOffset(msg.LookYaw*sens, msg.LookPitch*sens)
			}
		}
	case protocol.CmdProgram:
		if msg.Axes != nil && s.active == pilotFly {
			s.fly.Program(axesFromMsg(msg.Axes))
		}
	default:
		s.log.Printf("drop input client=%s cmd=%q", env.ClientID, msg.Command)
	}
}

// setActive switches the exclusive pilot. The outgoing pilot resets so a
// later re-enable starts a fresh session, and the status throttle clears
// so the first status of the new mode always emits.
func (s *Scene) setActive(p activePilot) {
	if s.active == p {
		return
	}
	switch s.active {
	case pilotFocus:
		s.focus.Reset()
	case pilotRoam:
		s.roam.Reset()
	case pilotFly:
		s.fly.Reset()
	}
	s.active = p
	s.emitter.Reset()
}

func (s *Scene) buildStatus() pilot.Status {
	switch s.active {
	case pilotRoam:
		return s.roam.Status(&s.cam)
	case pilotFocus:
		st := pilot.Status{Mode: "focus", TargetKey: s.focus.Target()}
		st.Label = s.cat.QualifiedName(st.TargetKey)
		if h, ok := s.reg.Resolve(st.TargetKey); ok {
			st.Distance = s.cam.Pos.DistTo(h.Pos)
		}
		return st
	case pilotFly:
		return pilot.Status{Mode: "fly", Distance: s.cam.Pos.Len()}
	}
	return pilot.Status{Mode: "idle"}
}

func (s *Scene) emitStatus(now time.Time, tick uint64, st pilot.Status) {
	if !s.emitter.Offer(now, st) {
		return
	}
	s.broadcastStatus(tick, st)
	if s.statusLog != nil {
		_ = s.statusLog.WriteStatus(StatusEntry{Tick: tick, At: now, Mode: s.Mode().String(), S: st})
	}
}

func (s *Scene) broadcastStatus(tick uint64, st pilot.Status) {
	msg := protocol.StatusMsg{
		Type:            protocol.TypeStatus,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Mode:            st.Mode,
		TargetType:      st.TargetType,
		TargetKey:       st.TargetKey,
		Label:           st.Label,
		Distance:        st.Distance,
		ETASeconds:      st.ETASeconds,
		TurnProgress:    st.TurnProgress,
		TurnTarget:      st.TurnTarget,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, cl := range s.clients {
		sendLatest(cl.Out, b)
	}
}

func (s *Scene) broadcastFrame(tick uint64) {
	if len(s.clients) == 0 {
		return
	}
	msg := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Mode:            s.Mode().String(),
		Camera: protocol.CameraPose{
			Pos:   v3(s.cam.Pos),
			Look:  v3(s.cam.Look),
			Yaw:   s.cam.Yaw,
			Pitch: s.cam.Pitch,
		},
		Bodies: make([]protocol.BodyHandle, 0, len(s.bodies)),
	}
	for _, st := range s.bodies {
		msg.Bodies = append(msg.Bodies, protocol.BodyHandle{
			Name:   st.body.Name,
			Pos:    v3(st.pos),
			Radius: st.body.Radius,
			Spin:   st.spinAngle,
		})
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, cl := range s.clients {
		sendLatest(cl.Out, b)
	}
}

func axesFromMsg(a *protocol.AxesState) pilot.Axes {
	return pilot.Axes{Forward: a.Forward, Strafe: a.Strafe, Vertical: a.Vertical, Boost: a.Boost}
}

func v3(v geom.Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// sendLatest delivers without blocking the loop: when the client buffer is
// full the oldest queued message is dropped in favor of the new one.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
