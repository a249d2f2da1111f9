// Package scene is the single-threaded authoritative camera simulation.
// One goroutine owns all state: body kinematics, the exclusive pilot, and
// client sessions. Everything else talks to it through channels.
package scene

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"solarpilot.ai/internal/persistence/snapshot"
	"solarpilot.ai/internal/protocol"
	"solarpilot.ai/internal/sim/catalog"
	"solarpilot.ai/internal/sim/geom"
	"solarpilot.ai/internal/sim/pilot"
	"solarpilot.ai/internal/sim/pose"
	"solarpilot.ai/internal/sim/tuning"
)

type Options struct {
	Seed               int64
	SnapshotEveryTicks int
}

type JoinRequest struct {
	ClientName string
	Out        chan []byte
	Resp       chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Catalog protocol.CatalogMsg
}

type InputEnvelope struct {
	ClientID string
	Msg      protocol.InputMsg
}

// StatusLogger receives every emitted status snapshot. Implemented in
// internal/persistence/*; may be nil.
type StatusLogger interface {
	WriteStatus(entry StatusEntry) error
}

type StatusEntry struct {
	Tick uint64       `json:"tick"`
	At   time.Time    `json:"at"`
	Mode string       `json:"mode"`
	S    pilot.Status `json:"status"`
}

// activePilot selects which pilot owns the camera this tick.
type activePilot int

const (
	pilotNone activePilot = iota
	pilotFocus
	pilotRoam
	pilotFly
)

type clientState struct {
	Out chan []byte
}

// Scene owns the camera and the body registry.
// All state must be accessed only from the scene loop goroutine.
type Scene struct {
	cfg  tuning.Tuning
	opts Options
	cat  *catalog.Catalog
	log  *log.Logger

	tick atomic.Uint64

	bodies  []*bodyState
	byName  map[string]*bodyState
	reg     *pilot.Registry
	simDays float64

	cam    pilot.Camera
	active activePilot
	focus  *pilot.FocusPilot
	roam   *pilot.AutoRoamPilot
	fly    *pilot.ManualFlyPilot

	emitter    *pilot.Emitter
	statusLog  StatusLogger
	lastStatus pilot.Status

	snapshotSink chan<- snapshot.SessionV1

	clients       map[string]*clientState
	nextClientNum atomic.Uint64

	join  chan JoinRequest
	leave chan string
	inbox chan InputEnvelope
	stop  chan struct{}

	now     func() time.Time
	rng     *rand.Rand
	scratch geom.Scratch

	metrics atomic.Value // Metrics
}

// Metrics is a lock-free view of loop health for /metrics and admin.
type Metrics struct {
	Tick       uint64      `json:"tick"`
	Clients    int         `json:"clients"`
	Mode       string      `json:"mode"`
	StatusMode string      `json:"status_mode"`
	StepMS     float64     `json:"step_ms"`
	Queues     QueueDepths `json:"queues"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// Metrics returns the snapshot published by the last completed tick.
func (s *Scene) Metrics() Metrics {
	m, _ := s.metrics.Load().(Metrics)
	return m
}

// New builds a scene from solved initial phases. now may be nil (wall
// clock); the rng seed comes from opts so tours are reproducible.
func New(cat *catalog.Catalog, cfg tuning.Tuning, opts Options, phases map[string]pose.Phase, logger *log.Logger, now func() time.Time) *Scene {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[scene] ", log.LstdFlags|log.Lmicroseconds)
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	s := &Scene{
		cfg:     cfg,
		opts:    opts,
		cat:     cat,
		log:     logger,
		reg:     pilot.NewRegistry(),
		focus:   pilot.NewFocusPilot(cfg.Focus, cat),
		roam:    pilot.NewAutoRoamPilot(cfg.Roam, cfg.RealScale, cat, rng, now),
		fly:     pilot.NewManualFlyPilot(cfg.Fly, pilot.NewInputPort(), now),
		emitter: pilot.NewEmitter(time.Duration(cfg.Status.MinIntervalMs) * time.Millisecond),
		clients: map[string]*clientState{},
		join:    make(chan JoinRequest, 16),
		leave:   make(chan string, 16),
		inbox:   make(chan InputEnvelope, 256),
		stop:    make(chan struct{}),
		now:     now,
		rng:     rng,
	}
	s.initBodies(phases)
	s.integrate(0)
	s.placeHomeCamera()
	return s
}

// placeHomeCamera parks the camera above Earth looking at it, matching the
// focus pilot's home pose so the first "home" command is a no-op glide.
func (s *Scene) placeHomeCamera() {
	h, ok := s.reg.Resolve("Earth")
	if !ok {
		s.cam.Pos = geom.Vec3{X: 0, Y: 40, Z: 200}
		s.cam.Look = geom.Vec3{}
		s.cam.FaceLook()
		return
	}
	off := geom.Vec3{X: 1, Y: 0.45, Z: 1}.Norm().Scale(s.cfg.Focus.HomeOffset)
	s.cam.Pos = h.Pos.Add(off)
	s.cam.Look = h.Pos
	s.cam.FaceLook()
}

func (s *Scene) SetStatusLogger(l StatusLogger)               { s.statusLog = l }
func (s *Scene) SetSnapshotSink(ch chan<- snapshot.SessionV1) { s.snapshotSink = ch }

func (s *Scene) Join() chan<- JoinRequest    { return s.join }
func (s *Scene) Leave() chan<- string        { return s.leave }
func (s *Scene) Inbox() chan<- InputEnvelope { return s.inbox }

func (s *Scene) CurrentTick() uint64 { return s.tick.Load() }
func (s *Scene) TickRateHz() int     { return s.cfg.TickRateHz }

func (s *Scene) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := 1.0 / float64(s.cfg.TickRateHz)

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingInputs []InputEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-s.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-s.inbox:
			pendingInputs = append(pendingInputs, env)
		case <-ticker.C:
			s.step(dt, pendingJoins, pendingLeaves, pendingInputs)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingInputs = pendingInputs[:0]
		}
	}
}

func (s *Scene) Stop() { close(s.stop) }

// StepOnce advances the scene by a single tick with the same ordering as
// the server loop. Intended for tests and deterministic replays.
func (s *Scene) StepOnce(dt float64, inputs []InputEnvelope) uint64 {
	t := s.tick.Load()
	s.step(dt, nil, nil, inputs)
	return t
}

// Camera returns a copy of the current camera pose.
func (s *Scene) Camera() pilot.Camera { return s.cam }

// Mode reports the exclusive pilot mode.
func (s *Scene) Mode() pilot.Mode {
	switch s.active {
	case pilotFocus:
		return s.focus.Mode()
	case pilotRoam:
		return s.roam.Mode()
	case pilotFly:
		return pilot.ModeManualFly
	}
	return pilot.ModeIdle
}

func (s *Scene) joinClient(req JoinRequest) JoinResponse {
	n := s.nextClientNum.Add(1)
	id := fmt.Sprintf("C%04d", n)
	s.clients[id] = &clientState{Out: req.Out}
	s.log.Printf("join client=%s name=%q", id, req.ClientName)

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ClientID:        id,
		SceneParams: protocol.SceneParams{
			TickRateHz:    s.cfg.TickRateHz,
			RealScale:     s.cfg.RealScale,
			DaysPerSecond: s.cfg.DaysPerSecond,
			Seed:          s.opts.Seed,
		},
		CatalogDigest: protocol.DigestRef{Digest: s.cat.Digest, Count: len(s.cat.Bodies)},
	}
	return JoinResponse{Welcome: welcome, Catalog: s.catalogMsg()}
}

func (s *Scene) catalogMsg() protocol.CatalogMsg {
	msg := protocol.CatalogMsg{
		Type:            protocol.TypeCatalog,
		ProtocolVersion: protocol.Version,
		Digest:          s.cat.Digest,
		Bodies:          make([]protocol.BodyDef, 0, len(s.cat.Bodies)),
	}
	for i := range s.cat.Bodies {
		b := &s.cat.Bodies[i]
		def := protocol.BodyDef{
			Name:         b.Name,
			Kind:         string(b.Kind),
			Radius:       b.Radius,
			Distance:     b.Distance,
			Parent:       b.Parent,
			AxialTiltDeg: b.AxialTiltDeg,
		}
		if st := s.byName[b.Name]; st != nil && b.Kind == catalog.KindMoon {
			def.TiltDeg = st.tiltDeg
			def.Retrograde = st.retrograde
		}
		msg.Bodies = append(msg.Bodies, def)
	}
	return msg
}
