package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ClientID        string      `json:"client_id"`
	SceneParams     SceneParams `json:"scene_params"`
	CatalogDigest   DigestRef   `json:"catalog"`
}

type SceneParams struct {
	TickRateHz    int     `json:"tick_rate_hz"`
	RealScale     bool    `json:"real_scale"`
	DaysPerSecond float64 `json:"days_per_second"`
	Seed          int64   `json:"seed"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CATALOG (server -> client, sent once after WELCOME)
type CatalogMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Digest          string    `json:"digest"`
	Bodies          []BodyDef `json:"bodies"`
}

// BodyDef is the renderer-facing subset of a body's configuration.
type BodyDef struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Radius       float64 `json:"radius"`
	Distance     float64 `json:"distance,omitempty"`
	Parent       string  `json:"parent,omitempty"`
	AxialTiltDeg float64 `json:"axial_tilt_deg,omitempty"`
	TiltDeg      float64 `json:"tilt_deg,omitempty"` // rendered moon-plane tilt
	Retrograde   bool    `json:"retrograde,omitempty"`
}

// FRAME (server -> client, every tick)
type FrameMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	Mode            string       `json:"mode"`
	Camera          CameraPose   `json:"camera"`
	Bodies          []BodyHandle `json:"bodies"`
}

type CameraPose struct {
	Pos   [3]float64 `json:"pos"`
	Look  [3]float64 `json:"look"`
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
}

type BodyHandle struct {
	Name   string     `json:"name"`
	Pos    [3]float64 `json:"pos"`
	Radius float64    `json:"radius"`
	Spin   float64    `json:"spin"`
}

// INPUT (client -> server). Command selects what the rest of the message
// carries:
//
//	"focus"   Target, Lock
//	"home"    -
//	"auto"    -
//	"fly"     -
//	"idle"    -
//	"input"   Axes, LookYaw/LookPitch/LookActive (polled host input)
//	"program" Axes (scripted, server applies its validity window)
//	"freeze"  Frozen
type InputMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientID        string `json:"client_id"`
	Command         string `json:"command"`

	Target string `json:"target,omitempty"`
	Lock   bool   `json:"lock,omitempty"`
	Frozen bool   `json:"frozen,omitempty"`

	Axes       *AxesState `json:"axes,omitempty"`
	LookYaw    float64    `json:"look_yaw,omitempty"`
	LookPitch  float64    `json:"look_pitch,omitempty"`
	LookActive bool       `json:"look_active,omitempty"`
}

type AxesState struct {
	Forward  float64 `json:"forward"`
	Strafe   float64 `json:"strafe"`
	Vertical float64 `json:"vertical"`
	Boost    bool    `json:"boost,omitempty"`
}

// Input commands.
const (
	CmdFocus   = "focus"
	CmdHome    = "home"
	CmdAuto    = "auto"
	CmdFly     = "fly"
	CmdIdle    = "idle"
	CmdInput   = "input"
	CmdProgram = "program"
	CmdFreeze  = "freeze"
)

// STATUS (server -> client, throttled)
type StatusMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Mode         string  `json:"mode"`
	TargetType   string  `json:"target_type,omitempty"`
	TargetKey    string  `json:"target_key,omitempty"`
	Label        string  `json:"label,omitempty"`
	Distance     float64 `json:"distance"`
	ETASeconds   float64 `json:"eta_seconds"`
	TurnProgress float64 `json:"turn_progress"`
	TurnTarget   float64 `json:"turn_target"`
}
