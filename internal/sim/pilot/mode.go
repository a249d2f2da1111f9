package pilot

// Mode is the exclusive pilot mode. At most one pilot drives the camera at
// a time; the scene owns the transition function.
type Mode int

const (
	ModeIdle Mode = iota
	ModeFocusTravel
	ModeFocusTrack
	ModeAutoTravel
	ModeAutoOrbit
	ModeManualFly
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeFocusTravel:
		return "focus-travel"
	case ModeFocusTrack:
		return "focus-track"
	case ModeAutoTravel:
		return "auto-travel"
	case ModeAutoOrbit:
		return "auto-orbit"
	case ModeManualFly:
		return "manual-fly"
	}
	return "unknown"
}
