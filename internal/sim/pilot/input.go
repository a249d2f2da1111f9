package pilot

import (
	"time"

	"solarpilot.ai/internal/sim/geom"
)

// Axes is the continuous keyboard-style input: each axis in [-1,1], boost
// as a held modifier.
type Axes struct {
	Forward  float64 `json:"forward"`
	Strafe   float64 `json:"strafe"`
	Vertical float64 `json:"vertical"`
	Boost    bool    `json:"boost"`
}

// Input is one polled sample of the host's input state. Look deltas are
// consumed by the sampling pilot and must be re-reported each tick while a
// drag is active.
type Input struct {
	Axes       Axes
	LookYaw    float64 // yaw delta, input units
	LookPitch  float64 // pitch delta, input units
	LookActive bool
}

// InputPort is the explicit input abstraction: the host environment
// pushes state in, pilots poll it. No event listeners, no globals.
// The programmatic channel carries the same axes with a validity deadline
// so scripted drivers can't leave a stale axis held forever.
type InputPort struct {
	cur Input

	progAxes     Axes
	progDeadline time.Time
}

func NewInputPort() *InputPort { return &InputPort{} }

// Set replaces the polled host input.
func (p *InputPort) Set(in Input) { p.cur = in }

// Program sets the scripted axes, valid until deadline.
func (p *InputPort) Program(ax Axes, deadline time.Time) {
	p.progAxes = ax
	p.progDeadline = deadline
}

// Sample merges host and (unexpired) programmatic input. Programmatic
// axes win only where the host axis is idle.
func (p *InputPort) Sample(now time.Time) Input {
	in := p.cur
	if now.Before(p.progDeadline) {
		if in.Axes.Forward == 0 {
			in.Axes.Forward = geom.Clamp(p.progAxes.Forward, -1, 1)
		}
		if in.Axes.Strafe == 0 {
			in.Axes.Strafe = geom.Clamp(p.progAxes.Strafe, -1, 1)
		}
		if in.Axes.Vertical == 0 {
			in.Axes.Vertical = geom.Clamp(p.progAxes.Vertical, -1, 1)
		}
		in.Axes.Boost = in.Axes.Boost || p.progAxes.Boost
	}
	return in
}

// Reset drops all held state; called on mode switches so a key held in one
// mode cannot leak into the next.
func (p *InputPort) Reset() {
	p.cur = Input{}
	p.progAxes = Axes{}
	p.progDeadline = time.Time{}
}
