package control

import (
	"fmt"
	"math"

	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

// PID is a scalar controller on an error signal sampled at time t.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	// IntegralLimit bounds the accumulated error. Zero disables the bound.
	IntegralLimit float64

	// Angular marks the error as an angle wrapped to (-π, π]. The derivative
	// is then taken on the wrapped difference, so a jump across ±π reads as
	// the small step it is.
	Angular bool

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, first: true}
}

func (p *PID) Update(err, t float64) float64 {
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.Kp * err
	}

	p.integral += err * dt
	if p.IntegralLimit > 0 {
		p.integral = vmath.Clamp(p.integral, -p.IntegralLimit, p.IntegralLimit)
	}
	diff := err - p.prevErr
	if p.Angular {
		diff = vmath.WrapPi(diff)
	}
	derivative := diff / dt

	p.prevErr = err
	p.prevT = t
	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// HeadingPID steers the rudder to hold Target, a world heading in radians.
type HeadingPID struct {
	PID    *PID
	Target float64
	Limit  float64 // rudder angle bound
}

func NewHeadingPID(kp, ki, kd, target float64) *HeadingPID {
	pid := NewPID(kp, ki, kd)
	pid.IntegralLimit = 1
	pid.Angular = true
	return &HeadingPID{PID: pid, Target: target, Limit: sailing.DefaultRudderLimit}
}

// Compute returns the rudder change that moves the blade to the angle the
// PID wants. The rudder is driven absolutely, so while the autopilot holds,
// manual rudder input layered on top (keyboard or telemetry) is undone on
// the next tick. Manual sheet input is unaffected.
func (h *HeadingPID) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	err := vmath.WrapPi(h.Target - snap.Heading())
	u := h.PID.Update(err, t)

	// positive rudder turns the bow clockwise, so a port turn wants it negative
	want := vmath.Clamp(-u, -h.Limit, h.Limit)
	return sailing.Input{RudderDelta: want - snap.Rudder}
}

// SetTarget changes the heading and restarts the PID.
func (h *HeadingPID) SetTarget(heading float64) {
	h.Target = vmath.WrapPi(heading)
	h.PID.Reset()
}

// GetParams returns tunable parameters for live adjustment
func (h *HeadingPID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     h.PID.Kp,
		"Ki":     h.PID.Ki,
		"Kd":     h.PID.Kd,
		"Target": h.Target,
	}
}

func (h *HeadingPID) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("heading pid %s: invalid value %v", name, value)
	}
	switch name {
	case "Kp":
		h.PID.Kp = value
	case "Ki":
		h.PID.Ki = value
	case "Kd":
		h.PID.Kd = value
	case "Target":
		h.SetTarget(value)
	default:
		return fmt.Errorf("heading pid: unknown param %q", name)
	}
	return nil
}
