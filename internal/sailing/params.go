package sailing

import (
	"fmt"
	"math"
)

// Params holds the calibration coefficients of the force model.
type Params struct {
	SailDrag   float64 // drag impulse per unit apparent wind at broadside
	SailLift   float64 // lift impulse per unit apparent wind at the peak
	LiftPeak   float64 // angle-of-attack offset of the lift peak (rad)
	SailTorque float64 // boom rotation per tick at full weathervane torque (rad)
	HullDrag   float64 // quadratic hull drag coefficient
	Leeway     float64 // fraction of the lateral impulse the keel lets through
	Rudder     float64 // heading change per tick per rad of rudder per unit speed
	SheetSlack float64 // ε keeping the sheet triangle non-degenerate
}

const (
	DefaultSailDrag   = 0.01
	DefaultSailLift   = 0.02
	DefaultSailTorque = 0.1
	DefaultHullDrag   = 0.01
	DefaultLeeway     = 0.08
	DefaultRudder     = 0.002
	DefaultSheetSlack = 1e-3
)

var DefaultLiftPeak = 15 * math.Pi / 180

func DefaultParams() Params {
	return Params{
		SailDrag:   DefaultSailDrag,
		SailLift:   DefaultSailLift,
		LiftPeak:   DefaultLiftPeak,
		SailTorque: DefaultSailTorque,
		HullDrag:   DefaultHullDrag,
		Leeway:     DefaultLeeway,
		Rudder:     DefaultRudder,
		SheetSlack: DefaultSheetSlack,
	}
}

// GetParams returns the tunable coefficients by name.
func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"sail_drag":   p.SailDrag,
		"sail_lift":   p.SailLift,
		"lift_peak":   p.LiftPeak,
		"sail_torque": p.SailTorque,
		"hull_drag":   p.HullDrag,
		"leeway":      p.Leeway,
		"rudder":      p.Rudder,
	}
}

// SetParam adjusts a coefficient by name. Negative values are rejected.
func (p *Params) SetParam(name string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("param %s: invalid value %v", name, value)
	}
	switch name {
	case "sail_drag":
		p.SailDrag = value
	case "sail_lift":
		p.SailLift = value
	case "lift_peak":
		p.LiftPeak = value
	case "sail_torque":
		p.SailTorque = value
	case "hull_drag":
		p.HullDrag = value
	case "leeway":
		p.Leeway = value
	case "rudder":
		p.Rudder = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
