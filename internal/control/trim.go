package control

import (
	"math"

	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

// DefaultSheetRate is the fastest the sheet is hauled, per tick.
const DefaultSheetRate = 2.0

// Trim slews the sheet and rudder toward fixed settings.
type Trim struct {
	Sheet      float64
	Rudder     float64
	SheetRate  float64
	RudderRate float64
}

func NewTrim(sheet, rudder float64) *Trim {
	return &Trim{Sheet: sheet, Rudder: rudder, SheetRate: DefaultSheetRate, RudderRate: 0.05}
}

func (c *Trim) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	return sailing.Input{
		SheetDelta:  slew(c.Sheet-snap.Sail().SheetLength, c.SheetRate),
		RudderDelta: slew(c.Rudder-snap.Rudder, c.RudderRate),
	}
}

// AutoTrim sets the sheet so the boom, when blown out against it, meets
// the apparent wind at AngleOfAttack.
type AutoTrim struct {
	BoomLength    float64
	BlockDistance float64
	AngleOfAttack float64
	Rate          float64
}

func NewAutoTrim(s *sailing.Sail) *AutoTrim {
	return &AutoTrim{
		BoomLength:    s.BoomLength,
		BlockDistance: s.BlockDistance(),
		AngleOfAttack: sailing.DefaultLiftPeak,
		Rate:          DefaultSheetRate,
	}
}

// TargetAngle is the boom swing off the rest line wanted for the snapshot's
// apparent wind.
func (c *AutoTrim) TargetAngle(snap sailing.Snapshot) float64 {
	if vmath.IsZero(snap.Apparent) {
		return 0
	}
	sail := snap.Sail()
	rest := sail.Boom - sail.Rotation
	downwind := math.Abs(vmath.WrapPi(vmath.Angle(snap.Apparent) - rest))
	return vmath.Clamp(downwind-c.AngleOfAttack, 0, math.Pi)
}

func (c *AutoTrim) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	if len(snap.Sails) == 0 {
		return sailing.Input{}
	}
	want := sailing.SheetForAngle(c.BoomLength, c.BlockDistance, c.TargetAngle(snap))
	return sailing.Input{SheetDelta: slew(want-snap.Sail().SheetLength, c.Rate)}
}

func slew(delta, rate float64) float64 {
	if rate <= 0 {
		return delta
	}
	return vmath.Clamp(delta, -rate, rate)
}
