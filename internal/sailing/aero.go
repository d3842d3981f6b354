package sailing

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// sideTolerance is the relative dead-band of the sheet-side test. A block
// lying on the sail's own line picks no side.
const sideTolerance = 1e-9

// Aero is the aerodynamic result for one sail on one tick.
type Aero struct {
	Drag        r2.Point
	Lift        r2.Point
	Side        float64 // +1 or -1: which perpendicular lift uses; 0 when luffing
	IdealOffset float64 // apparent wind angle at which lift vanishes
}

// SailForces computes the drag and lift impulses on a sail.
//
// sailRotation is the world angle of the boom. sheetSide points from the
// sail toward its sheet block; lift always points away from that side.
func SailForces(apparent r2.Point, sailRotation float64, sheetSide r2.Point, p Params) Aero {
	if vmath.IsZero(apparent) {
		return Aero{}
	}
	awAngle := vmath.Angle(apparent)

	dragMag := math.Abs(math.Sin(awAngle-sailRotation)) * p.SailDrag
	out := Aero{Drag: apparent.Mul(dragMag)}

	perp := apparent.Ortho()
	dot := sheetSide.Dot(perp)
	if math.Abs(dot) <= sideTolerance*sheetSide.Norm()*perp.Norm() {
		return out
	}
	side := -vmath.Sign(dot)

	out.Side = side
	out.IdealOffset = sailRotation + math.Pi/2 + side*p.LiftPeak
	liftMag := math.Abs(math.Sin(awAngle-out.IdealOffset)) * p.SailLift
	out.Lift = perp.Mul(side * liftMag)
	return out
}

// SailTorque is the weathervane torque turning the boom's trailing edge
// downwind, expressed as a rotation increment for this tick.
func SailTorque(apparent r2.Point, sailRotation float64, p Params) float64 {
	if vmath.IsZero(apparent) {
		return 0
	}
	angle := vmath.WrapPi(sailRotation - vmath.Angle(apparent))
	return math.Cos(angle+math.Pi/2) * p.SailTorque
}
