package sailing

import (
	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// SailState is the read-only view of one sail after a tick.
type SailState struct {
	Rotation    float64  `json:"rotation"`
	Boom        float64  `json:"boom"`
	SheetLength float64  `json:"sheet_length"`
	MaxAngle    float64  `json:"max_angle"`
	Drag        r2.Point `json:"drag"`
	Lift        r2.Point `json:"lift"`
	Torque      float64  `json:"torque"`
}

// Snapshot is the read-only view of the world handed to renderers,
// controllers, metrics and telemetry.
type Snapshot struct {
	Step     int         `json:"step"`
	Time     float64     `json:"time"`
	Position r2.Point    `json:"position"`
	Velocity r2.Point    `json:"velocity"`
	Speed    float64     `json:"speed"`
	Rotation float64     `json:"rotation"`
	Wind     r2.Point    `json:"wind"`
	Apparent r2.Point    `json:"apparent"`
	Sails    []SailState `json:"sails"`
	Rudder   float64     `json:"rudder"`
}

func (w *World) Snapshot() Snapshot {
	b := w.Boat
	snap := Snapshot{
		Step:     w.Steps,
		Time:     w.Time,
		Position: b.Position,
		Velocity: b.Velocity,
		Speed:    b.Speed(),
		Rotation: b.Rotation,
		Wind:     w.Wind.Vector(),
		Apparent: w.frame.apparent,
		Sails:    make([]SailState, len(b.Sails)),
	}
	for i, s := range b.Sails {
		snap.Sails[i] = SailState{
			Rotation:    s.Rotation,
			Boom:        vmath.WrapPi(b.Rotation + s.Local().Rotation),
			SheetLength: s.SheetLength,
			MaxAngle:    s.MaxAngle,
			Drag:        s.Drag,
			Lift:        s.Lift,
			Torque:      s.Torque,
		}
	}
	if b.Rudder != nil {
		snap.Rudder = b.Rudder.Rotation
	}
	return snap
}

// Sail returns the first sail's state, or the zero value for a bare hull.
func (s Snapshot) Sail() SailState {
	if len(s.Sails) == 0 {
		return SailState{}
	}
	return s.Sails[0]
}

// Heading is the boat rotation wrapped into (-π, π].
func (s Snapshot) Heading() float64 {
	return vmath.WrapPi(s.Rotation)
}

// IsValid reports whether every quantity in the snapshot is finite.
func (s Snapshot) IsValid() bool {
	if !vmath.IsFinitePoint(s.Position) || !vmath.IsFinitePoint(s.Velocity) ||
		!vmath.IsFinitePoint(s.Wind) || !vmath.IsFinitePoint(s.Apparent) ||
		!vmath.IsFinite(s.Rotation) || !vmath.IsFinite(s.Rudder) {
		return false
	}
	for _, sail := range s.Sails {
		if !vmath.IsFinite(sail.Rotation) || !vmath.IsFinite(sail.SheetLength) ||
			!vmath.IsFinite(sail.MaxAngle) || !vmath.IsFinite(sail.Torque) ||
			!vmath.IsFinitePoint(sail.Drag) || !vmath.IsFinitePoint(sail.Lift) {
			return false
		}
	}
	return true
}
