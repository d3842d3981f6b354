package sailing

import (
	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// Input is the control written by an external collaborator before a tick.
type Input struct {
	SheetDelta  float64 `json:"sheet"`
	RudderDelta float64 `json:"rudder"`

	// Absolute overrides for simplified control schemes.
	BoatRotation *float64 `json:"boat_rotation,omitempty"`
	SailRotation *float64 `json:"sail_rotation,omitempty"`
}

// Add combines two inputs. Overrides from o win.
func (in Input) Add(o Input) Input {
	out := Input{
		SheetDelta:   in.SheetDelta + o.SheetDelta,
		RudderDelta:  in.RudderDelta + o.RudderDelta,
		BoatRotation: in.BoatRotation,
		SailRotation: in.SailRotation,
	}
	if o.BoatRotation != nil {
		out.BoatRotation = o.BoatRotation
	}
	if o.SailRotation != nil {
		out.SailRotation = o.SailRotation
	}
	return out
}

// World is the complete simulation state handed to each tick.
type World struct {
	Wind   Wind
	Boat   *Boat
	Params Params

	Time  float64
	Steps int

	frame frame
}

// frame holds values computed once at the start of a tick.
type frame struct {
	hull     Transform
	sails    []Transform
	apparent r2.Point
}

func NewWorld(wind Wind, boat *Boat, params Params) *World {
	w := &World{Wind: wind, Boat: boat, Params: params}
	w.cacheFrame()
	w.frame.apparent = wind.Apparent(boat.Velocity)
	w.constrainSails()
	return w
}

// Tick advances the world by one fixed step and returns its snapshot.
func (w *World) Tick(dt float64, in Input) Snapshot {
	w.applyInput(in)
	w.cacheFrame()

	w.frame.apparent = w.Wind.Apparent(w.Boat.Velocity)
	w.sailAero()
	w.sailTorque()
	w.constrainSails()
	w.sailsPushBoat()
	w.Boat.Resolve(w.Params.Leeway)
	w.Boat.ApplyDrag(w.Params.HullDrag)
	w.Boat.ApplyRudder(w.Params.Rudder)
	w.Boat.Integrate(dt)

	w.Time += dt
	w.Steps++
	return w.Snapshot()
}

func (w *World) applyInput(in Input) {
	b := w.Boat
	if in.BoatRotation != nil {
		b.Rotation = vmath.WrapPi(*in.BoatRotation)
	}
	for _, s := range b.Sails {
		if in.SailRotation != nil {
			s.Rotation = *in.SailRotation
		}
		if in.SheetDelta != 0 {
			s.AdjustSheet(in.SheetDelta, w.Params.SheetSlack)
		}
	}
	if b.Rudder != nil && in.RudderDelta != 0 {
		b.Rudder.Adjust(in.RudderDelta)
	}
}

func (w *World) cacheFrame() {
	w.frame.hull = w.Boat.Transform()
	w.frame.sails = w.frame.sails[:0]
	for _, s := range w.Boat.Sails {
		w.frame.sails = append(w.frame.sails, w.frame.hull.Compose(s.Local()))
	}
}

func (w *World) sailAero() {
	for i, s := range w.Boat.Sails {
		sf := w.frame.sails[i]
		centre := sf.Apply(r2.Point{X: s.BoomLength / 2})
		block := w.frame.hull.Apply(s.SheetBlock)

		aero := SailForces(w.frame.apparent, sf.Rotation, block.Sub(centre), w.Params)
		s.Drag, s.Lift = aero.Drag, aero.Lift
	}
}

func (w *World) sailTorque() {
	for i, s := range w.Boat.Sails {
		s.Torque = SailTorque(w.frame.apparent, w.frame.sails[i].Rotation, w.Params)
		s.Rotation += s.Torque
	}
}

func (w *World) constrainSails() {
	for _, s := range w.Boat.Sails {
		s.Constrain(w.Params.SheetSlack)
	}
}

func (w *World) sailsPushBoat() {
	for _, s := range w.Boat.Sails {
		w.Boat.Push(s.Impulse())
	}
}

// Apparent is the apparent wind used by the most recent tick.
func (w *World) Apparent() r2.Point {
	return w.frame.apparent
}

// Clone returns a deep copy of the world with fresh back-references.
func (w *World) Clone() *World {
	src := w.Boat
	b := &Boat{
		Position:        src.Position,
		Velocity:        src.Velocity,
		Rotation:        src.Rotation,
		AngularVelocity: src.AngularVelocity,
		pending:         append([]r2.Point(nil), src.pending...),
	}
	for _, s := range src.Sails {
		c := *s
		b.AddSail(&c)
	}
	if src.Rudder != nil {
		r := *src.Rudder
		b.SetRudder(&r)
	}
	c := &World{Wind: w.Wind, Boat: b, Params: w.Params, Time: w.Time, Steps: w.Steps}
	c.cacheFrame()
	c.frame.apparent = w.frame.apparent
	return c
}
