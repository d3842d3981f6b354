package sailing

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// Default dinghy geometry, in hull-local units with the bow along +X.
var (
	DefaultPivot      = r2.Point{X: 30, Y: 0}
	DefaultSheetBlock = r2.Point{X: -40, Y: 0}
)

const (
	DefaultBoomLength  = 60.0
	DefaultSheetMin    = 25.0
	DefaultSheetMax    = 100.0
	DefaultRudderLimit = math.Pi/2 - math.Pi/6
)

// Boat is the hull. It owns its sails and rudder.
type Boat struct {
	Position        r2.Point
	Velocity        r2.Point
	Rotation        float64
	AngularVelocity float64

	Sails  []*Sail
	Rudder *Rudder

	pending []r2.Point
}

func NewBoat() *Boat {
	return &Boat{}
}

// NewDinghy builds a boat with one mainsail and a rudder using the default
// geometry, sheet fully eased.
func NewDinghy() *Boat {
	b := NewBoat()
	s := NewSail(DefaultPivot, DefaultBoomLength, DefaultSheetBlock)
	s.SheetMin, s.SheetMax = DefaultSheetMin, DefaultSheetMax
	s.SheetLength = DefaultSheetMax
	b.AddSail(s)
	b.SetRudder(NewRudder(DefaultRudderLimit))
	return b
}

// AddSail attaches s to the boat and returns it.
func (b *Boat) AddSail(s *Sail) *Sail {
	s.boat = b
	b.Sails = append(b.Sails, s)
	return s
}

func (b *Boat) SetRudder(r *Rudder) {
	r.boat = b
	b.Rudder = r
}

func (b *Boat) Transform() Transform {
	return Transform{Position: b.Position, Rotation: b.Rotation}
}

// Keel is the unit fore-aft axis of the hull, pointing at the bow.
func (b *Boat) Keel() r2.Point {
	return vmath.FromAngle(b.Rotation).Normalize()
}

func (b *Boat) Speed() float64 {
	return b.Velocity.Norm()
}

// Sail is a boom pivoting on the boat, held by a mainsheet of bounded length
// running from the boom tip to a block on the hull.
type Sail struct {
	Pivot       r2.Point // boat-local
	BoomLength  float64
	SheetBlock  r2.Point // boat-local
	SheetLength float64
	SheetMin    float64 // control range; zero values leave only the geometric bounds
	SheetMax    float64
	Rotation    float64 // from the pivot→block line

	Drag     r2.Point
	Lift     r2.Point
	Torque   float64
	MaxAngle float64

	boat *Boat
}

func NewSail(pivot r2.Point, boomLength float64, block r2.Point) *Sail {
	return &Sail{
		Pivot:       pivot,
		BoomLength:  boomLength,
		SheetBlock:  block,
		SheetLength: math.Hypot(boomLength, block.Sub(pivot).Norm()),
		MaxAngle:    math.Pi,
	}
}

func (s *Sail) Boat() *Boat { return s.boat }

// restAngle is the boat-local direction from the pivot to the sheet block,
// the line the boom lies along at Rotation 0.
func (s *Sail) restAngle() float64 {
	d := s.SheetBlock.Sub(s.Pivot)
	if vmath.IsZero(d) {
		return math.Pi
	}
	return vmath.Angle(d)
}

// Local is the sail's transform in the boat frame. Its +X axis runs along
// the boom from the pivot to the tip.
func (s *Sail) Local() Transform {
	return Transform{Position: s.Pivot, Rotation: s.restAngle() + s.Rotation}
}

// BlockDistance is the distance from the boom pivot to the sheet block.
func (s *Sail) BlockDistance() float64 {
	return s.SheetBlock.Sub(s.Pivot).Norm()
}

// SheetRange is the admissible sheet length: the geometric bounds of the
// sheet triangle intersected with the control range.
func (s *Sail) SheetRange(slack float64) (lo, hi float64) {
	return s.sheetRangeAt(s.BlockDistance(), slack)
}

func (s *Sail) sheetRangeAt(blockDistance, slack float64) (lo, hi float64) {
	lo, hi = SheetBounds(s.BoomLength, blockDistance, slack)
	if s.SheetMax <= 0 {
		return lo, hi
	}
	clo, chi := math.Max(lo, s.SheetMin), math.Min(hi, s.SheetMax)
	if clo > chi {
		return lo, hi
	}
	return clo, chi
}

// AdjustSheet eases (positive) or trims (negative) the mainsheet.
func (s *Sail) AdjustSheet(delta, slack float64) {
	lo, hi := s.SheetRange(slack)
	s.SheetLength = ClampSheet(s.SheetLength+delta, lo, hi)
}

// Impulse is the total impulse the sail delivers this tick.
func (s *Sail) Impulse() r2.Point {
	return s.Drag.Add(s.Lift)
}

type Rudder struct {
	Rotation float64
	Limit    float64

	boat *Boat
}

func NewRudder(limit float64) *Rudder {
	return &Rudder{Limit: math.Abs(limit)}
}

func (r *Rudder) Boat() *Boat { return r.boat }

func (r *Rudder) Adjust(delta float64) {
	r.Set(r.Rotation + delta)
}

func (r *Rudder) Set(angle float64) {
	r.Rotation = vmath.Clamp(angle, -r.Limit, r.Limit)
}
