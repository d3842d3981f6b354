package sailing

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// Decompose splits an impulse into the components along and across the keel
// of a hull at the given rotation.
func Decompose(impulse r2.Point, rotation float64) (parallel, perpendicular r2.Point) {
	keel := vmath.FromAngle(rotation).Normalize()
	parallel = keel.Mul(impulse.Dot(keel))
	perpendicular = impulse.Sub(parallel)
	return parallel, perpendicular
}

// Push queues an impulse for the next Resolve.
func (b *Boat) Push(impulse r2.Point) {
	b.pending = append(b.pending, impulse)
}

// Pending is the number of queued impulses.
func (b *Boat) Pending() int {
	return len(b.pending)
}

// Resolve sums and clears the queued impulses and applies the result to the
// velocity: the keel-parallel part in full, the lateral part scaled by
// leeway. It returns the net impulse consumed.
func (b *Boat) Resolve(leeway float64) r2.Point {
	var net r2.Point
	for _, imp := range b.pending {
		net = net.Add(imp)
	}
	b.pending = b.pending[:0]

	parallel, perpendicular := Decompose(net, b.Rotation)
	b.Velocity = b.Velocity.Add(parallel).Add(perpendicular.Mul(leeway))
	return net
}

// ApplyDrag applies quadratic hull drag, ½·coef·|v|², opposite the velocity.
//
// The drag is capped at the current speed, which departs from the plain
// quadratic law: above |v| = 2/coef (200 with DefaultHullDrag) the raw
// force would carry the boat backwards, and with the cap it stops instead.
// Below that speed the cap never applies.
func (b *Boat) ApplyDrag(coef float64) {
	if vmath.IsZero(b.Velocity) {
		return
	}
	speed := b.Velocity.Norm()
	force := math.Min(0.5*coef*speed*speed, speed)
	b.Velocity = b.Velocity.Mul(math.Max(1-force/speed, 0))
}

// Integrate advances position and rotation by dt.
func (b *Boat) Integrate(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.Rotation = vmath.WrapPi(b.Rotation + b.AngularVelocity*dt)
}
