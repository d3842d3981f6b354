package sailing

import "github.com/san-kum/sailsim/internal/vmath"

// Steer returns the heading change produced by a rudder deflection at the
// given boat speed. The bow turns away from the side the rudder is put to,
// and a stationary boat does not turn.
func Steer(rudder, speed, gain float64) float64 {
	return -vmath.WrapPi(rudder) * speed * gain
}

// ApplyRudder turns the boat by its rudder and returns the heading change.
func (b *Boat) ApplyRudder(gain float64) float64 {
	if b.Rudder == nil {
		return 0
	}
	d := Steer(b.Rudder.Rotation, b.Speed(), gain)
	b.Rotation += d
	return d
}
