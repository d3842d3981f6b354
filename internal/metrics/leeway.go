package metrics

import (
	"math"

	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

// MinLeewaySpeed is the speed below which the course is too noisy to
// compare with the heading.
const MinLeewaySpeed = 0.1

// Leeway is the mean angle between course over ground and heading, in
// radians, sampled while the boat is moving.
type Leeway struct {
	sum     float64
	samples int
}

func NewLeeway() *Leeway { return &Leeway{} }

func (l *Leeway) Name() string { return "leeway" }

func (l *Leeway) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	if snap.Speed < MinLeewaySpeed {
		return
	}
	course := vmath.Angle(snap.Velocity)
	l.sum += math.Abs(vmath.WrapPi(course - snap.Rotation))
	l.samples++
}

func (l *Leeway) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return l.sum / float64(l.samples)
}

func (l *Leeway) Reset() {
	l.sum = 0
	l.samples = 0
}
