package metrics

import (
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

// VMG is the mean velocity made good straight into the true wind. Positive
// values mean the boat is working upwind.
type VMG struct {
	sum     float64
	samples int
}

func NewVMG() *VMG { return &VMG{} }

func (v *VMG) Name() string { return "vmg" }

func (v *VMG) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	v.sum += UpwindComponent(snap)
	v.samples++
}

func (v *VMG) Value() float64 {
	if v.samples == 0 {
		return 0
	}
	return v.sum / float64(v.samples)
}

func (v *VMG) Reset() {
	v.sum = 0
	v.samples = 0
}

// UpwindComponent projects the boat velocity onto the direction the true
// wind comes from.
func UpwindComponent(snap sailing.Snapshot) float64 {
	if vmath.IsZero(snap.Wind) {
		return 0
	}
	return snap.Velocity.Dot(snap.Wind.Normalize().Mul(-1))
}
