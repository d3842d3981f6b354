package metrics

import (
	"math"

	"github.com/san-kum/sailsim/internal/sailing"
)

// RudderEffort is the mean absolute rudder movement per tick.
type RudderEffort struct {
	sum     float64
	samples int
}

func NewRudderEffort() *RudderEffort { return &RudderEffort{} }

func (r *RudderEffort) Name() string { return "rudder_effort" }

func (r *RudderEffort) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	r.sum += math.Abs(in.RudderDelta)
	r.samples++
}

func (r *RudderEffort) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *RudderEffort) Reset() {
	r.sum = 0
	r.samples = 0
}
