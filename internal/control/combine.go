package control

import (
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
)

// Combined sums the inputs of its parts. Later overrides win.
type Combined []sim.Controller

func Combine(parts ...sim.Controller) Combined {
	return Combined(parts)
}

func (c Combined) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	var in sailing.Input
	for _, part := range c {
		in = in.Add(part.Compute(snap, t))
	}
	return in
}
