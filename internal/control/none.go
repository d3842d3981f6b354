package control

import "github.com/san-kum/sailsim/internal/sailing"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	return sailing.Input{}
}
