package sim

import (
	"errors"
	"math"

	"github.com/san-kum/sailsim/internal/sailing"
)

// Controller decides the input for the next tick from the latest snapshot.
type Controller interface {
	Compute(snap sailing.Snapshot, t float64) sailing.Input
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(snap sailing.Snapshot, t float64) sailing.Input

func (f ControllerFunc) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	return f(snap, t)
}

type Metric interface {
	Name() string
	Observe(snap sailing.Snapshot, in sailing.Input, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(snap sailing.Snapshot, in sailing.Input, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
	// RecordEvery keeps one snapshot in n. Zero keeps all of them.
	RecordEvery int
}

// DefaultDt is the frame step the force coefficients are calibrated for.
const DefaultDt = 1.0 / 30

func DefaultConfig() Config {
	return Config{Dt: DefaultDt, Duration: 30, ValidateState: true}
}

// Steps is the number of ticks a run of this config takes.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

type Result struct {
	Snapshots  []sailing.Snapshot
	Inputs     []sailing.Input
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final is the last recorded snapshot.
func (r *Result) Final() sailing.Snapshot {
	if len(r.Snapshots) == 0 {
		return sailing.Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}

// Err joins the errors collected during the run, or nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}
