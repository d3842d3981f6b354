package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/logging"
	"github.com/san-kum/sailsim/internal/metrics"
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
	"github.com/san-kum/sailsim/internal/vmath"
)

var ErrInvalidScript = errors.New("invalid script")

// Script is a sequence of legs sailed back-to-back by one boat.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Legs        []Leg  `yaml:"legs"`

	// PID gains for legs that hold a heading. Zero values take the defaults.
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// Leg holds its settings for Duration seconds. A nil field leaves that
// control alone: no heading means the rudder stays where it is, no sheet
// means the sheet is trimmed automatically.
type Leg struct {
	Name     string        `yaml:"name"`
	Duration float64       `yaml:"duration"`
	Heading  *float64      `yaml:"heading_deg"`
	Sheet    *float64      `yaml:"sheet"`
	Wind     *WindOverride `yaml:"wind"`
}

// WindOverride replaces the true wind from the start of a leg onward.
type WindOverride struct {
	Speed     *float64 `yaml:"speed"`
	Direction *float64 `yaml:"direction_deg"`
}

// LegResult is the outcome of one leg.
type LegResult struct {
	Leg    string
	Start  sailing.Snapshot
	End    sailing.Snapshot
	Result *sim.Result
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) Validate() error {
	if len(s.Legs) == 0 {
		return fmt.Errorf("%w: no legs", ErrInvalidScript)
	}
	var errs []error
	if !vmath.IsFinite(s.Kp) || !vmath.IsFinite(s.Ki) || !vmath.IsFinite(s.Kd) {
		errs = append(errs, fmt.Errorf("gains must be finite, got %v %v %v", s.Kp, s.Ki, s.Kd))
	}
	for i, leg := range s.Legs {
		if !(leg.Duration > 0) || math.IsInf(leg.Duration, 1) {
			errs = append(errs, fmt.Errorf("leg %d: duration must be positive, got %v", i+1, leg.Duration))
		}
		if leg.Heading != nil && !vmath.IsFinite(*leg.Heading) {
			errs = append(errs, fmt.Errorf("leg %d: heading must be finite, got %v", i+1, *leg.Heading))
		}
		if leg.Sheet != nil && !(*leg.Sheet > 0 && vmath.IsFinite(*leg.Sheet)) {
			errs = append(errs, fmt.Errorf("leg %d: sheet must be positive, got %v", i+1, *leg.Sheet))
		}
		if w := leg.Wind; w != nil {
			if w.Speed != nil && !(*w.Speed >= 0 && vmath.IsFinite(*w.Speed)) {
				errs = append(errs, fmt.Errorf("leg %d: wind speed must be a non-negative number, got %v", i+1, *w.Speed))
			}
			if w.Direction != nil && !vmath.IsFinite(*w.Direction) {
				errs = append(errs, fmt.Errorf("leg %d: wind direction must be finite, got %v", i+1, *w.Direction))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScript, errors.Join(errs...))
	}
	return nil
}

// TotalDuration is the sum of the leg durations.
func (s *Script) TotalDuration() float64 {
	var total float64
	for _, leg := range s.Legs {
		total += leg.Duration
	}
	return total
}

func (s *Script) gains() (kp, ki, kd float64) {
	if s.Kp == 0 && s.Ki == 0 && s.Kd == 0 {
		return config.DefaultKp, config.DefaultKi, config.DefaultKd
	}
	return s.Kp, s.Ki, s.Kd
}

// Run sails every leg of the script on world in order. The world carries
// over from one leg to the next.
func Run(ctx context.Context, world *sailing.World, script *Script, dt float64, log *logging.Logger) ([]LegResult, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}

	results := make([]LegResult, 0, len(script.Legs))
	for i, leg := range script.Legs {
		name := leg.Name
		if name == "" {
			name = fmt.Sprintf("leg-%d", i+1)
		}
		applyWind(world, leg.Wind)

		s := sim.New(world, script.controller(world, leg)).WithLogger(log.With("leg", name))
		for _, m := range metrics.All() {
			s.AddMetric(m)
		}

		start := world.Snapshot()
		log.Info("leg started", "leg", name, "index", i+1, "of", len(script.Legs), "duration", leg.Duration)

		res, err := s.Run(ctx, sim.Config{Dt: dt, Duration: leg.Duration, ValidateState: true})
		if err != nil {
			return results, fmt.Errorf("leg %d (%s): %w", i+1, name, err)
		}
		results = append(results, LegResult{Leg: name, Start: start, End: res.Final(), Result: res})
		if err := res.Err(); err != nil {
			return results, fmt.Errorf("leg %d (%s): %w", i+1, name, err)
		}
	}
	return results, nil
}

func applyWind(world *sailing.World, o *WindOverride) {
	if o == nil {
		return
	}
	if o.Speed != nil {
		world.Wind.Speed = *o.Speed
	}
	if o.Direction != nil {
		world.Wind.Direction = *o.Direction * math.Pi / 180
	}
}

func (s *Script) controller(world *sailing.World, leg Leg) sim.Controller {
	var parts control.Combined
	if leg.Heading != nil {
		kp, ki, kd := s.gains()
		parts = append(parts, control.NewHeadingPID(kp, ki, kd, *leg.Heading*math.Pi/180))
	}
	switch {
	case leg.Sheet != nil:
		trim := control.NewTrim(*leg.Sheet, 0)
		parts = append(parts, sim.ControllerFunc(func(snap sailing.Snapshot, t float64) sailing.Input {
			return sailing.Input{SheetDelta: trim.Compute(snap, t).SheetDelta}
		}))
	case len(world.Boat.Sails) > 0:
		parts = append(parts, control.NewAutoTrim(world.Boat.Sails[0]))
	}
	return parts
}
