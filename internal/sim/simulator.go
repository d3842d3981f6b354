package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/sailsim/internal/logging"
	"github.com/san-kum/sailsim/internal/sailing"
)

type Simulator struct {
	world      *sailing.World
	controller Controller
	metrics    []Metric
	observers  []Observer
	log        *logging.Logger
}

// New drives world with controller. A nil controller leaves the boat
// uncontrolled.
func New(world *sailing.World, controller Controller) *Simulator {
	if controller == nil {
		controller = ControllerFunc(func(sailing.Snapshot, float64) sailing.Input { return sailing.Input{} })
	}
	return &Simulator{
		world:      world,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        logging.Discard(),
	}
}

func (s *Simulator) WithLogger(l *logging.Logger) *Simulator {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) World() *sailing.World  { return s.world }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		Snapshots: make([]sailing.Snapshot, 0, steps/every+2),
		Inputs:    make([]sailing.Input, 0, steps/every+1),
		Times:     make([]float64, 0, steps/every+2),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	snap := s.world.Snapshot()
	result.Snapshots = append(result.Snapshots, snap)
	result.Times = append(result.Times, snap.Time)

	s.log.Debug("run started", "steps", steps, "dt", cfg.Dt)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		in := s.controller.Compute(snap, snap.Time)
		next := s.world.Tick(cfg.Dt, in)

		if cfg.ValidateState && !next.IsValid() {
			err := &StepError{Step: i, Time: next.Time, Err: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.log.Err(ctx, "run aborted", err)
			break
		}

		for _, m := range s.metrics {
			m.Observe(next, in, next.Time)
		}
		for _, obs := range s.observers {
			obs.OnStep(next, in, next.Time)
		}

		snap = next
		result.StepsTaken++

		if (i+1)%every == 0 || i == steps-1 {
			result.Snapshots = append(result.Snapshots, snap)
			result.Inputs = append(result.Inputs, in)
			result.Times = append(result.Times, snap.Time)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Info("run finished", "steps", result.StepsTaken, "time", snap.Time,
		"x", snap.Position.X, "y", snap.Position.Y, "speed", snap.Speed)
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Duration < cfg.Dt {
		return fmt.Errorf("%w: duration %f shorter than one step", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}

// RunWithCallback ticks until the duration elapses or callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(sailing.Snapshot, sailing.Input) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	snap := s.world.Snapshot()
	for i := 0; i < cfg.Steps(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		in := s.controller.Compute(snap, snap.Time)
		snap = s.world.Tick(cfg.Dt, in)

		if cfg.ValidateState && !snap.IsValid() {
			return &StepError{Step: i, Time: snap.Time, Err: ErrInvalidState}
		}
		if !callback(snap, in) {
			return nil
		}
	}

	return nil
}

// RunRealTime ticks once per cfg.Dt of wall-clock time, feeding metrics and
// observers, until ctx is done or the duration elapses. A zero duration runs
// until ctx is done. Cancellation is the normal way to stop and returns nil.
func (s *Simulator) RunRealTime(ctx context.Context, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	steps := -1
	if cfg.Duration > 0 {
		steps = cfg.Steps()
	}

	ticker := time.NewTicker(time.Duration(cfg.Dt * float64(time.Second)))
	defer ticker.Stop()

	s.log.Info("real-time run started", "dt", cfg.Dt, "duration", cfg.Duration)
	snap := s.world.Snapshot()
	for i := 0; steps < 0 || i < steps; i++ {
		select {
		case <-ctx.Done():
			s.log.Info("real-time run stopped", "steps", i, "time", snap.Time)
			return nil
		case <-ticker.C:
		}

		in := s.controller.Compute(snap, snap.Time)
		snap = s.world.Tick(cfg.Dt, in)
		if cfg.ValidateState && !snap.IsValid() {
			err := &StepError{Step: i, Time: snap.Time, Err: ErrInvalidState}
			s.log.Err(ctx, "real-time run aborted", err)
			return err
		}
		for _, m := range s.metrics {
			m.Observe(snap, in, snap.Time)
		}
		for _, obs := range s.observers {
			obs.OnStep(snap, in, snap.Time)
		}
	}
	return nil
}
