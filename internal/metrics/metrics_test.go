package metrics

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/sailing"
)

func snap(pos, vel r2.Point, rot float64) sailing.Snapshot {
	return sailing.Snapshot{
		Position: pos,
		Velocity: vel,
		Speed:    vel.Norm(),
		Rotation: rot,
		Wind:     r2.Point{X: 0, Y: -10}, // from the north
	}
}

func TestSpeed(t *testing.T) {
	s := NewSpeed()
	m := NewMaxSpeed()
	for _, v := range []float64{1, 2, 6} {
		x := snap(r2.Point{}, r2.Point{X: v}, 0)
		s.Observe(x, sailing.Input{}, 0)
		m.Observe(x, sailing.Input{}, 0)
	}

	if math.Abs(s.Value()-3) > 1e-12 {
		t.Errorf("expected mean speed 3, got %f", s.Value())
	}
	if m.Value() != 6 {
		t.Errorf("expected max speed 6, got %f", m.Value())
	}

	s.Reset()
	m.Reset()
	if s.Value() != 0 || m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestVMG(t *testing.T) {
	v := NewVMG()
	v.Observe(snap(r2.Point{}, r2.Point{X: 3, Y: 4}, 0), sailing.Input{}, 0)
	if math.Abs(v.Value()-4) > 1e-12 {
		t.Errorf("expected vmg 4, got %f", v.Value())
	}

	v.Reset()
	v.Observe(snap(r2.Point{}, r2.Point{Y: -2}, 0), sailing.Input{}, 0)
	if math.Abs(v.Value()+2) > 1e-12 {
		t.Errorf("expected vmg -2 running downwind, got %f", v.Value())
	}

	if UpwindComponent(sailing.Snapshot{Velocity: r2.Point{X: 1}}) != 0 {
		t.Error("expected zero vmg in calm air")
	}
}

func TestLeeway(t *testing.T) {
	l := NewLeeway()
	l.Observe(snap(r2.Point{}, r2.Point{X: 1, Y: 1}, 0), sailing.Input{}, 0)
	l.Observe(snap(r2.Point{}, r2.Point{X: 0.01}, 2), sailing.Input{}, 0)

	if math.Abs(l.Value()-math.Pi/4) > 1e-12 {
		t.Errorf("expected leeway π/4, got %f", l.Value())
	}
}

func TestDistance(t *testing.T) {
	d := NewDistance()
	for _, p := range []r2.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}} {
		d.Observe(snap(p, r2.Point{}, 0), sailing.Input{}, 0)
	}
	if math.Abs(d.Value()-11) > 1e-12 {
		t.Errorf("expected distance 11, got %f", d.Value())
	}

	d.Reset()
	d.Observe(snap(r2.Point{X: 100}, r2.Point{}, 0), sailing.Input{}, 0)
	if d.Value() != 0 {
		t.Errorf("expected a fresh start after reset, got %f", d.Value())
	}
}

func TestRudderEffort(t *testing.T) {
	r := NewRudderEffort()
	r.Observe(sailing.Snapshot{}, sailing.Input{RudderDelta: 0.2}, 0)
	r.Observe(sailing.Snapshot{}, sailing.Input{RudderDelta: -0.4}, 0)
	if math.Abs(r.Value()-0.3) > 1e-12 {
		t.Errorf("expected effort 0.3, got %f", r.Value())
	}
}

func TestRegistry(t *testing.T) {
	names := Names()
	if len(names) != 6 {
		t.Fatalf("expected 6 metrics, got %v", names)
	}
	for _, n := range names {
		m, err := New(n)
		if err != nil {
			t.Fatalf("New(%q): %v", n, err)
		}
		if m.Name() != n {
			t.Errorf("metric %q reports name %q", n, m.Name())
		}
	}
	if _, err := New("energy"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if len(All()) != len(names) {
		t.Error("All should build every metric")
	}
}
