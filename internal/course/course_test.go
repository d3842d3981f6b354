package course

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/san-kum/sailsim/internal/sailing"
)

func TestRandomStaysInPaddedArea(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	bounds := r2.Rect{X: r1.Interval{Lo: 0, Hi: 1200}, Y: r1.Interval{Lo: 0, Hi: 800}}

	marks := Random(rng, bounds, 50, DefaultPadding)
	if len(marks) != 50 {
		t.Fatalf("expected 50 marks, got %d", len(marks))
	}
	for i, m := range marks {
		if m.Index != i {
			t.Errorf("mark %d has index %d", i, m.Index)
		}
		p := m.Position
		if p.X < 200 || p.X > 1000 || p.Y < 200 || p.Y > 600 {
			t.Errorf("mark %d at %v outside padded area", i, p)
		}
		if m.Radius != DefaultRadius {
			t.Errorf("mark %d radius %v", i, m.Radius)
		}
	}
}

func TestRandomSmallBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	bounds := r2.Rect{X: r1.Interval{Lo: 0, Hi: 100}, Y: r1.Interval{Lo: 0, Hi: 100}}
	for _, m := range Random(rng, bounds, 5, DefaultPadding) {
		if !bounds.ContainsPoint(m.Position) {
			t.Errorf("mark %v outside bounds", m.Position)
		}
	}
}

func TestStandardCourse(t *testing.T) {
	// wind from the north
	marks := Standard(r2.Point{}, sailing.Wind{Speed: 10, Direction: -math.Pi / 2}, 500)
	if len(marks) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(marks))
	}
	if math.Abs(marks[0].Position.Y-500) > 1e-9 || math.Abs(marks[0].Position.X) > 1e-9 {
		t.Errorf("expected windward mark at (0, 500), got %v", marks[0].Position)
	}
}

func TestTrackerRoundsInOrder(t *testing.T) {
	marks := []Mark{
		{Index: 0, Position: r2.Point{X: 100}, Radius: 10},
		{Index: 1, Position: r2.Point{X: 200}, Radius: 10},
	}
	tr := NewTracker(marks)

	visit := func(x, now float64) {
		tr.Observe(sailing.Snapshot{Position: r2.Point{X: x}}, sailing.Input{}, now)
	}

	visit(200, 1) // second mark first does not count
	if tr.Rounded() != 0 {
		t.Errorf("rounded out of order: %d", tr.Rounded())
	}
	visit(95, 2)
	visit(96, 3) // still inside the first mark
	visit(205, 4)

	if tr.Value() != 2 || !tr.Finished() {
		t.Errorf("expected course finished, rounded %d", tr.Rounded())
	}
	if got := tr.Times(); len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("unexpected times %v", got)
	}
	if _, ok := tr.Next(); ok {
		t.Error("expected no next mark")
	}

	tr.Reset()
	if m, ok := tr.Next(); !ok || m.Index != 0 {
		t.Error("reset should restart the course")
	}
}
