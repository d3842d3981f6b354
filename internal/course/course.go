// Package course lays buoys on the water and keeps score of the marks a
// boat rounds in order.
package course

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r2"

	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

const (
	DefaultRadius  = 10.0
	DefaultMarks   = 3
	DefaultPadding = 200.0
)

type Mark struct {
	Index    int      `json:"index"`
	Position r2.Point `json:"position"`
	Radius   float64  `json:"radius"`
}

// Reached reports whether p is inside the mark's circle.
func (m Mark) Reached(p r2.Point) bool {
	return p.Sub(m.Position).Norm() <= m.Radius
}

// Random places n marks uniformly inside bounds shrunk by padding. When the
// padding leaves nothing, the whole box is used.
func Random(rng *rand.Rand, bounds r2.Rect, n int, padding float64) []Mark {
	area := bounds.ExpandedByMargin(-padding)
	if area.IsEmpty() {
		area = bounds
	}
	marks := make([]Mark, n)
	for i := range marks {
		marks[i] = Mark{
			Index: i,
			Position: r2.Point{
				X: area.X.Lo + rng.Float64()*area.X.Length(),
				Y: area.Y.Lo + rng.Float64()*area.Y.Length(),
			},
			Radius: DefaultRadius,
		}
	}
	return marks
}

// Standard lays a windward mark upwind of start at distance and a leeward
// mark back at the start line.
func Standard(start r2.Point, wind sailing.Wind, distance float64) []Mark {
	upwind := vmath.FromAngle(wind.Direction + math.Pi)
	return []Mark{
		{Index: 0, Position: start.Add(upwind.Mul(distance)), Radius: DefaultRadius},
		{Index: 1, Position: start, Radius: DefaultRadius},
	}
}

// Tracker counts marks rounded in order. It satisfies sim.Metric under the
// name "marks".
type Tracker struct {
	Marks []Mark
	next  int
	times []float64
}

func NewTracker(marks []Mark) *Tracker {
	return &Tracker{Marks: marks}
}

// Next is the mark the boat is sailing for, or false once the course is done.
func (t *Tracker) Next() (Mark, bool) {
	if t.next >= len(t.Marks) {
		return Mark{}, false
	}
	return t.Marks[t.next], true
}

// Rounded is the number of marks reached so far.
func (t *Tracker) Rounded() int { return t.next }

// Times are the times each mark was reached.
func (t *Tracker) Times() []float64 { return t.times }

func (t *Tracker) Finished() bool { return t.next >= len(t.Marks) }

func (t *Tracker) Name() string { return "marks" }

func (t *Tracker) Observe(snap sailing.Snapshot, in sailing.Input, now float64) {
	m, ok := t.Next()
	if !ok || !m.Reached(snap.Position) {
		return
	}
	t.next++
	t.times = append(t.times, now)
}

func (t *Tracker) Value() float64 { return float64(t.next) }

func (t *Tracker) Reset() {
	t.next = 0
	t.times = nil
}
