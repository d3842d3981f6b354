package viz

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/san-kum/sailsim/internal/course"
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

// Hull outline in boat-local units, bow along +X.
var hullOutline = []r2.Point{
	{X: 45, Y: 0},
	{X: 20, Y: 12},
	{X: -45, Y: 12},
	{X: -45, Y: -12},
	{X: 20, Y: -12},
}

var stern = r2.Point{X: -45, Y: 0}

const rudderBlade = 15.0

// Viewport maps world coordinates onto canvas sub-pixels. World +Y is up on
// screen.
type Viewport struct {
	Centre r2.Point
	Scale  float64 // world units per sub-pixel
	W, H   int
}

func NewViewport(c *Canvas, scale float64) Viewport {
	w, h := c.Size()
	return Viewport{Scale: scale, W: w, H: h}
}

// FitViewport centres the viewport on rect and picks the scale that shows
// all of it.
func FitViewport(c *Canvas, rect r2.Rect) Viewport {
	w, h := c.Size()
	size := rect.Size()
	scale := math.Max(size.X/float64(w), size.Y/float64(h))
	if !(scale > 0) {
		scale = 1
	}
	return Viewport{Centre: rect.Center(), Scale: scale, W: w, H: h}
}

func (v Viewport) Project(p r2.Point) (int, int) {
	x := (p.X-v.Centre.X)/v.Scale + float64(v.W)/2
	y := float64(v.H)/2 - (p.Y-v.Centre.Y)/v.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// Bounds is the world rectangle the viewport shows.
func (v Viewport) Bounds() r2.Rect {
	return r2.RectFromCenterSize(v.Centre, r2.Point{X: float64(v.W) * v.Scale, Y: float64(v.H) * v.Scale})
}

func (v Viewport) Visible(p r2.Point) bool {
	return v.Bounds().ContainsPoint(p)
}

func (v Viewport) line(c *Canvas, a, b r2.Point) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	c.DrawLine(x0, y0, x1, y1)
}

// DrawBoat draws the hull, each boom with its sheet, and the rudder.
func DrawBoat(c *Canvas, v Viewport, b *sailing.Boat) {
	hull := b.Transform()
	for i := range hullOutline {
		v.line(c, hull.Apply(hullOutline[i]), hull.Apply(hullOutline[(i+1)%len(hullOutline)]))
	}

	for _, s := range b.Sails {
		sail := hull.Compose(s.Local())
		tip := sail.Apply(r2.Point{X: s.BoomLength})
		v.line(c, sail.Position, tip)
		x, y := v.Project(tip)
		c.FillCircle(x, y, 1)
		dotted(c, v, tip, hull.Apply(s.SheetBlock), 2)
	}

	if b.Rudder != nil {
		pin := hull.Apply(stern)
		blade := hull.Apply(stern.Add(vmath.Polar(rudderBlade, math.Pi+b.Rudder.Rotation)))
		v.line(c, pin, blade)
	}
}

func dotted(c *Canvas, v Viewport, a, b r2.Point, every int) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	n := max(absInt(x1-x0), absInt(y1-y0))
	for i := 0; i <= n; i += every {
		t := float64(i) / float64(max(n, 1))
		c.Set(x0+int(math.Round(t*float64(x1-x0))), y0+int(math.Round(t*float64(y1-y0))))
	}
}

// DrawMarks draws the course. The next mark is filled; marks already
// rounded are left out. When the next mark is off screen a bearing line
// from the boat points at it.
func DrawMarks(c *Canvas, v Viewport, marks []course.Mark, next int, boat r2.Point) {
	for i, m := range marks {
		if i < next {
			continue
		}
		x, y := v.Project(m.Position)
		r := max(int(math.Round(m.Radius/v.Scale)), 1)
		if i == next {
			c.FillCircle(x, y, r)
		} else {
			c.DrawCircle(x, y, r)
		}
	}
	if next < len(marks) && !v.Visible(marks[next].Position) {
		dir := marks[next].Position.Sub(boat)
		if !vmath.IsZero(dir) {
			end := boat.Add(dir.Normalize().Mul(float64(v.H) / 3 * v.Scale))
			dotted(c, v, boat, end, 3)
		}
	}
}

// DrawWind draws an arrow in the top-left corner pointing the way the wind
// blows. Its length grows with speed up to size sub-pixels.
func DrawWind(c *Canvas, wind r2.Point, size int) {
	if vmath.IsZero(wind) {
		return
	}
	length := math.Min(float64(size), float64(size)*wind.Norm()/15)
	cx, cy := size/2+2, size/2+2
	dir := wind.Normalize()
	// screen y points down
	tipX, tipY := cx+int(math.Round(dir.X*length/2)), cy-int(math.Round(dir.Y*length/2))
	tailX, tailY := cx-int(math.Round(dir.X*length/2)), cy+int(math.Round(dir.Y*length/2))
	c.DrawLine(tailX, tailY, tipX, tipY)

	back := math.Atan2(-dir.Y, dir.X) + math.Pi
	for _, off := range []float64{-0.5, 0.5} {
		hx := tipX + int(math.Round(3*math.Cos(back+off)))
		hy := tipY + int(math.Round(3*math.Sin(back+off)))
		c.DrawLine(tipX, tipY, hx, hy)
	}
}

// DrawTrail plots past positions as single dots.
func DrawTrail(c *Canvas, v Viewport, trail []r2.Point) {
	for _, p := range trail {
		x, y := v.Project(p)
		c.Set(x, y)
	}
}

// TrackCanvas renders a whole run: the track, the course and the boat at
// its final position.
func TrackCanvas(track []r2.Point, marks []course.Mark, w, h int) *Canvas {
	c := NewCanvas(w, h)
	if len(track) == 0 {
		return c
	}
	rect := r2.RectFromPoints(track...)
	for _, m := range marks {
		rect = rect.AddPoint(m.Position)
	}
	v := FitViewport(c, rect.ExpandedByMargin(20))
	for i := 1; i < len(track); i++ {
		v.line(c, track[i-1], track[i])
	}
	DrawMarks(c, v, marks, 0, track[len(track)-1])
	x, y := v.Project(track[len(track)-1])
	c.FillCircle(x, y, 2)
	return c
}
