package sailing

import (
	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// Transform places a body in its parent's frame.
type Transform struct {
	Position r2.Point
	Rotation float64
}

// Apply maps a point from the local frame into the parent frame.
func (t Transform) Apply(p r2.Point) r2.Point {
	return t.Position.Add(vmath.Rotate(p, t.Rotation))
}

// Direction maps a direction (no translation) into the parent frame.
func (t Transform) Direction(d r2.Point) r2.Point {
	return vmath.Rotate(d, t.Rotation)
}

// Compose returns t ∘ local: the world transform of a child whose local
// transform is local and whose parent's world transform is t.
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		Position: t.Apply(local.Position),
		Rotation: t.Rotation + local.Rotation,
	}
}
