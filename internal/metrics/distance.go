package metrics

import (
	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/sailing"
)

// Distance is the path length sailed.
type Distance struct {
	total float64
	last  r2.Point
	seen  bool
}

func NewDistance() *Distance { return &Distance{} }

func (d *Distance) Name() string { return "distance" }

func (d *Distance) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	if d.seen {
		d.total += snap.Position.Sub(d.last).Norm()
	}
	d.last = snap.Position
	d.seen = true
}

func (d *Distance) Value() float64 { return d.total }

func (d *Distance) Reset() {
	d.total = 0
	d.seen = false
}
