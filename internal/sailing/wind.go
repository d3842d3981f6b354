package sailing

import (
	"github.com/golang/geo/r2"
	"github.com/san-kum/sailsim/internal/vmath"
)

// Wind is the true wind. Direction is the way the wind blows toward.
type Wind struct {
	Speed     float64 `json:"speed"`
	Direction float64 `json:"direction"`
}

func (w Wind) Vector() r2.Point {
	return vmath.Polar(w.Speed, w.Direction)
}

// Apparent returns the wind felt by a body moving with velocity v.
func (w Wind) Apparent(v r2.Point) r2.Point {
	return ApparentWind(w.Vector(), v)
}

func ApparentWind(wind, v r2.Point) r2.Point {
	return wind.Sub(v)
}
