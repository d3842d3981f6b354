// Package vmath provides the small set of 2D helpers the simulation needs on
// top of [r2.Point]: rotation, polar construction, angle wrapping and
// finiteness checks.
//
// Angles are radians, counter-clockwise from +X. Wrapped angles lie in
// (-π, π].
package vmath

import (
	"math"

	"github.com/golang/geo/r2"
)

const TwoPi = 2 * math.Pi

// Zero is the origin.
var Zero = r2.Point{}

// FromAngle returns the unit vector pointing at angle theta.
func FromAngle(theta float64) r2.Point {
	sin, cos := math.Sincos(theta)
	return r2.Point{X: cos, Y: sin}
}

// Polar returns a vector of length mag pointing at angle theta.
func Polar(mag, theta float64) r2.Point {
	return FromAngle(theta).Mul(mag)
}

// Rotate rotates p counter-clockwise by theta.
func Rotate(p r2.Point, theta float64) r2.Point {
	if theta == 0 {
		return p
	}
	sin, cos := math.Sincos(theta)
	return r2.Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Angle returns the direction of p. The zero vector has angle 0.
func Angle(p r2.Point) float64 {
	return math.Atan2(p.Y, p.X)
}

// IsZero reports whether p is exactly the origin.
func IsZero(p r2.Point) bool {
	return p.X == 0 && p.Y == 0
}

// WrapPi maps an angle into (-π, π]. Angles already in range are returned
// unchanged.
func WrapPi(a float64) float64 {
	if a > -math.Pi && a <= math.Pi {
		return a
	}
	a = math.Mod(a+math.Pi, TwoPi)
	if a <= 0 {
		a += TwoPi
	}
	return a - math.Pi
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}

// Sign returns -1, 0 or 1.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func IsFinitePoint(p r2.Point) bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
