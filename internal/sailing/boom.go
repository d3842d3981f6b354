package sailing

import (
	"math"

	"github.com/san-kum/sailsim/internal/vmath"
)

// SheetBounds returns the sheet lengths for which the triangle
// (boom, block distance, sheet) is solvable, shrunk by slack on both ends.
func SheetBounds(boom, blockDistance, slack float64) (lo, hi float64) {
	lo = math.Abs(blockDistance-boom) + slack
	hi = math.Sqrt(boom*boom+blockDistance*blockDistance) - slack
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func ClampSheet(length, lo, hi float64) float64 {
	return vmath.Clamp(length, lo, hi)
}

// MaxBoomAngle solves the sheet triangle with the law of cosines: the angle
// at the pivot between the boom and the pivot→block line when the sheet is
// taut. The acos argument is clamped to [-1, 1]; a degenerate triangle
// places no limit on the boom.
func MaxBoomAngle(boom, blockDistance, sheet float64) float64 {
	den := 2 * boom * blockDistance
	if den == 0 {
		return math.Pi
	}
	cos := (boom*boom + blockDistance*blockDistance - sheet*sheet) / den
	return math.Acos(vmath.Clamp(cos, -1, 1))
}

// SheetForAngle is the inverse of MaxBoomAngle: the sheet length that lets
// the boom swing exactly to angle.
func SheetForAngle(boom, blockDistance, angle float64) float64 {
	sq := boom*boom + blockDistance*blockDistance - 2*boom*blockDistance*math.Cos(angle)
	return math.Sqrt(math.Max(sq, 0))
}

// ConstrainBoom wraps rotation into (-π, π] and clamps it to ±maxAngle.
func ConstrainBoom(rotation, maxAngle float64) float64 {
	return vmath.Clamp(vmath.WrapPi(rotation), -maxAngle, maxAngle)
}

// Constrain applies the mainsheet to the sail: the sheet length is clamped
// into its admissible range, the maximum boom angle is solved and the
// rotation clamped to it. Pivot and block ride on the same rigid hull, so
// their distance is taken in the boat frame.
func (s *Sail) Constrain(slack float64) {
	b := s.BlockDistance()

	lo, hi := s.sheetRangeAt(b, slack)
	s.SheetLength = ClampSheet(s.SheetLength, lo, hi)

	s.MaxAngle = MaxBoomAngle(s.BoomLength, b, s.SheetLength)
	s.Rotation = ConstrainBoom(s.Rotation, s.MaxAngle)
}
