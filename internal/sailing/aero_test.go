package sailing

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func TestApparentWind(t *testing.T) {
	wind := Wind{Speed: 10, Direction: 0}
	aw := wind.Apparent(r2.Point{})
	if math.Abs(aw.X-10) > 1e-12 || math.Abs(aw.Y) > 1e-12 {
		t.Errorf("expected (10, 0) for a stationary boat, got %v", aw)
	}

	for _, v := range []r2.Point{{X: 3, Y: -1}, {X: -7, Y: 2}, {X: 0, Y: 11}} {
		got := ApparentWind(wind.Vector(), v)
		want := wind.Vector().Sub(v)
		if got.Sub(want).Norm() > 1e-12 {
			t.Errorf("v=%v: expected %v, got %v", v, want, got)
		}
	}
}

func TestSailForcesZeroWind(t *testing.T) {
	a := SailForces(r2.Point{}, 1, r2.Point{X: 0, Y: 1}, DefaultParams())
	if a.Drag != (r2.Point{}) || a.Lift != (r2.Point{}) {
		t.Errorf("expected no force in calm air, got %+v", a)
	}
	if tq := SailTorque(r2.Point{}, 1, DefaultParams()); tq != 0 {
		t.Errorf("expected no torque in calm air, got %v", tq)
	}
}

func TestLiftPointsAwayFromSheet(t *testing.T) {
	p := DefaultParams()
	apparent := r2.Point{X: 6, Y: -4}
	for rot := -math.Pi; rot < math.Pi; rot += 0.3 {
		for _, side := range []r2.Point{{X: 1, Y: 2}, {X: -3, Y: 0.5}, {X: 0.2, Y: -4}} {
			a := SailForces(apparent, rot, side, p)
			if d := a.Lift.Dot(side); d > 1e-12 {
				t.Errorf("rot=%v side=%v: lift %v points toward the sheet", rot, side, a.Lift)
			}
		}
	}
}

func TestLiftPeaksAtIdealAngle(t *testing.T) {
	p := DefaultParams()
	apparent := r2.Point{X: 10}
	side := r2.Point{X: 0, Y: -1}

	mag := func(aoa float64) float64 {
		return SailForces(apparent, -aoa, side, p).Lift.Norm()
	}

	best, bestAoA := -1.0, 0.0
	for deg := -10; deg <= 80; deg++ {
		aoa := float64(deg) * math.Pi / 180
		if m := mag(aoa); m > best {
			best, bestAoA = m, aoa
		}
	}
	if math.Abs(bestAoA-p.LiftPeak) > math.Pi/180 {
		t.Errorf("expected peak near %v rad, got %v", p.LiftPeak, bestAoA)
	}

	// trimmed at 45°: easing toward the peak gains lift, going past it loses
	start := mag(math.Pi / 4)
	if peak := mag(p.LiftPeak); peak <= start {
		t.Errorf("lift did not grow toward the peak: %v -> %v", start, peak)
	}
	if past := mag(-math.Pi / 18); past >= mag(p.LiftPeak) {
		t.Errorf("lift did not fall past the peak: %v", past)
	}

	a := SailForces(apparent, -p.LiftPeak, side, p)
	if off := math.Abs(math.Abs(0-a.IdealOffset) - math.Pi/2); off > 1e-9 {
		t.Errorf("expected the peak a quarter turn from the ideal offset, off by %v", off)
	}
}

func TestSailTorqueTurnsBoomDownwind(t *testing.T) {
	p := DefaultParams()
	apparent := r2.Point{X: 0, Y: 10}

	// boom pointing aft with the wind on the beam swings toward +Y
	if tq := SailTorque(apparent, math.Pi, p); tq >= 0 {
		t.Errorf("expected negative torque, got %v", tq)
	}
	if tq := SailTorque(apparent, 0, p); tq <= 0 {
		t.Errorf("expected positive torque, got %v", tq)
	}
	if tq := SailTorque(apparent, math.Pi/2, p); math.Abs(tq) > 1e-12 {
		t.Errorf("expected no torque with the boom downwind, got %v", tq)
	}
}
