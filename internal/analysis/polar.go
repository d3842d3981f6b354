package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/sailsim/internal/metrics"
	"github.com/san-kum/sailsim/internal/sim"
)

// PolarPoint is the steady state reached at one true wind angle.
type PolarPoint struct {
	TrueWindAngle float64 // rad between bow and the wind's origin, [0, π]
	Speed         float64
	VMG           float64
}

// PolarSpec describes a sweep. Build returns a simulator holding a course
// at the given true wind angle.
type PolarSpec struct {
	Angles  []float64
	Config  sim.Config
	Settle  float64 // seconds ignored before averaging
	Workers int
	Build   func(twa float64) (*sim.Simulator, error)
}

// Polar runs one independent simulation per angle in parallel.
func Polar(ctx context.Context, spec PolarSpec) ([]PolarPoint, error) {
	if len(spec.Angles) == 0 {
		return nil, fmt.Errorf("polar: no angles")
	}
	if spec.Settle >= spec.Config.Duration {
		return nil, fmt.Errorf("polar: settle %.1fs leaves nothing of a %.1fs run", spec.Settle, spec.Config.Duration)
	}

	e := sim.NewEnsemble(len(spec.Angles), func(i int) (*sim.Simulator, error) {
		return spec.Build(spec.Angles[i])
	}).WithWorkers(spec.Workers)

	results, err := e.Run(ctx, spec.Config)
	if err != nil {
		return nil, err
	}

	points := make([]PolarPoint, len(results))
	for i, r := range results {
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("polar at %.2f rad: %w", spec.Angles[i], err)
		}
		speed, vmg, n := 0.0, 0.0, 0
		for _, s := range r.Snapshots {
			if s.Time < spec.Settle {
				continue
			}
			speed += s.Speed
			vmg += metrics.UpwindComponent(s)
			n++
		}
		if n > 0 {
			speed /= float64(n)
			vmg /= float64(n)
		}
		points[i] = PolarPoint{TrueWindAngle: spec.Angles[i], Speed: speed, VMG: vmg}
	}
	return points, nil
}

// BestVMG returns the point with the highest upwind VMG.
func BestVMG(points []PolarPoint) (PolarPoint, bool) {
	if len(points) == 0 {
		return PolarPoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.VMG > best.VMG {
			best = p
		}
	}
	return best, true
}
