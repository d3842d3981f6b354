package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/sailsim/internal/sim"
)

// Evaluation is one grid point and the metric it scored.
type Evaluation struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
	Workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search runs one simulation per grid point and returns the best point and
// every evaluation in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulator, error),
	cfg sim.Config,
	metricName string,
) (Evaluation, []Evaluation, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Evaluation{}, nil, fmt.Errorf("grid: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []map[string]float64
	g.enumerate(0, map[string]float64{}, &points)
	if len(points) == 0 {
		return Evaluation{}, nil, fmt.Errorf("grid: empty search space")
	}

	e := sim.NewEnsemble(len(points), func(i int) (*sim.Simulator, error) {
		return build(points[i])
	}).WithWorkers(g.Workers)

	results, err := e.Run(ctx, cfg)
	if err != nil {
		return Evaluation{}, nil, err
	}

	evals := make([]Evaluation, len(points))
	best := Evaluation{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	for i, r := range results {
		val, ok := r.Metrics[metricName]
		if !ok {
			return Evaluation{}, nil, fmt.Errorf("grid: metric %q not recorded", metricName)
		}
		if r.Err() != nil {
			val = math.NaN()
		}
		evals[i] = Evaluation{Params: points[i], Value: val}

		if math.IsNaN(val) {
			continue
		}
		if (g.Maximize && val > best.Value) || (!g.Maximize && val < best.Value) {
			best = evals[i]
		}
	}
	if best.Params == nil {
		return Evaluation{}, evals, fmt.Errorf("grid: no point produced a valid run")
	}
	return best, evals, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val
		g.enumerate(depth+1, next, out)
	}
}
