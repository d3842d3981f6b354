package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulators side by side. Each run gets its own
// world from build, so nothing is shared between goroutines.
type Ensemble struct {
	build   func(idx int) (*Simulator, error)
	numRuns int
	workers int
}

func NewEnsemble(numRuns int, build func(idx int) (*Simulator, error)) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, workers: runtime.NumCPU()}
}

// WithWorkers caps the number of runs in flight.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := e.build(i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
