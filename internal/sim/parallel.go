package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh plant, controller and metric set for one run.
// Controllers are never shared between goroutines.
type Factory func() (Plant, Controller, []Metric)

// Ensemble repeats one setup over consecutive seeds.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// Run executes one simulation per seed in its own goroutine. Results are
// ordered by seed. The first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		runCfg := cfg
		runCfg.Seed = e.seedStart + int64(i)

		g.Go(func() error {
			plant, ctrl, metrics := e.factory()
			s := New(plant, ctrl)
			for _, m := range metrics {
				s.AddMetric(m)
			}

			res, err := s.Run(gctx, runCfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", runCfg.Seed, err)
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
