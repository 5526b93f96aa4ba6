package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh simulator. Integrators and metrics keep scratch
// state, so each concurrent run gets its own.
type Factory func() (*Simulator, error)

type Ensemble struct {
	factory Factory
	limit   int
}

// NewEnsemble runs at most limit simulations at once; limit <= 0 means no limit.
func NewEnsemble(factory Factory, limit int) *Ensemble {
	return &Ensemble{factory: factory, limit: limit}
}

// Run simulates every initial state with the same config. Results are in
// the order of inits. The first failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, inits []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(inits))

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, x0 := range inits {
		g.Go(func() error {
			s, err := e.factory()
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res, err := s.Run(gctx, x0, cfg)
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
