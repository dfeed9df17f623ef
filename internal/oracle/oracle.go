// Package oracle adapts external fitness evaluators to the optimizer. The
// real traffic simulator is an external collaborator; this package defines
// the boundary, the dispatch machinery, and a synthetic intersection model
// used for local runs and tests.
package oracle

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"greenwave/internal/model"
)

// Oracle evaluates one genome. Implementations may hold internal state and
// need not be safe for concurrent use; concurrent dispatch gives every
// worker its own instance via a Factory.
type Oracle interface {
	Name() string
	Evaluate(ctx context.Context, genome model.Genome) (model.FitnessReport, error)
}

// Factory creates an independent oracle instance for one worker.
type Factory func() (Oracle, error)

// Sequential evaluates a population one genome at a time on a single oracle
// instance.
type Sequential struct {
	oracle Oracle
}

func NewSequential(oracle Oracle) (*Sequential, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	return &Sequential{oracle: oracle}, nil
}

func (s *Sequential) EvaluateAll(ctx context.Context, population []model.Genome) ([]model.FitnessReport, error) {
	reports := make([]model.FitnessReport, len(population))
	for i, genome := range population {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := s.oracle.Evaluate(ctx, genome.Clone())
		if err != nil {
			return nil, fmt.Errorf("evaluate genome %d: %w", i, err)
		}
		reports[i] = report
	}
	return reports, nil
}

// Pool dispatches genomes to a bounded worker pool. Each in-flight
// evaluation borrows one of workers pre-built oracle instances, so no
// instance is ever used by two evaluations at once. Results are written to
// their original index regardless of completion order, and the first failure
// cancels the remaining work and fails the whole call.
type Pool struct {
	instances chan Oracle
	workers   int
}

func NewPool(factory Factory, workers int) (*Pool, error) {
	if factory == nil {
		return nil, fmt.Errorf("oracle factory is required")
	}
	if workers <= 0 {
		workers = 1
	}
	instances := make(chan Oracle, workers)
	for i := 0; i < workers; i++ {
		instance, err := factory()
		if err != nil {
			return nil, fmt.Errorf("build oracle instance %d: %w", i, err)
		}
		instances <- instance
	}
	return &Pool{instances: instances, workers: workers}, nil
}

func (p *Pool) Workers() int { return p.workers }

func (p *Pool) EvaluateAll(ctx context.Context, population []model.Genome) ([]model.FitnessReport, error) {
	reports := make([]model.FitnessReport, len(population))

	tasks := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(p.workers).
		WithCancelOnError().
		WithFirstError()

	for i := range population {
		i := i
		genome := population[i].Clone()
		tasks.Go(func(ctx context.Context) error {
			instance := <-p.instances
			defer func() { p.instances <- instance }()

			report, err := instance.Evaluate(ctx, genome)
			if err != nil {
				return fmt.Errorf("evaluate genome %d: %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := tasks.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
