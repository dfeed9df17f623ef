package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"greenwave/internal/model"
)

// Evaluator scores a whole population. Implementations may run sequentially
// or dispatch to workers, but the returned reports must be index-aligned
// with the input population and any single failure must fail the whole call.
type Evaluator interface {
	EvaluateAll(ctx context.Context, population []model.Genome) ([]model.FitnessReport, error)
}

// EvaluationError wraps an oracle failure with the generation it occurred
// in. BaselineGeneration marks the seed evaluation before generation 0.
type EvaluationError struct {
	Generation int
	Err        error
}

const BaselineGeneration = -1

func (e *EvaluationError) Error() string {
	if e.Generation == BaselineGeneration {
		return fmt.Sprintf("baseline evaluation failed: %v", e.Err)
	}
	return fmt.Sprintf("evaluation failed at generation %d: %v", e.Generation, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// RunResult is what a terminated run yields. When Run returns an error the
// result still carries the partial history collected up to the last fully
// recorded generation.
type RunResult struct {
	Best     model.Genome
	BestCost float64
	Baseline model.FitnessReport
	History  model.RunHistory
}

// Engine drives the generational loop:
// Initializing -> Evaluating -> Recording -> Selecting -> Breeding -> loop,
// terminating after a fixed number of generations. All stochastic operators
// draw from the single seeded random source owned by the engine, so a run is
// reproducible up to the oracle's own internal stochasticity.
type Engine struct {
	cfg       Config
	rng       *rand.Rand
	evaluator Evaluator
	selector  TournamentSelector
	crossover Crossover
	mutator   Mutator
	recorder  Recorder
}

func NewEngine(cfg Config, evaluator Evaluator) (*Engine, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	crossover, err := CrossoverFromName(cfg.CrossoverMethod)
	if err != nil {
		return nil, err
	}
	mutator, err := MutatorFromName(cfg.MutationMethod, cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		evaluator: evaluator,
		selector:  TournamentSelector{TournamentSize: cfg.TournamentSize},
		crossover: crossover,
		mutator:   mutator,
		recorder:  Recorder{TrackGeneStats: cfg.TrackGeneStats},
	}, nil
}

// Run evaluates the seed once as the baseline, builds generation 0 from it,
// and loops for cfg.Generations generations. Any evaluation failure aborts
// the run immediately; no partially evaluated generation is recorded.
func (e *Engine) Run(ctx context.Context, seed model.Genome) (RunResult, error) {
	if len(seed) == 0 {
		return RunResult{}, fmt.Errorf("seed genome is empty")
	}
	if e.cfg.NumSignals > 0 && len(seed) != e.cfg.NumSignals {
		return RunResult{}, fmt.Errorf("seed genome length %d does not match configured signal count %d", len(seed), e.cfg.NumSignals)
	}
	if !seed.InBounds(e.cfg.MinGreen, e.cfg.MaxGreen) {
		return RunResult{}, fmt.Errorf("seed genome violates green bounds [%d, %d]", e.cfg.MinGreen, e.cfg.MaxGreen)
	}

	result := RunResult{BestCost: math.Inf(1)}
	result.History = model.RunHistory{
		Generations: make([]model.GenerationRecord, 0, e.cfg.Generations),
	}

	baselineReports, err := e.evaluator.EvaluateAll(ctx, []model.Genome{seed.Clone()})
	if err != nil {
		return result, &EvaluationError{Generation: BaselineGeneration, Err: err}
	}
	result.Baseline = baselineReports[0]
	result.History.Baseline = baselineReports[0]

	population := InitialPopulation(e.rng, e.cfg, seed)

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return result, &EvaluationError{Generation: gen, Err: err}
		}

		reports, err := e.evaluator.EvaluateAll(ctx, population)
		if err != nil {
			return result, &EvaluationError{Generation: gen, Err: err}
		}

		rate := e.cfg.RateAt(gen)
		record := e.recorder.Record(gen, population, reports, rate)
		result.History.Generations = append(result.History.Generations, record)

		if record.BestCost < result.BestCost {
			result.Best = record.BestGenome.Clone()
			result.BestCost = record.BestCost
		}
		result.History.Best = result.Best
		result.History.BestCost = result.BestCost

		costs := make([]float64, len(reports))
		for i, report := range reports {
			costs[i] = report.Cost
		}
		parents, err := e.selector.Select(e.rng, costs, e.cfg.SelectCount)
		if err != nil {
			return result, err
		}

		population, err = e.breed(population, parents, record.BestGenome, rate)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// breed pairs selected parents two at a time in selection order, mutating
// each child with the generation's decayed rate. An unpaired final parent is
// carried over unmutated. The generation best then replaces one slot as an
// unmutated elite copy, and the child list is shuffled uniformly so the
// elite is not predictably positioned for the next round's pairing.
func (e *Engine) breed(population []model.Genome, parents []int, elite model.Genome, rate float64) ([]model.Genome, error) {
	size := e.cfg.PopulationSize
	children := make([]model.Genome, 0, size)

	i := 0
	for ; i+1 < len(parents) && len(children) < size; i += 2 {
		child1, child2, err := e.crossover.Mate(e.rng, population[parents[i]], population[parents[i+1]])
		if err != nil {
			return nil, err
		}
		children = append(children, e.mutator.Mutate(e.rng, child1, rate))
		if len(children) < size {
			children = append(children, e.mutator.Mutate(e.rng, child2, rate))
		}
	}
	if i < len(parents) && len(children) < size {
		children = append(children, population[parents[i]].Clone())
	}

	// Elitism: the generation best survives unmutated, either in the slot
	// reserved by SelectCount = size-1 or over child slot 0.
	if len(children) < size {
		children = append(children, elite.Clone())
	} else {
		children[0] = elite.Clone()
	}

	e.rng.Shuffle(len(children), func(a, b int) {
		children[a], children[b] = children[b], children[a]
	})
	return children, nil
}
