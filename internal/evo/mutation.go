package evo

import (
	"fmt"
	"math"
	"math/rand"

	"greenwave/internal/model"
)

// Mutator perturbs a genome element-wise: each element is replaced with
// probability rate, others are copied unchanged. The input genome is never
// mutated and every output element stays within the mutator's green bounds.
type Mutator interface {
	Name() string
	Mutate(rng *rand.Rand, genome model.Genome, rate float64) model.Genome
}

// MutatorFromName resolves a configured strategy name against cfg's bounds.
func MutatorFromName(name string, cfg Config) (Mutator, error) {
	cfg = cfg.normalized()
	switch name {
	case "", "gaussian":
		return GaussianMutator{Sigma: cfg.MutationSigma, MinGreen: cfg.MinGreen, MaxGreen: cfg.MaxGreen}, nil
	case "random_reset":
		return RandomResetMutator{MinGreen: cfg.MinGreen, MaxGreen: cfg.MaxGreen}, nil
	case "creep":
		return CreepMutator{MinGreen: cfg.MinGreen, MaxGreen: cfg.MaxGreen}, nil
	default:
		return nil, fmt.Errorf("unknown mutation method: %s", name)
	}
}

// GaussianMutator adds a rounded N(0, Sigma) step, clamped to bounds.
type GaussianMutator struct {
	Sigma    float64
	MinGreen int
	MaxGreen int
}

func (GaussianMutator) Name() string { return "gaussian" }

func (m GaussianMutator) Mutate(rng *rand.Rand, genome model.Genome, rate float64) model.Genome {
	mutated := genome.Clone()
	for i, value := range genome {
		if rng.Float64() < rate {
			step := int(math.Round(rng.NormFloat64() * m.Sigma))
			mutated[i] = clamp(value+step, m.MinGreen, m.MaxGreen)
		}
	}
	return mutated
}

// RandomResetMutator replaces the element with a uniform random value in
// bounds.
type RandomResetMutator struct {
	MinGreen int
	MaxGreen int
}

func (RandomResetMutator) Name() string { return "random_reset" }

func (m RandomResetMutator) Mutate(rng *rand.Rand, genome model.Genome, rate float64) model.Genome {
	mutated := genome.Clone()
	for i := range genome {
		if rng.Float64() < rate {
			mutated[i] = m.MinGreen + rng.Intn(m.MaxGreen-m.MinGreen+1)
		}
	}
	return mutated
}

// CreepMutator adds a small uniform step in [-Step, +Step], clamped to
// bounds. Step defaults to 5.
type CreepMutator struct {
	Step     int
	MinGreen int
	MaxGreen int
}

func (CreepMutator) Name() string { return "creep" }

func (m CreepMutator) Mutate(rng *rand.Rand, genome model.Genome, rate float64) model.Genome {
	step := m.Step
	if step <= 0 {
		step = 5
	}
	mutated := genome.Clone()
	for i, value := range genome {
		if rng.Float64() < rate {
			change := rng.Intn(2*step+1) - step
			mutated[i] = clamp(value+change, m.MinGreen, m.MaxGreen)
		}
	}
	return mutated
}
