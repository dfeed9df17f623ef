package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"greenwave/internal/model"
)

// ErrShapeMismatch is returned when two parent genomes differ in length.
var ErrShapeMismatch = errors.New("parent genomes differ in length")

// Crossover produces two offspring genomes from two parents of equal length.
// Every output element is copied verbatim from one of the parents, so
// in-bounds parents always yield in-bounds children and no clamping happens
// here.
type Crossover interface {
	Name() string
	Mate(rng *rand.Rand, parent1, parent2 model.Genome) (model.Genome, model.Genome, error)
}

// CrossoverFromName resolves a configured strategy name.
func CrossoverFromName(name string) (Crossover, error) {
	switch name {
	case "", "single_point":
		return SinglePointCrossover{}, nil
	case "two_point":
		return TwoPointCrossover{}, nil
	case "uniform":
		return UniformCrossover{}, nil
	default:
		return nil, fmt.Errorf("unknown crossover method: %s", name)
	}
}

// SinglePointCrossover cuts both parents at one point in [1, length-1] and
// swaps the suffixes.
type SinglePointCrossover struct{}

func (SinglePointCrossover) Name() string { return "single_point" }

func (SinglePointCrossover) Mate(rng *rand.Rand, parent1, parent2 model.Genome) (model.Genome, model.Genome, error) {
	if len(parent1) != len(parent2) {
		return nil, nil, fmt.Errorf("single_point: %w: %d vs %d", ErrShapeMismatch, len(parent1), len(parent2))
	}
	if len(parent1) < 2 {
		// No interior cut point exists.
		return parent1.Clone(), parent2.Clone(), nil
	}

	point := 1 + rng.Intn(len(parent1)-1)
	child1 := make(model.Genome, len(parent1))
	child2 := make(model.Genome, len(parent1))
	copy(child1, parent1[:point])
	copy(child1[point:], parent2[point:])
	copy(child2, parent2[:point])
	copy(child2[point:], parent1[point:])
	return child1, child2, nil
}

// TwoPointCrossover exchanges the middle segment between two ordered cut
// points.
type TwoPointCrossover struct{}

func (TwoPointCrossover) Name() string { return "two_point" }

func (TwoPointCrossover) Mate(rng *rand.Rand, parent1, parent2 model.Genome) (model.Genome, model.Genome, error) {
	if len(parent1) != len(parent2) {
		return nil, nil, fmt.Errorf("two_point: %w: %d vs %d", ErrShapeMismatch, len(parent1), len(parent2))
	}
	if len(parent1) < 3 {
		// Two distinct interior cut points need at least three elements.
		return parent1.Clone(), parent2.Clone(), nil
	}

	point1 := 1 + rng.Intn(len(parent1)-2)
	point2 := point1 + 1 + rng.Intn(len(parent1)-point1-1)

	child1 := parent1.Clone()
	child2 := parent2.Clone()
	copy(child1[point1:point2], parent2[point1:point2])
	copy(child2[point1:point2], parent1[point1:point2])
	return child1, child2, nil
}

// UniformCrossover swaps contributions per element with probability 0.5,
// independently per position.
type UniformCrossover struct{}

func (UniformCrossover) Name() string { return "uniform" }

func (UniformCrossover) Mate(rng *rand.Rand, parent1, parent2 model.Genome) (model.Genome, model.Genome, error) {
	if len(parent1) != len(parent2) {
		return nil, nil, fmt.Errorf("uniform: %w: %d vs %d", ErrShapeMismatch, len(parent1), len(parent2))
	}

	child1 := make(model.Genome, len(parent1))
	child2 := make(model.Genome, len(parent1))
	for i := range parent1 {
		if rng.Float64() < 0.5 {
			child1[i], child2[i] = parent1[i], parent2[i]
		} else {
			child1[i], child2[i] = parent2[i], parent1[i]
		}
	}
	return child1, child2, nil
}
