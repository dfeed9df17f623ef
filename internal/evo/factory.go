package evo

import (
	"math"
	"math/rand"

	"greenwave/internal/model"
)

// InitialPopulation builds the generation-0 population from one seed genome.
// The seed itself is always the first member. Remaining slots are filled by
// scaling each seed element with an independent uniform factor in
// [InitVariationMin, InitVariationMax], rounded and clamped to the green
// bounds. Whole-genome duplicates are rejected until MaxInitAttempts is
// spent; after that, leftover slots are filled with uniform random genomes
// and duplicates are tolerated, so the factory always terminates with
// exactly cfg.PopulationSize genomes.
func InitialPopulation(rng *rand.Rand, cfg Config, seed model.Genome) []model.Genome {
	cfg = cfg.normalized()

	population := make([]model.Genome, 0, cfg.PopulationSize)
	seen := make(map[string]struct{}, cfg.PopulationSize)

	first := seed.Clone()
	population = append(population, first)
	seen[first.Key()] = struct{}{}

	attempts := 0
	for len(population) < cfg.PopulationSize && attempts < cfg.MaxInitAttempts {
		attempts++
		candidate := perturbSeed(rng, cfg, seed)
		key := candidate.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		population = append(population, candidate)
	}

	// Attempt budget exhausted: random fill, duplicates allowed.
	for len(population) < cfg.PopulationSize {
		candidate := make(model.Genome, len(seed))
		for i := range candidate {
			candidate[i] = cfg.MinGreen + rng.Intn(cfg.MaxGreen-cfg.MinGreen+1)
		}
		population = append(population, candidate)
	}

	return population
}

func perturbSeed(rng *rand.Rand, cfg Config, seed model.Genome) model.Genome {
	candidate := make(model.Genome, len(seed))
	span := cfg.InitVariationMax - cfg.InitVariationMin
	for i, base := range seed {
		factor := cfg.InitVariationMin + rng.Float64()*span
		value := int(math.Round(float64(base) * factor))
		candidate[i] = clamp(value, cfg.MinGreen, cfg.MaxGreen)
	}
	return candidate
}
