package evo

import (
	"math/rand"
	"testing"

	"greenwave/internal/model"
)

func TestInitialPopulationShape(t *testing.T) {
	cfg := validConfig()
	rng := rand.New(rand.NewSource(1))
	seed := model.Genome{15, 20, 25, 15}

	population := InitialPopulation(rng, cfg, seed)

	if len(population) != cfg.PopulationSize {
		t.Fatalf("population size: got %d want %d", len(population), cfg.PopulationSize)
	}
	if !population[0].Equal(seed) {
		t.Fatalf("first member must be the unmutated seed, got %v", population[0])
	}
	for i, genome := range population {
		if len(genome) != len(seed) {
			t.Fatalf("genome %d length: got %d want %d", i, len(genome), len(seed))
		}
		if !genome.InBounds(cfg.MinGreen, cfg.MaxGreen) {
			t.Fatalf("genome %d out of bounds: %v", i, genome)
		}
	}
}

func TestInitialPopulationDoesNotAliasSeed(t *testing.T) {
	cfg := validConfig()
	rng := rand.New(rand.NewSource(2))
	seed := model.Genome{15, 15, 15, 15}

	population := InitialPopulation(rng, cfg, seed)
	population[0][0] = 99
	if seed[0] != 15 {
		t.Fatal("factory aliased the caller's seed genome")
	}
}

func TestInitialPopulationAvoidsDuplicatesWhenPossible(t *testing.T) {
	cfg := validConfig()
	cfg.PopulationSize = 8
	rng := rand.New(rand.NewSource(3))
	seed := model.Genome{15, 20, 25, 15, 20, 25}

	population := InitialPopulation(rng, cfg, seed)

	seen := map[string]int{}
	for _, genome := range population {
		seen[genome.Key()]++
	}
	// A six-gene genome over a 21-value range gives the perturbation loop
	// plenty of room, so the attempt budget should not be exhausted.
	if len(seen) != cfg.PopulationSize {
		t.Fatalf("expected %d distinct genomes, got %d", cfg.PopulationSize, len(seen))
	}
}

func TestInitialPopulationFallsBackToRandomFill(t *testing.T) {
	// A single gene clamped into a one-value range forces every perturbed
	// candidate to collide with the seed.
	cfg := Config{
		PopulationSize:  5,
		Generations:     1,
		MinGreen:        15,
		MaxGreen:        15,
		MaxInitAttempts: 10,
	}
	rng := rand.New(rand.NewSource(4))
	seed := model.Genome{15}

	population := InitialPopulation(rng, cfg, seed)

	if len(population) != cfg.PopulationSize {
		t.Fatalf("fallback must still fill the population: got %d want %d", len(population), cfg.PopulationSize)
	}
	for i, genome := range population {
		if !genome.InBounds(cfg.MinGreen, cfg.MaxGreen) {
			t.Fatalf("genome %d out of bounds after fallback: %v", i, genome)
		}
	}
}
