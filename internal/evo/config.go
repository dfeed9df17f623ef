package evo

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyPopulation marks a degenerate configuration that is rejected
// before a run starts.
var ErrEmptyPopulation = errors.New("population size must be > 0")

// Config holds every parameter the optimizer consumes. It is passed by value
// into each component so concurrent runs with different parameters cannot
// interfere with each other.
type Config struct {
	PopulationSize int
	Generations    int

	TournamentSize int
	// SelectCount is the number of parents drawn per generation. Zero means
	// PopulationSize. PopulationSize-1 reserves one slot for the elite clone.
	SelectCount int

	CrossoverMethod string
	MutationMethod  string

	MutationRate    float64
	MutationSigma   float64
	MutationDecay   float64
	MinMutationRate float64

	// NumSignals is the genome length. Zero means "take it from the seed".
	NumSignals int
	MinGreen   int
	MaxGreen   int

	InitVariationMin float64
	InitVariationMax float64
	MaxInitAttempts  int

	Workers int
	Seed    int64

	TrackGeneStats bool
}

const (
	DefaultTournamentSize   = 3
	DefaultMutationRate     = 0.25
	DefaultMutationSigma    = 5.0
	DefaultMutationDecay    = 1.0
	DefaultInitVariationMin = 0.5
	DefaultInitVariationMax = 1.5
	DefaultMaxInitAttempts  = 100
)

// normalized returns a copy with zero-valued optional fields replaced by
// their defaults. Validate operates on the normalized form.
func (c Config) normalized() Config {
	if c.TournamentSize <= 0 {
		c.TournamentSize = DefaultTournamentSize
	}
	if c.SelectCount <= 0 {
		c.SelectCount = c.PopulationSize
	}
	if c.CrossoverMethod == "" {
		c.CrossoverMethod = "single_point"
	}
	if c.MutationMethod == "" {
		c.MutationMethod = "gaussian"
	}
	if c.MutationRate == 0 {
		c.MutationRate = DefaultMutationRate
	}
	if c.MutationSigma == 0 {
		c.MutationSigma = DefaultMutationSigma
	}
	if c.MutationDecay == 0 {
		c.MutationDecay = DefaultMutationDecay
	}
	if c.InitVariationMin == 0 {
		c.InitVariationMin = DefaultInitVariationMin
	}
	if c.InitVariationMax == 0 {
		c.InitVariationMax = DefaultInitVariationMax
	}
	if c.MaxInitAttempts <= 0 {
		c.MaxInitAttempts = DefaultMaxInitAttempts
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return ErrEmptyPopulation
	}
	if c.Generations <= 0 {
		return fmt.Errorf("generations must be > 0")
	}
	if c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("tournament size %d exceeds population size %d", c.TournamentSize, c.PopulationSize)
	}
	if c.SelectCount > 0 && c.SelectCount < c.PopulationSize-1 {
		return fmt.Errorf("select count %d must be at least population size - 1", c.SelectCount)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0, 1]")
	}
	if c.MutationDecay < 0 || c.MutationDecay > 1 {
		return fmt.Errorf("mutation decay must be in [0, 1]")
	}
	if c.MinMutationRate < 0 || c.MinMutationRate > 1 {
		return fmt.Errorf("min mutation rate must be in [0, 1]")
	}
	if c.MinGreen < 0 || c.MaxGreen < c.MinGreen {
		return fmt.Errorf("green bounds [%d, %d] are invalid", c.MinGreen, c.MaxGreen)
	}
	if c.InitVariationMin > c.InitVariationMax {
		return fmt.Errorf("init variation range [%v, %v] is invalid", c.InitVariationMin, c.InitVariationMax)
	}
	return nil
}

// RateAt returns the decayed mutation rate for one generation:
// max(MinMutationRate, MutationRate * MutationDecay^generation). It is
// computed once per generation and applied uniformly to every mutation in it.
func (c Config) RateAt(generation int) float64 {
	rate := c.MutationRate * math.Pow(c.MutationDecay, float64(generation))
	return math.Max(c.MinMutationRate, rate)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
