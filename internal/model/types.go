package model

import (
	"strconv"
	"strings"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is a fixed-length vector of signal green-phase durations in seconds.
// A genome is treated as immutable once it has entered a population; derived
// genomes are always fresh values.
type Genome []int

func (g Genome) Clone() Genome {
	if g == nil {
		return nil
	}
	return append(Genome(nil), g...)
}

func (g Genome) Equal(other Genome) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical string form used for duplicate detection and
// diversity accounting.
func (g Genome) Key() string {
	var b strings.Builder
	for i, v := range g {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func (g Genome) InBounds(min, max int) bool {
	for _, v := range g {
		if v < min || v > max {
			return false
		}
	}
	return true
}

// FitnessReport is the structured result of one oracle evaluation. Cost is
// the scalar being minimized; Metrics carry auxiliary oracle measurements
// that the engine passes through untouched.
type FitnessReport struct {
	Cost    float64            `json:"cost"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// GeneStats summarizes one genome position across a population.
type GeneStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  int     `json:"min"`
	Max  int     `json:"max"`
}

// GenerationRecord is the bookkeeping snapshot taken after each evaluation
// phase, sufficient to reconstruct convergence behavior after the run.
type GenerationRecord struct {
	Generation   int             `json:"generation"`
	Population   []Genome        `json:"population"`
	Reports      []FitnessReport `json:"reports"`
	BestIndex    int             `json:"best_index"`
	BestGenome   Genome          `json:"best_genome"`
	BestCost     float64         `json:"best_cost"`
	MeanCost     float64         `json:"mean_cost"`
	StdCost      float64         `json:"std_cost"`
	Diversity    float64         `json:"diversity"`
	MutationRate float64         `json:"mutation_rate"`
	GeneStats    []GeneStats     `json:"gene_stats,omitempty"`
}

// RunHistory is the full record of one optimization run: the baseline
// evaluation of the seed genome, every generation snapshot in order, and the
// best genome observed across the whole run.
type RunHistory struct {
	VersionedRecord
	Baseline    FitnessReport      `json:"baseline"`
	Generations []GenerationRecord `json:"generations"`
	Best        Genome             `json:"best"`
	BestCost    float64            `json:"best_cost"`
}

// RunRecord is the persisted summary of a completed run.
type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	Oracle         string  `json:"oracle"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers"`
	BaselineCost   float64 `json:"baseline_cost"`
	BestCost       float64 `json:"best_cost"`
	Best           Genome  `json:"best"`
}
