package evo

import (
	"gonum.org/v1/gonum/stat"

	"greenwave/internal/model"
)

// Recorder captures the per-generation statistics needed to reconstruct
// convergence behavior after the run. It never aliases population memory:
// snapshots and the best genome are copies.
type Recorder struct {
	TrackGeneStats bool
}

// Record builds the snapshot for one fully evaluated generation. The best
// index is the first index attaining the minimum cost; diversity is the
// fraction of the population that is pairwise genome-distinct.
func (r Recorder) Record(generation int, population []model.Genome, reports []model.FitnessReport, rate float64) model.GenerationRecord {
	costs := make([]float64, len(reports))
	for i, report := range reports {
		costs[i] = report.Cost
	}

	bestIdx := 0
	for i, cost := range costs {
		if cost < costs[bestIdx] {
			bestIdx = i
		}
	}

	std := 0.0
	if len(costs) > 1 {
		std = stat.StdDev(costs, nil)
	}

	distinct := make(map[string]struct{}, len(population))
	for _, genome := range population {
		distinct[genome.Key()] = struct{}{}
	}

	snapshot := make([]model.Genome, len(population))
	for i, genome := range population {
		snapshot[i] = genome.Clone()
	}
	reportsCopy := make([]model.FitnessReport, len(reports))
	copy(reportsCopy, reports)

	record := model.GenerationRecord{
		Generation:   generation,
		Population:   snapshot,
		Reports:      reportsCopy,
		BestIndex:    bestIdx,
		BestGenome:   population[bestIdx].Clone(),
		BestCost:     costs[bestIdx],
		MeanCost:     stat.Mean(costs, nil),
		StdCost:      std,
		Diversity:    float64(len(distinct)) / float64(len(population)),
		MutationRate: rate,
	}
	if r.TrackGeneStats {
		record.GeneStats = geneStats(population)
	}
	return record
}

// geneStats computes per-position mean/std/min/max across the population.
func geneStats(population []model.Genome) []model.GeneStats {
	if len(population) == 0 || len(population[0]) == 0 {
		return nil
	}
	length := len(population[0])
	out := make([]model.GeneStats, length)
	column := make([]float64, len(population))
	for pos := 0; pos < length; pos++ {
		min, max := population[0][pos], population[0][pos]
		for i, genome := range population {
			v := genome[pos]
			column[i] = float64(v)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		std := 0.0
		if len(column) > 1 {
			std = stat.StdDev(column, nil)
		}
		out[pos] = model.GeneStats{
			Mean: stat.Mean(column, nil),
			Std:  std,
			Min:  min,
			Max:  max,
		}
	}
	return out
}
