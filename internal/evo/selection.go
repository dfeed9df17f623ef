package evo

import (
	"fmt"
	"math/rand"
)

// TournamentSelector picks parent indices by repeated tournaments over the
// fitness vector: each draw samples TournamentSize distinct indices without
// replacement and keeps the one with the lowest cost. Ties go to the index
// sampled first.
type TournamentSelector struct {
	TournamentSize int
}

func (s TournamentSelector) Name() string {
	return "tournament"
}

// Select returns count winner indices into costs. The input slice is never
// mutated and every returned index is a valid index into costs.
func (s TournamentSelector) Select(rng *rand.Rand, costs []float64, count int) ([]int, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(costs) == 0 {
		return nil, fmt.Errorf("fitness vector is empty")
	}
	size := s.TournamentSize
	if size <= 0 {
		size = DefaultTournamentSize
	}
	if size > len(costs) {
		return nil, fmt.Errorf("tournament size %d exceeds candidate count %d", size, len(costs))
	}
	if count < 0 {
		return nil, fmt.Errorf("select count must be >= 0")
	}

	selected := make([]int, 0, count)
	scratch := make([]int, len(costs))
	for draw := 0; draw < count; draw++ {
		sample := sampleIndices(rng, scratch, size)
		winner := sample[0]
		for _, idx := range sample[1:] {
			if costs[idx] < costs[winner] {
				winner = idx
			}
		}
		selected = append(selected, winner)
	}
	return selected, nil
}

// sampleIndices draws k distinct indices from [0, len(scratch)) uniformly
// without replacement, preserving draw order. scratch is reused across calls
// to avoid per-draw allocation.
func sampleIndices(rng *rand.Rand, scratch []int, k int) []int {
	for i := range scratch {
		scratch[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	return scratch[:k]
}
