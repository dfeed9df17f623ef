package storage

import (
	"context"
	"sort"
	"sync"

	"greenwave/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	histories   map[string]model.RunHistory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.histories = make(map[string]model.RunHistory)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Best = run.Best.Clone()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Best = run.Best.Clone()
	return run, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.Best = run.Best.Clone()
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC
	})
	return runs, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history model.RunHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories[runID] = cloneHistory(history)
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) (model.RunHistory, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.histories[runID]
	if !ok {
		return model.RunHistory{}, false, nil
	}
	return cloneHistory(history), true, nil
}

func cloneHistory(history model.RunHistory) model.RunHistory {
	out := history
	out.Best = history.Best.Clone()
	out.Generations = make([]model.GenerationRecord, len(history.Generations))
	for i, generation := range history.Generations {
		record := generation
		record.BestGenome = generation.BestGenome.Clone()
		record.Population = make([]model.Genome, len(generation.Population))
		for j, genome := range generation.Population {
			record.Population[j] = genome.Clone()
		}
		record.Reports = append([]model.FitnessReport(nil), generation.Reports...)
		record.GeneStats = append([]model.GeneStats(nil), generation.GeneStats...)
		out.Generations[i] = record
	}
	return out
}
