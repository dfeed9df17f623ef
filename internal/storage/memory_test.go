package storage

import (
	"context"
	"testing"

	"greenwave/internal/model"
)

func sampleRun(id, createdAt string) model.RunRecord {
	return model.RunRecord{
		ID:             id,
		CreatedAtUTC:   createdAt,
		Oracle:         "webster",
		PopulationSize: 20,
		Generations:    30,
		Seed:           42,
		Workers:        4,
		BaselineCost:   61.5,
		BestCost:       48.2,
		Best:           model.Genome{28, 41, 22, 30},
	}
}

func sampleHistory() model.RunHistory {
	return model.RunHistory{
		Baseline: model.FitnessReport{Cost: 61.5},
		Generations: []model.GenerationRecord{
			{
				Generation: 0,
				Population: []model.Genome{{30, 45}, {28, 41}},
				Reports:    []model.FitnessReport{{Cost: 61.5}, {Cost: 48.2}},
				BestIndex:  1,
				BestGenome: model.Genome{28, 41},
				BestCost:   48.2,
				MeanCost:   54.85,
				Diversity:  1.0,
			},
		},
		Best:     model.Genome{28, 41},
		BestCost: 48.2,
	}
}

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func TestMemoryStoreRoundTripsRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	run := sampleRun("run-1", "2026-08-31T10:00:00Z")

	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, found, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !found {
		t.Fatal("run not found after save")
	}
	if got.BestCost != run.BestCost || !got.Best.Equal(run.Best) || got.Oracle != "webster" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMemoryStoreGetRunMissing(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.GetRun(context.Background(), "absent")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if found {
		t.Fatal("missing run reported as found")
	}
}

func TestMemoryStoreListRunsSorted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, run := range []model.RunRecord{
		sampleRun("b", "2026-08-31T12:00:00Z"),
		sampleRun("c", "2026-08-31T10:00:00Z"),
		sampleRun("a", "2026-08-31T12:00:00Z"),
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	var ids []string
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order: got %v want %v", ids, want)
		}
	}
}

func TestMemoryStoreSaveRunOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleRun("run-1", "2026-08-31T10:00:00Z")
	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("save run: %v", err)
	}
	second := first
	second.BestCost = 40.0
	if err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("save run again: %v", err)
	}

	got, _, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.BestCost != 40.0 {
		t.Fatalf("overwrite lost: got %v want 40", got.BestCost)
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("duplicate id must not add a row, got %d", len(runs))
	}
}

func TestMemoryStoreRoundTripsHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	history := sampleHistory()

	if err := store.SaveHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	got, found, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !found {
		t.Fatal("history not found after save")
	}
	if len(got.Generations) != 1 || got.BestCost != 48.2 || !got.Best.Equal(history.Best) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	_, found, err = store.GetHistory(ctx, "absent")
	if err != nil {
		t.Fatalf("get missing history: %v", err)
	}
	if found {
		t.Fatal("missing history reported as found")
	}
}

func TestMemoryStoreDoesNotAliasCallerMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	history := sampleHistory()
	if err := store.SaveHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history.Generations[0].Population[0][0] = 99
	history.Best[0] = 99

	got, _, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if got.Generations[0].Population[0][0] != 30 || got.Best[0] != 28 {
		t.Fatal("stored history aliases the caller's slices")
	}

	got.Generations[0].BestGenome[0] = 77
	again, _, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if again.Generations[0].BestGenome[0] != 28 {
		t.Fatal("returned history aliases stored memory")
	}
}
