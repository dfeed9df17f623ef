package stats

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"greenwave/internal/model"
)

func sampleRun() model.RunRecord {
	return model.RunRecord{
		ID:           "run-1",
		Oracle:       "webster",
		BaselineCost: 60,
		BestCost:     45,
		Best:         model.Genome{28, 41},
	}
}

func sampleHistory(withGeneStats bool) model.RunHistory {
	record := model.GenerationRecord{
		Generation: 0,
		Population: []model.Genome{{30, 45}, {28, 41}},
		Reports:    []model.FitnessReport{{Cost: 60}, {Cost: 45}},
		BestIndex:  1,
		BestGenome: model.Genome{28, 41},
		BestCost:   45,
		MeanCost:   52.5,
		StdCost:    10.6,
		Diversity:  1.0,
	}
	if withGeneStats {
		record.GeneStats = []model.GeneStats{
			{Mean: 29, Std: 1.4, Min: 28, Max: 30},
			{Mean: 43, Std: 2.8, Min: 41, Max: 45},
		}
	}
	return model.RunHistory{
		Baseline:    model.FitnessReport{Cost: 60},
		Generations: []model.GenerationRecord{record},
		Best:        model.Genome{28, 41},
		BestCost:    45,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestExportRunWritesAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "run-1")

	paths, err := ExportRun(dir, sampleRun(), sampleHistory(true))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	for _, path := range []string{paths.Convergence, paths.BestSolution, paths.GeneStats, paths.Complete} {
		if path == "" {
			t.Fatal("expected every artifact path to be set")
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}
}

func TestConvergenceCSVContents(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportRun(dir, sampleRun(), sampleHistory(false))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	rows := readCSV(t, paths.Convergence)
	if len(rows) != 2 {
		t.Fatalf("rows: got %d want header plus one generation", len(rows))
	}
	header := strings.Join(rows[0], ",")
	if header != "generation,best_cost,mean_cost,std_cost,diversity,improvement_pct" {
		t.Fatalf("header: %s", header)
	}
	if rows[1][0] != "0" {
		t.Fatalf("generation column: %s", rows[1][0])
	}
	// (60 - 45) / 60 = 25% improvement over the baseline timing.
	if rows[1][5] != "25.00" {
		t.Fatalf("improvement column: %s", rows[1][5])
	}
}

func TestBestSolutionCSVContents(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportRun(dir, sampleRun(), sampleHistory(false))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	rows := readCSV(t, paths.BestSolution)
	got := map[string]string{}
	for _, row := range rows {
		got[row[0]] = row[1]
	}
	if got["run_id"] != "run-1" || got["oracle"] != "webster" {
		t.Fatalf("identity rows wrong: %v", got)
	}
	if got["gene_0"] != "28" || got["gene_1"] != "41" {
		t.Fatalf("gene rows wrong: %v", got)
	}
	if got["improvement_pct"] != "25.00" {
		t.Fatalf("improvement row wrong: %v", got)
	}
}

func TestGeneStatsCSVIsConditional(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportRun(dir, sampleRun(), sampleHistory(false))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if paths.GeneStats != "" {
		t.Fatal("gene statistics path set without tracked stats")
	}
	if _, err := os.Stat(filepath.Join(dir, "gene_statistics.csv")); !os.IsNotExist(err) {
		t.Fatal("gene statistics file written without tracked stats")
	}

	paths, err = ExportRun(t.TempDir(), sampleRun(), sampleHistory(true))
	if err != nil {
		t.Fatalf("export with stats: %v", err)
	}
	rows := readCSV(t, paths.GeneStats)
	// Header plus one row per gene of the single generation.
	if len(rows) != 3 {
		t.Fatalf("rows: got %d want 3", len(rows))
	}
	if rows[1][1] != "0" || rows[2][1] != "1" {
		t.Fatalf("gene column wrong: %v", rows)
	}
}

func TestCompleteJSONRoundTrips(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportRun(dir, sampleRun(), sampleHistory(true))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(paths.Complete)
	if err != nil {
		t.Fatalf("read complete json: %v", err)
	}
	var payload struct {
		Run     model.RunRecord  `json:"run"`
		History model.RunHistory `json:"history"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Run.ID != "run-1" || payload.History.BestCost != 45 {
		t.Fatalf("payload mismatch: %+v", payload)
	}
	if len(payload.History.Generations[0].GeneStats) != 2 {
		t.Fatal("gene stats dropped from complete json")
	}
}
