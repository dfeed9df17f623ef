// Package stats writes run artifacts for offline analysis: a convergence
// CSV, a best-solution CSV, per-gene statistics, and the complete history as
// JSON. Plotting lives outside this module.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"greenwave/internal/model"
)

type ArtifactPaths struct {
	Convergence  string
	BestSolution string
	GeneStats    string
	Complete     string
}

// ExportRun writes all artifacts for one run into dir, creating it if
// needed. The gene-statistics CSV is only written when the history carries
// per-gene stats.
func ExportRun(dir string, run model.RunRecord, history model.RunHistory) (ArtifactPaths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ArtifactPaths{}, err
	}

	paths := ArtifactPaths{
		Convergence:  filepath.Join(dir, "convergence.csv"),
		BestSolution: filepath.Join(dir, "best_solution.csv"),
		Complete:     filepath.Join(dir, "run.json"),
	}

	if err := writeConvergence(paths.Convergence, history); err != nil {
		return ArtifactPaths{}, fmt.Errorf("write convergence: %w", err)
	}
	if err := writeBestSolution(paths.BestSolution, run, history); err != nil {
		return ArtifactPaths{}, fmt.Errorf("write best solution: %w", err)
	}
	if hasGeneStats(history) {
		paths.GeneStats = filepath.Join(dir, "gene_statistics.csv")
		if err := writeGeneStats(paths.GeneStats, history); err != nil {
			return ArtifactPaths{}, fmt.Errorf("write gene statistics: %w", err)
		}
	}
	if err := writeComplete(paths.Complete, run, history); err != nil {
		return ArtifactPaths{}, fmt.Errorf("write complete json: %w", err)
	}
	return paths, nil
}

func writeConvergence(path string, history model.RunHistory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generation", "best_cost", "mean_cost", "std_cost", "diversity", "improvement_pct"}); err != nil {
		return err
	}

	baseline := history.Baseline.Cost
	for _, generation := range history.Generations {
		improvement := 0.0
		if baseline > 0 {
			improvement = (baseline - generation.BestCost) / baseline * 100
		}
		row := []string{
			strconv.Itoa(generation.Generation),
			formatFloat(generation.BestCost),
			formatFloat(generation.MeanCost),
			formatFloat(generation.StdCost),
			formatFloat(generation.Diversity),
			fmt.Sprintf("%.2f", improvement),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeBestSolution(path string, run model.RunRecord, history model.RunHistory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{
		{"run_id", run.ID},
		{"oracle", run.Oracle},
		{"total_generations", strconv.Itoa(len(history.Generations))},
		{"baseline_cost", formatFloat(history.Baseline.Cost)},
		{"best_cost", formatFloat(history.BestCost)},
	}
	if history.Baseline.Cost > 0 {
		improvement := (history.Baseline.Cost - history.BestCost) / history.Baseline.Cost * 100
		rows = append(rows, []string{"improvement_pct", fmt.Sprintf("%.2f", improvement)})
	}
	for i, value := range history.Best {
		rows = append(rows, []string{fmt.Sprintf("gene_%d", i), strconv.Itoa(value)})
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func writeGeneStats(path string, history model.RunHistory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generation", "gene", "mean", "std", "min", "max"}); err != nil {
		return err
	}
	for _, generation := range history.Generations {
		for gene, gs := range generation.GeneStats {
			row := []string{
				strconv.Itoa(generation.Generation),
				strconv.Itoa(gene),
				formatFloat(gs.Mean),
				formatFloat(gs.Std),
				strconv.Itoa(gs.Min),
				strconv.Itoa(gs.Max),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeComplete(path string, run model.RunRecord, history model.RunHistory) error {
	payload := struct {
		Run     model.RunRecord  `json:"run"`
		History model.RunHistory `json:"history"`
	}{Run: run, History: history}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func hasGeneStats(history model.RunHistory) bool {
	for _, generation := range history.Generations {
		if len(generation.GeneStats) > 0 {
			return true
		}
	}
	return false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
