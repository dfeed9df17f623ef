package main

import (
	"encoding/json"
	"fmt"
	"os"

	"greenwave/internal/model"
	api "greenwave/pkg/greenwave"
)

func loadRunRequestFromConfig(path string) (api.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return api.RunRequest{}, err
	}

	var req api.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["oracle"]); ok {
		req.Oracle = v
	}
	if v, ok := asIntSlice(raw["seed_genome"]); ok {
		req.Seed = model.Genome(v)
	}
	if v, ok := asString(raw["network_path"]); ok {
		req.NetworkPath = v
	}
	if v, ok := asString(raw["junction_id"]); ok {
		req.JunctionID = v
	}
	if v, ok := asFloatSlice(raw["arrival_rates"]); ok {
		req.ArrivalRates = v
	}
	if v, ok := asFloat64(raw["noise_sigma"]); ok {
		req.NoiseSigma = v
	}
	if v, ok := asBool(raw["sequential"]); ok {
		req.Sequential = v
	}

	if v, ok := asInt(raw["population"]); ok {
		req.Config.PopulationSize = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Config.Generations = v
	}
	if v, ok := asInt(raw["tournament_size"]); ok {
		req.Config.TournamentSize = v
	}
	if v, ok := asInt(raw["select_count"]); ok {
		req.Config.SelectCount = v
	}
	if v, ok := asString(raw["crossover"]); ok {
		req.Config.CrossoverMethod = v
	}
	if v, ok := asString(raw["mutation"]); ok {
		req.Config.MutationMethod = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.Config.MutationRate = v
	}
	if v, ok := asFloat64(raw["mutation_sigma"]); ok {
		req.Config.MutationSigma = v
	}
	if v, ok := asFloat64(raw["mutation_decay"]); ok {
		req.Config.MutationDecay = v
	}
	if v, ok := asFloat64(raw["min_mutation_rate"]); ok {
		req.Config.MinMutationRate = v
	}
	if v, ok := asInt(raw["num_signals"]); ok {
		req.Config.NumSignals = v
	}
	if v, ok := asInt(raw["min_green"]); ok {
		req.Config.MinGreen = v
	}
	if v, ok := asInt(raw["max_green"]); ok {
		req.Config.MaxGreen = v
	}
	if v, ok := asFloat64(raw["init_variation_min"]); ok {
		req.Config.InitVariationMin = v
	}
	if v, ok := asFloat64(raw["init_variation_max"]); ok {
		req.Config.InitVariationMax = v
	}
	if v, ok := asInt(raw["max_init_attempts"]); ok {
		req.Config.MaxInitAttempts = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Config.Workers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Config.Seed = v
	}
	if v, ok := asBool(raw["track_gene_stats"]); ok {
		req.Config.TrackGeneStats = v
	}

	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (api.RunRequest, error) {
	if configPath == "" {
		return api.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return api.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

// applyRunDefaults fills in a usable demo configuration when neither the
// config file nor flags provided one.
func applyRunDefaults(req *api.RunRequest) {
	if req.Config.PopulationSize == 0 {
		req.Config.PopulationSize = 20
	}
	if req.Config.Generations == 0 {
		req.Config.Generations = 30
	}
	if req.Config.MinGreen == 0 && req.Config.MaxGreen == 0 {
		req.Config.MinGreen = 10
		req.Config.MaxGreen = 90
	}
	if len(req.Seed) == 0 && req.NetworkPath == "" {
		req.Seed = model.Genome{30, 45, 20, 30}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asIntSlice(v any) ([]int, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := asInt(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func asFloatSlice(v any) ([]float64, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := asFloat64(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}
