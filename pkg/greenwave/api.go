// Package greenwave is the public API for running and inspecting
// signal-timing optimizations.
package greenwave

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"greenwave/internal/evo"
	"greenwave/internal/model"
	"greenwave/internal/network"
	"greenwave/internal/oracle"
	"greenwave/internal/stats"
	"greenwave/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "greenwave.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	exportsDir string
}

// RunRequest describes one optimization run. The seed genome comes either
// from Seed directly or from a SUMO network file via NetworkPath/JunctionID.
type RunRequest struct {
	RunID  string
	Oracle string

	Seed        model.Genome
	NetworkPath string
	JunctionID  string

	// ArrivalRates parameterize the synthetic oracle, one per green phase.
	// Empty means a uniform moderate demand.
	ArrivalRates []float64
	NoiseSigma   float64

	// Sequential forces single-instance evaluation even with Workers > 1.
	Sequential bool

	Config evo.Config
}

type RunSummary struct {
	RunID        string
	Best         model.Genome
	BestCost     float64
	BaselineCost float64
	Generations  int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes the full optimization and persists the summary and history.
// On an evaluation failure nothing is persisted and the returned error
// carries the failing generation index.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	seed, err := c.resolveSeed(req)
	if err != nil {
		return RunSummary{}, err
	}

	cfg := req.Config
	if cfg.NumSignals == 0 {
		cfg.NumSignals = len(seed)
	}

	evaluator, oracleName, err := c.buildEvaluator(req, cfg, len(seed))
	if err != nil {
		return RunSummary{}, err
	}

	engine, err := evo.NewEngine(cfg, evaluator)
	if err != nil {
		return RunSummary{}, err
	}

	result, err := engine.Run(ctx, seed)
	if err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	record := model.RunRecord{
		ID:             runID,
		CreatedAtUTC:   time.Now().UTC().Format(time.RFC3339),
		Oracle:         oracleName,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		Seed:           cfg.Seed,
		Workers:        cfg.Workers,
		BaselineCost:   result.Baseline.Cost,
		BestCost:       result.BestCost,
		Best:           result.Best,
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveHistory(ctx, runID, result.History); err != nil {
		return RunSummary{}, fmt.Errorf("save history: %w", err)
	}

	return RunSummary{
		RunID:        runID,
		Best:         result.Best,
		BestCost:     result.BestCost,
		BaselineCost: result.Baseline.Cost,
		Generations:  len(result.History.Generations),
	}, nil
}

func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx)
}

func (c *Client) History(ctx context.Context, runID string) (model.RunHistory, error) {
	history, ok, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return model.RunHistory{}, err
	}
	if !ok {
		return model.RunHistory{}, fmt.Errorf("no history for run %s", runID)
	}
	return history, nil
}

// Export writes the run's artifacts and returns the directory they landed in.
func (c *Client) Export(ctx context.Context, runID, outDir string) (string, error) {
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown run %s", runID)
	}
	history, err := c.History(ctx, runID)
	if err != nil {
		return "", err
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Join(c.exportsDir, runID)
	}
	if _, err := stats.ExportRun(dir, run, history); err != nil {
		return "", err
	}
	return dir, nil
}

func (c *Client) resolveSeed(req RunRequest) (model.Genome, error) {
	if len(req.Seed) > 0 {
		return req.Seed.Clone(), nil
	}
	if req.NetworkPath == "" {
		return nil, fmt.Errorf("either a seed genome or a network path is required")
	}
	junction := req.JunctionID
	if junction == "" {
		junction = "j1"
	}
	return network.SeedFromNetwork(req.NetworkPath, junction)
}

func (c *Client) buildEvaluator(req RunRequest, cfg evo.Config, phases int) (evo.Evaluator, string, error) {
	switch req.Oracle {
	case "", "webster":
	default:
		return nil, "", fmt.Errorf("unknown oracle: %s", req.Oracle)
	}

	rates := req.ArrivalRates
	if len(rates) == 0 {
		rates = make([]float64, phases)
		for i := range rates {
			rates[i] = 0.15
		}
	}
	if len(rates) != phases {
		return nil, "", fmt.Errorf("arrival rates length %d does not match phase count %d", len(rates), phases)
	}

	websterCfg := oracle.WebsterConfig{
		ArrivalRates: rates,
		NoiseSigma:   req.NoiseSigma,
		Seed:         cfg.Seed,
	}

	if req.Sequential || cfg.Workers <= 1 {
		instance, err := oracle.NewWebster(websterCfg)
		if err != nil {
			return nil, "", err
		}
		evaluator, err := oracle.NewSequential(instance)
		if err != nil {
			return nil, "", err
		}
		return evaluator, instance.Name(), nil
	}

	evaluator, err := oracle.NewPool(oracle.WebsterFactory(websterCfg), cfg.Workers)
	if err != nil {
		return nil, "", err
	}
	return evaluator, "webster", nil
}
