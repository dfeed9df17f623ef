package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"greenwave/internal/model"
	"greenwave/internal/storage"
	api "greenwave/pkg/greenwave"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: greenwavectl <init|run|runs|history|export> [flags]", msg)
}

func newClient(storeKind, dbPath string) (*api.Client, error) {
	return api.New(api.Options{StoreKind: storeKind, DBPath: dbPath})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "greenwave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "greenwave.db", "sqlite database path")
	configPath := fs.String("config", "", "JSON run configuration file")
	seedFlag := fs.String("seed-genome", "", "comma-separated seed genome, e.g. 30,45,20,30")
	netPath := fs.String("net", "", "SUMO network file to extract the seed genome from")
	junction := fs.String("junction", "j1", "traffic light id in the network file")
	pop := fs.Int("pop", 0, "population size")
	gens := fs.Int("gens", 0, "generations")
	workers := fs.Int("workers", 0, "parallel evaluation workers")
	seed := fs.Int64("seed", 0, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *seedFlag != "" {
		genome, err := parseGenome(*seedFlag)
		if err != nil {
			return err
		}
		req.Seed = genome
	}
	if *netPath != "" {
		req.NetworkPath = *netPath
		req.JunctionID = *junction
	}
	if *pop > 0 {
		req.Config.PopulationSize = *pop
	}
	if *gens > 0 {
		req.Config.Generations = *gens
	}
	if *workers > 0 {
		req.Config.Workers = *workers
	}
	if *seed != 0 {
		req.Config.Seed = *seed
	}
	applyRunDefaults(&req)

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s generations=%d\n", summary.RunID, summary.Generations)
	fmt.Printf("baseline_cost=%.4f best_cost=%.4f\n", summary.BaselineCost, summary.BestCost)
	fmt.Printf("best_genome=%s\n", summary.Best.Key())
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "greenwave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Init(ctx); err != nil {
		return err
	}
	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  oracle=%s pop=%d gens=%d baseline=%.4f best=%.4f\n",
			run.ID, run.CreatedAtUTC, run.Oracle, run.PopulationSize, run.Generations, run.BaselineCost, run.BestCost)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "greenwave.db", "sqlite database path")
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("history requires -run-id")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Init(ctx); err != nil {
		return err
	}
	history, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}

	fmt.Printf("baseline_cost=%.4f\n", history.Baseline.Cost)
	for _, generation := range history.Generations {
		fmt.Printf("gen=%d best=%.4f mean=%.4f std=%.4f diversity=%.2f rate=%.3f\n",
			generation.Generation, generation.BestCost, generation.MeanCost,
			generation.StdCost, generation.Diversity, generation.MutationRate)
	}
	fmt.Printf("best_cost=%.4f best_genome=%s\n", history.BestCost, history.Best.Key())
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "greenwave.db", "sqlite database path")
	runID := fs.String("run-id", "", "run id")
	outDir := fs.String("out", "", "output directory (default exports/<run-id>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("export requires -run-id")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Init(ctx); err != nil {
		return err
	}
	dir, err := client.Export(ctx, *runID, *outDir)
	if err != nil {
		return err
	}
	fmt.Printf("exported run %s to %s\n", *runID, dir)
	return nil
}

func parseGenome(s string) (model.Genome, error) {
	parts := strings.Split(s, ",")
	genome := make(model.Genome, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid seed genome element %q", part)
		}
		genome = append(genome, v)
	}
	return genome, nil
}
