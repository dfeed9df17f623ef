package oracle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"greenwave/internal/model"
)

// countingOracle reports each genome's first element as its cost and tracks
// how many evaluations it served.
type countingOracle struct {
	id    int
	calls int64
	fail  error
}

func (o *countingOracle) Name() string { return "counting" }

func (o *countingOracle) Evaluate(_ context.Context, genome model.Genome) (model.FitnessReport, error) {
	atomic.AddInt64(&o.calls, 1)
	if o.fail != nil {
		return model.FitnessReport{}, o.fail
	}
	return model.FitnessReport{Cost: float64(genome[0])}, nil
}

func population(n int) []model.Genome {
	out := make([]model.Genome, n)
	for i := range out {
		out[i] = model.Genome{i, 20, 30}
	}
	return out
}

func TestSequentialPreservesOrder(t *testing.T) {
	eval, err := NewSequential(&countingOracle{})
	if err != nil {
		t.Fatalf("new sequential: %v", err)
	}

	reports, err := eval.EvaluateAll(context.Background(), population(5))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i, report := range reports {
		if report.Cost != float64(i) {
			t.Fatalf("report %d holds cost %v, results are out of order", i, report.Cost)
		}
	}
}

func TestSequentialStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	oracle := &countingOracle{fail: boom}
	eval, err := NewSequential(oracle)
	if err != nil {
		t.Fatalf("new sequential: %v", err)
	}

	if _, err := eval.EvaluateAll(context.Background(), population(5)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("sequential must stop at the first failure, served %d calls", oracle.calls)
	}
}

func TestPoolPreservesOrder(t *testing.T) {
	factory := func() (Oracle, error) { return &countingOracle{}, nil }
	pool, err := NewPool(factory, 4)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	reports, err := pool.EvaluateAll(context.Background(), population(40))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i, report := range reports {
		if report.Cost != float64(i) {
			t.Fatalf("report %d holds cost %v, results are out of order", i, report.Cost)
		}
	}
}

func TestPoolBuildsOneInstancePerWorker(t *testing.T) {
	var mu sync.Mutex
	var built []*countingOracle
	factory := func() (Oracle, error) {
		mu.Lock()
		defer mu.Unlock()
		instance := &countingOracle{id: len(built)}
		built = append(built, instance)
		return instance, nil
	}

	pool, err := NewPool(factory, 3)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if len(built) != 3 {
		t.Fatalf("instances built eagerly: got %d want 3", len(built))
	}

	if _, err := pool.EvaluateAll(context.Background(), population(30)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	total := int64(0)
	for _, instance := range built {
		total += atomic.LoadInt64(&instance.calls)
	}
	if total != 30 {
		t.Fatalf("evaluations served: got %d want 30", total)
	}
}

func TestPoolPropagatesFactoryFailure(t *testing.T) {
	boom := errors.New("no license slot")
	calls := 0
	factory := func() (Oracle, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return &countingOracle{}, nil
	}

	if _, err := NewPool(factory, 3); !errors.Is(err, boom) {
		t.Fatalf("expected factory failure, got %v", err)
	}
}

func TestPoolFailsWholeCallOnEvaluationError(t *testing.T) {
	boom := errors.New("simulator died")
	var nth int64
	factory := func() (Oracle, error) {
		n := atomic.AddInt64(&nth, 1)
		if n == 1 {
			return &countingOracle{fail: boom}, nil
		}
		return &countingOracle{}, nil
	}

	pool, err := NewPool(factory, 2)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	if _, err := pool.EvaluateAll(context.Background(), population(10)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestPoolDefaultsToSingleWorker(t *testing.T) {
	pool, err := NewPool(func() (Oracle, error) { return &countingOracle{}, nil }, 0)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if pool.Workers() != 1 {
		t.Fatalf("workers: got %d want 1", pool.Workers())
	}
}

func TestPoolRequiresFactory(t *testing.T) {
	if _, err := NewPool(nil, 2); err == nil {
		t.Fatal("expected error for nil factory")
	}
}

func TestPoolDoesNotShareGenomeMemory(t *testing.T) {
	captured := make(chan model.Genome, 1)
	factory := func() (Oracle, error) {
		return oracleFunc(func(_ context.Context, genome model.Genome) (model.FitnessReport, error) {
			select {
			case captured <- genome:
			default:
			}
			return model.FitnessReport{}, nil
		}), nil
	}

	pool, err := NewPool(factory, 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	input := []model.Genome{{10, 20, 30}}
	if _, err := pool.EvaluateAll(context.Background(), input); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	genome := <-captured
	genome[0] = 99
	if input[0][0] != 10 {
		t.Fatal("oracle received an alias of the caller's genome")
	}
}

type oracleFunc func(ctx context.Context, genome model.Genome) (model.FitnessReport, error)

func (oracleFunc) Name() string { return "func" }

func (f oracleFunc) Evaluate(ctx context.Context, genome model.Genome) (model.FitnessReport, error) {
	return f(ctx, genome)
}
