package oracle

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"greenwave/internal/model"
)

// WebsterConfig parameterizes the synthetic intersection oracle. One arrival
// rate per controllable green phase; genomes must have the same length.
type WebsterConfig struct {
	// ArrivalRates in vehicles/second per approach.
	ArrivalRates []float64
	// SaturationFlow in vehicles/second discharged during green. Zero means
	// 0.5 (a typical single-lane value of 1800 veh/h).
	SaturationFlow float64
	// LostTime in seconds per phase change (amber plus startup). Zero means 4.
	LostTime float64
	// NoiseSigma adds zero-mean gaussian noise to the cost, emulating a
	// stochastic microscopic simulation. Zero keeps the oracle deterministic.
	NoiseSigma float64
	Seed       int64
}

// Webster approximates a signalized intersection with Webster's uniform
// delay formula. It is deliberately cheap but shares the real simulator's
// shape: longer cycles and starved approaches raise the average wait. The
// noise source makes instances stateful, so each worker gets its own.
type Webster struct {
	cfg WebsterConfig
	rng *rand.Rand
}

func NewWebster(cfg WebsterConfig) (*Webster, error) {
	if len(cfg.ArrivalRates) == 0 {
		return nil, fmt.Errorf("at least one arrival rate is required")
	}
	for i, rate := range cfg.ArrivalRates {
		if rate < 0 {
			return nil, fmt.Errorf("arrival rate %d must be >= 0", i)
		}
	}
	if cfg.SaturationFlow == 0 {
		cfg.SaturationFlow = 0.5
	}
	if cfg.SaturationFlow < 0 {
		return nil, fmt.Errorf("saturation flow must be > 0")
	}
	if cfg.LostTime == 0 {
		cfg.LostTime = 4
	}
	if cfg.LostTime < 0 {
		return nil, fmt.Errorf("lost time must be >= 0")
	}
	return &Webster{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// WebsterFactory returns a Factory producing independent instances. Each
// instance derives its own noise stream from the base seed and its index.
func WebsterFactory(cfg WebsterConfig) Factory {
	next := cfg.Seed
	return func() (Oracle, error) {
		instanceCfg := cfg
		instanceCfg.Seed = next
		next++
		return NewWebster(instanceCfg)
	}
}

func (w *Webster) Name() string { return "webster" }

func (w *Webster) Evaluate(ctx context.Context, genome model.Genome) (model.FitnessReport, error) {
	if err := ctx.Err(); err != nil {
		return model.FitnessReport{}, err
	}
	if len(genome) != len(w.cfg.ArrivalRates) {
		return model.FitnessReport{}, fmt.Errorf("genome has %d phases, intersection has %d approaches", len(genome), len(w.cfg.ArrivalRates))
	}

	cycle := w.cfg.LostTime * float64(len(genome))
	for _, green := range genome {
		if green <= 0 {
			return model.FitnessReport{}, fmt.Errorf("green duration must be > 0, got %d", green)
		}
		cycle += float64(green)
	}

	totalArrivals := 0.0
	totalDelay := 0.0
	totalQueue := 0.0
	for i, arrival := range w.cfg.ArrivalRates {
		greenRatio := float64(genome[i]) / cycle
		saturation := arrival / (greenRatio * w.cfg.SaturationFlow)
		// Keep the formula finite near capacity; oversaturation would need a
		// time-dependent term the microscopic simulator handles itself.
		if saturation > 0.97 {
			saturation = 0.97
		}
		delay := 0.5 * cycle * (1 - greenRatio) * (1 - greenRatio) / (1 - greenRatio*saturation)
		totalArrivals += arrival
		totalDelay += arrival * delay
		totalQueue += arrival * delay
	}

	meanWait := 0.0
	if totalArrivals > 0 {
		meanWait = totalDelay / totalArrivals
	}

	cost := meanWait
	if w.cfg.NoiseSigma > 0 {
		cost = math.Max(0, cost+w.rng.NormFloat64()*w.cfg.NoiseSigma)
	}

	return model.FitnessReport{
		Cost: cost,
		Metrics: map[string]float64{
			"mean_wait":  meanWait,
			"mean_queue": totalQueue / float64(len(genome)),
			"cycle_time": cycle,
		},
	}, nil
}
