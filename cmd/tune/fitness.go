package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/spawn"
	"github.com/pthm-cable/fluid/telemetry"
)

// failedFitness is returned for parameter sets the solver cannot run.
const failedFitness = 1e6

// errNoWindows means a run was too short to produce a scored window.
var errNoWindows = errors.New("no telemetry windows after warmup")

// Score component weights.
const (
	weightDensityError = 0.45
	weightSpread       = 0.25
	weightMotion       = 0.20
	weightRecovery     = 0.10

	scoreWarmupWindows = 2 // skip first N windows while the fluid settles
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	ticks       int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	logger      *slog.Logger

	mu        sync.Mutex
	lastScore Score // from the most recent Evaluate call
}

// Score breaks fitness into its components (lower = better for each).
type Score struct {
	DensityError float64 // |median density / target - 1|
	Spread       float64 // density std / target
	Motion       float64 // p90 speed / render speed scale
	Recovery     float64 // recoveries per particle per window
}

// Fitness combines the components into the minimised scalar.
func (s Score) Fitness() float64 {
	return weightDensityError*s.DensityError +
		weightSpread*s.Spread +
		weightMotion*s.Motion +
		weightRecovery*s.Recovery
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		ticks:       ticks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastScore returns the averaged score from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run in parallel, each on a single-worker simulation. Any failed seed
// fails the whole evaluation.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, raw)
	if err := cfg.Validate(); err != nil {
		fe.logger.Warn("invalid parameters", "error", err)
		fe.setLast(Score{})
		return failedFitness
	}

	results := make([]Score, len(fe.seeds))
	var eg errgroup.Group
	for i, seed := range fe.seeds {
		eg.Go(func() error {
			windows, err := fe.runSimulation(cfg, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			score, ok := computeScore(windows, cfg)
			if !ok {
				return fmt.Errorf("seed %d: %w", seed, errNoWindows)
			}
			results[i] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		fe.logger.Warn("run failed", "error", err)
		fe.setLast(Score{})
		return failedFitness
	}

	var avg Score
	for _, r := range results {
		avg.DensityError += r.DensityError
		avg.Spread += r.Spread
		avg.Motion += r.Motion
		avg.Recovery += r.Recovery
	}
	n := float64(len(results))
	avg.DensityError /= n
	avg.Spread /= n
	avg.Motion /= n
	avg.Recovery /= n

	fe.setLast(avg)
	fitness := avg.Fitness()
	if math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		return failedFitness
	}
	return fitness
}

func (fe *FitnessEvaluator) setLast(s Score) {
	fe.mu.Lock()
	fe.lastScore = s
	fe.mu.Unlock()
}

// runSimulation executes a single headless run and returns every telemetry
// window.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	opts := cfg.SpawnOptions()
	opts.Seed = seed
	// The box layout is deterministic; seeds only matter for random spawns
	// and jitter.
	if opts.Layout == spawn.LayoutBox && opts.Jitter == 0 {
		opts.Jitter = 1
	}

	particles, err := spawn.Particles(opts)
	if err != nil {
		return nil, err
	}

	sim, err := fluid.New(cfg.Params(), len(particles),
		fluid.WithWorkers(1),
		fluid.WithLogger(fe.logger),
	)
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	collector := telemetry.NewCollector(fe.statsWindow, cfg.Derived.DT32)
	var windows []telemetry.WindowStats

	for tick := int32(1); tick <= fe.ticks; tick++ {
		stats, err := sim.Step(particles, cfg.Derived.DT32, nil)
		if err != nil {
			return nil, err
		}
		collector.RecordTick(stats)
		if collector.ShouldFlush(tick) {
			windows = append(windows, collector.Flush(tick, particles))
		}
	}
	return windows, nil
}

// copyConfig creates a copy of the base config. Config holds only values,
// so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeScore scores the windows after warmup. It reports false when there
// is nothing to score.
func computeScore(windows []telemetry.WindowStats, cfg *config.Config) (Score, bool) {
	if len(windows) <= scoreWarmupWindows {
		return Score{}, false
	}
	valid := windows[scoreWarmupWindows:]
	target := cfg.Physics.TargetDensity
	speedScale := cfg.Render.SpeedScale

	densityErr := make([]float64, len(valid))
	spread := make([]float64, len(valid))
	motion := make([]float64, len(valid))
	recovery := make([]float64, len(valid))

	for i, w := range valid {
		densityErr[i] = math.Abs(w.DensityP50/target - 1)
		spread[i] = w.DensityStd / target
		motion[i] = w.SpeedP90 / speedScale
		if w.Particles > 0 {
			recovery[i] = float64(w.Recoveries) / float64(w.Particles)
		}
	}

	return Score{
		DensityError: stat.Mean(densityErr, nil),
		Spread:       stat.Mean(spread, nil),
		Motion:       stat.Mean(motion, nil),
		Recovery:     stat.Mean(recovery, nil),
	}, true
}
