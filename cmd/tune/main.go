// Package main provides CMA-ES tuning of the solver's pressure, viscosity and
// rest density for a calm, evenly packed fluid.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fluid/config"
)

// EvalRecord is one row of the evaluation log.
type EvalRecord struct {
	Eval               int     `csv:"eval"`
	Fitness            float64 `csv:"fitness"`
	DensityError       float64 `csv:"density_error"`
	Spread             float64 `csv:"spread"`
	Motion             float64 `csv:"motion"`
	Recovery           float64 `csv:"recovery"`
	PressureMultiplier float64 `csv:"pressure_multiplier"`
	ViscosityStrength  float64 `csv:"viscosity_strength"`
	TargetDensity      float64 `csv:"target_density"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

type tuneFlags struct {
	configPath string
	ticks      int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var f tuneFlags
	flag.StringVar(&f.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&f.ticks, "ticks", 1200, "Simulation ticks per run")
	flag.IntVar(&f.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&f.maxEvals, "max-evals", 120, "Maximum number of evaluations")
	flag.IntVar(&f.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&f.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func run(f tuneFlags) error {
	switch {
	case f.outputDir == "":
		return errors.New("--output is required")
	case f.seeds < 1:
		return errors.New("--seeds must be at least 1")
	}
	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector(baseCfg)
	evalSeeds := make([]int64, f.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(f.ticks), evalSeeds, baseCfg)

	popSize := f.population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}

	logFile, err := os.Create(filepath.Join(f.outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating eval log: %w", err)
	}
	defer logFile.Close()

	tr := &evalTracker{log: logFile, maxEvals: f.maxEvals, best: failedFitness, start: time.Now()}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			tr.record(clamped, fitness, evaluator.LastScore())
			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES tuning with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, f.maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", f.seeds, f.ticks)

	// Concurrent stays 0: seeds already run in parallel inside Evaluate.
	settings := &optimize.Settings{FuncEvaluations: f.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := tr.bestParams
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", tr.evals, formatDuration(time.Since(tr.start)))
	fmt.Printf("Best fitness: %.4f\n", tr.best)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %g\n", spec.Path, best[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, best)
	out := filepath.Join(f.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", out)
	return nil
}

// evalTracker logs each evaluation to CSV, keeps the best parameters seen and
// prints progress with an ETA.
type evalTracker struct {
	log      *os.File
	header   bool
	maxEvals int
	start    time.Time

	evals      int
	best       float64
	bestParams []float64
}

func (t *evalTracker) record(raw []float64, fitness float64, score Score) {
	t.evals++
	if t.bestParams == nil || fitness < t.best {
		t.best = fitness
		t.bestParams = append([]float64(nil), raw...)
	}

	rec := []EvalRecord{{
		Eval:               t.evals,
		Fitness:            fitness,
		DensityError:       score.DensityError,
		Spread:             score.Spread,
		Motion:             score.Motion,
		Recovery:           score.Recovery,
		PressureMultiplier: raw[0],
		ViscosityStrength:  raw[1],
		TargetDensity:      raw[2],
	}}
	if err := t.writeEval(rec); err != nil {
		log.Printf("failed to write eval log: %v", err)
	}

	elapsed := time.Since(t.start)
	remaining := time.Duration(t.maxEvals-t.evals) * (elapsed / time.Duration(t.evals))
	fmt.Printf("Eval %d/%d: fitness=%.4f density_err=%.3f spread=%.3f motion=%.3f (best=%.4f) | elapsed: %s, ETA: %s\n",
		t.evals, t.maxEvals, fitness, score.DensityError, score.Spread, score.Motion, t.best,
		formatDuration(elapsed), formatDuration(max(remaining, 0)))
}

func (t *evalTracker) writeEval(records []EvalRecord) error {
	if t.header {
		return gocsv.MarshalWithoutHeaders(&records, t.log)
	}
	if err := gocsv.Marshal(&records, t.log); err != nil {
		return err
	}
	t.header = true
	return nil
}
