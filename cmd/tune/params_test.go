package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/telemetry"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestParamVectorDefaults(t *testing.T) {
	cfg := loadDefaults(t)
	pv := NewParamVector(cfg)

	if pv.Dim() != 3 {
		t.Fatalf("Dim = %d, want 3", pv.Dim())
	}
	want := []float64{cfg.Physics.PressureMultiplier, cfg.Physics.ViscosityStrength, cfg.Physics.TargetDensity}
	got := pv.DefaultVector()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("default[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector(loadDefaults(t))
	raw := []float64{20000, 1e-7, 0.25}

	norm := pv.Normalize(raw)
	for i, v := range norm {
		if v < 0 || v > 1 {
			t.Errorf("normalized[%d] = %g, outside [0,1]", i, v)
		}
	}
	back := pv.Denormalize(norm)
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9*math.Max(1, raw[i]) {
			t.Errorf("round trip[%d] = %g, want %g", i, back[i], raw[i])
		}
	}
}

func TestNormalizeLogScale(t *testing.T) {
	pv := NewParamVector(loadDefaults(t))

	// Geometric midpoint of a log-scaled range lands at 0.5.
	spec := pv.Specs[1]
	mid := math.Sqrt(spec.Min * spec.Max)
	norm := pv.Normalize([]float64{pv.Specs[0].Min, mid, pv.Specs[2].Max})

	if math.Abs(norm[0]) > 1e-12 {
		t.Errorf("min pressure normalized = %g, want 0", norm[0])
	}
	if math.Abs(norm[1]-0.5) > 1e-9 {
		t.Errorf("geometric midpoint normalized = %g, want 0.5", norm[1])
	}
	if math.Abs(norm[2]-1) > 1e-12 {
		t.Errorf("max density normalized = %g, want 1", norm[2])
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector(loadDefaults(t))

	got := pv.Clamp([]float64{1, math.NaN(), 5})
	want := []float64{pv.Specs[0].Min, pv.Specs[1].Min, pv.Specs[2].Max}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("clamped[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestApplyAndExtract(t *testing.T) {
	cfg := loadDefaults(t)
	pv := NewParamVector(cfg)

	values := []float64{50000, 2e-6, 0.4}
	pv.ApplyToConfig(cfg, values)
	got := pv.ExtractFromConfig(cfg)
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("extracted[%d] = %g, want %g", i, got[i], values[i])
		}
	}

	// Out-of-range values are clamped on the way in.
	pv.ApplyToConfig(cfg, []float64{1e9, 1, 0})
	if cfg.Physics.PressureMultiplier != pv.Specs[0].Max {
		t.Errorf("pressure = %g, want clamped to %g", cfg.Physics.PressureMultiplier, pv.Specs[0].Max)
	}
	if cfg.Physics.TargetDensity != pv.Specs[2].Min {
		t.Errorf("target density = %g, want clamped to %g", cfg.Physics.TargetDensity, pv.Specs[2].Min)
	}
}

func TestComputeScore(t *testing.T) {
	cfg := loadDefaults(t)
	target := cfg.Physics.TargetDensity
	speedScale := cfg.Render.SpeedScale

	warm := telemetry.WindowStats{DensityP50: 100 * target, DensityStd: 100, SpeedP90: 1000}
	settled := telemetry.WindowStats{
		Particles:  100,
		Recoveries: 10,
		DensityP50: 1.5 * target,
		DensityStd: 0.5 * target,
		SpeedP90:   0.25 * speedScale,
	}
	windows := []telemetry.WindowStats{warm, warm, settled, settled}

	score, ok := computeScore(windows, cfg)
	if !ok {
		t.Fatal("computeScore reported nothing to score")
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"density error", score.DensityError, 0.5},
		{"spread", score.Spread, 0.5},
		{"motion", score.Motion, 0.25},
		{"recovery", score.Recovery, 0.1},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %g, want %g", tt.name, tt.got, tt.want)
		}
	}

	wantFitness := weightDensityError*0.5 + weightSpread*0.5 + weightMotion*0.25 + weightRecovery*0.1
	if math.Abs(score.Fitness()-wantFitness) > 1e-9 {
		t.Errorf("Fitness = %g, want %g", score.Fitness(), wantFitness)
	}
}

func TestComputeScoreWarmupOnly(t *testing.T) {
	cfg := loadDefaults(t)
	windows := make([]telemetry.WindowStats, scoreWarmupWindows)
	if _, ok := computeScore(windows, cfg); ok {
		t.Error("computeScore with only warmup windows should report false")
	}
}

func TestEvaluateRejectsInvalidConfig(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Physics.DT = 0 // fails validation regardless of tuned values
	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, 10, []int64{1}, cfg)

	if got := fe.Evaluate(pv.DefaultVector()); got != failedFitness {
		t.Errorf("Evaluate = %g, want %g", got, failedFitness)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{65 * time.Second, "1m05s"},
		{3*time.Hour + 2*time.Minute + 1*time.Second, "3h02m01s"},
		{1500 * time.Millisecond, "0m02s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestEvalTrackerKeepsBestAndLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tune_log.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tr := &evalTracker{log: f, maxEvals: 3, best: failedFitness, start: time.Now()}

	tr.record([]float64{1e4, 1e-7, 0.3}, 0.8, Score{DensityError: 0.5})
	tr.record([]float64{2e4, 2e-7, 0.25}, 0.2, Score{DensityError: 0.1})
	tr.record([]float64{3e4, 3e-7, 0.2}, 0.4, Score{DensityError: 0.3})
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if tr.evals != 3 || tr.best != 0.2 || tr.bestParams[0] != 2e4 {
		t.Errorf("tracker = evals %d best %g params %v", tr.evals, tr.best, tr.bestParams)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rows []EvalRecord
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("parsing eval log: %v", err)
	}
	if len(rows) != 3 || rows[1].Eval != 2 || rows[1].TargetDensity != 0.25 {
		t.Errorf("rows = %+v", rows)
	}
}
