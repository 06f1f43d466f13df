package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fluid/config"
)

func TestRecorderDisabled(t *testing.T) {
	r, err := NewRecorder("")
	if err != nil || r != nil {
		t.Fatalf("NewRecorder(\"\") = %v, %v; want nil, nil", r, err)
	}

	// Nil recorder methods are no-ops.
	if err := r.WriteConfig(nil); err != nil {
		t.Error(err)
	}
	if err := r.RecordWindow(WindowStats{}, PerfStats{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
	if r.Dir() != "" {
		t.Error("nil recorder Dir should be empty")
	}
}

func TestRecorderWritesRunDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	r, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	for i := int32(1); i <= 3; i++ {
		stats := WindowStats{WindowEndTick: i * 100, Particles: 50, DensityMean: 0.25}
		perf := PerfStats{
			AvgTickDuration: time.Millisecond,
			PhasePct:        map[string]float64{PhaseDensity: 40},
		}
		if err := r.RecordWindow(stats, perf); err != nil {
			t.Fatalf("RecordWindow: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, TelemetryFile))
	if err != nil {
		t.Fatal(err)
	}
	var windows []WindowStats
	if err := gocsv.UnmarshalBytes(data, &windows); err != nil {
		t.Fatalf("parsing telemetry.csv: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("telemetry rows = %d, want 3 (one header)", len(windows))
	}
	if windows[2].WindowEndTick != 300 || windows[2].DensityMean != 0.25 {
		t.Errorf("last row = %+v", windows[2])
	}

	data, err = os.ReadFile(filepath.Join(dir, PerfFile))
	if err != nil {
		t.Fatal(err)
	}
	var perf []PerfStatsCSV
	if err := gocsv.UnmarshalBytes(data, &perf); err != nil {
		t.Fatalf("parsing perf.csv: %v", err)
	}
	if len(perf) != 3 || perf[0].DensityPct != 40 || perf[2].WindowEnd != 300 || perf[0].AvgTickUS != 1000 {
		t.Errorf("perf rows = %+v", perf)
	}

	if _, err := config.Load(filepath.Join(dir, ConfigFile)); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}
