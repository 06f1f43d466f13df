package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fluid/config"
)

// Files written to a run directory.
const (
	ConfigFile    = "config.yaml"
	TelemetryFile = "telemetry.csv"
	PerfFile      = "perf.csv"
)

// csvLog appends gocsv records to a file. The header row is written with the
// first batch.
type csvLog struct {
	f      *os.File
	header bool
}

func createCSVLog(path string) (*csvLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &csvLog{f: f}, nil
}

func (l *csvLog) append(records any) error {
	if l.header {
		return gocsv.MarshalWithoutHeaders(records, l.f)
	}
	if err := gocsv.Marshal(records, l.f); err != nil {
		return err
	}
	l.header = true
	return nil
}

func (l *csvLog) close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

// Recorder writes a run directory: a config snapshot plus one telemetry row
// and one perf row per stats window. A nil Recorder discards everything.
type Recorder struct {
	dir       string
	telemetry *csvLog
	perf      *csvLog
}

// NewRecorder creates dir and opens its CSV files. It returns nil, nil when
// dir is empty.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	r := &Recorder{dir: dir}
	var err error
	if r.telemetry, err = createCSVLog(filepath.Join(dir, TelemetryFile)); err != nil {
		return nil, fmt.Errorf("creating %s: %w", TelemetryFile, err)
	}
	if r.perf, err = createCSVLog(filepath.Join(dir, PerfFile)); err != nil {
		r.Close()
		return nil, fmt.Errorf("creating %s: %w", PerfFile, err)
	}
	return r, nil
}

// WriteConfig saves cfg as the run's config snapshot.
func (r *Recorder) WriteConfig(cfg *config.Config) error {
	if r == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(r.dir, ConfigFile))
}

// RecordWindow appends a closed stats window and the perf summary for the
// same window.
func (r *Recorder) RecordWindow(stats WindowStats, perf PerfStats) error {
	if r == nil {
		return nil
	}
	if err := r.telemetry.append([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	if err := r.perf.append([]PerfStatsCSV{perf.ToCSV(stats.WindowEndTick)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the run directory, or "" when recording is off.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Close closes the CSV files.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.telemetry.close(), r.perf.close())
}
