package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/spawn"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

// maxStepsPerUpdate bounds the steps-per-update setting.
const maxStepsPerUpdate = 10

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed           int64  // spawn seed; 0 keeps the config value
	Layout         string // spawn layout; empty keeps the config value
	LogStats       bool
	StatsWindowSec float64 // 0 uses the config value
	OutputDir      string  // empty disables CSV output
	Headless       bool
	StepsPerUpdate int // 0 uses render.steps_per_frame
}

// Game ties the solver to telemetry and, when not headless, to the window.
type Game struct {
	cfg    *config.Config
	params systems.Params
	dt     float32
	logger *slog.Logger

	particles []components.Particle
	initial   []components.Particle // kept for Reset
	sim       *fluid.Simulation
	stages    *systems.StageRegistry

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	recorder      *telemetry.Recorder
	logStats      bool
	lastWindow    telemetry.WindowStats
	lastTick      fluid.TickStats
	statsCallback func(telemetry.WindowStats)

	// Rendering (nil when headless)
	headless         bool
	world            *systems.ParticleWorld
	camera           *camera.Camera
	palette          *renderer.Palette
	particleRenderer *renderer.ParticleRenderer
	boundsRenderer   *renderer.BoundsRenderer
	pointerRenderer  renderer.PointerRenderer
	overlays         *ui.OverlayRegistry
	hud              *ui.HUD
	overlayPanel     *ui.OverlayPanel
	simPanel         *ui.SimPanel
	perfPanel        *ui.PerfPanel
	statsPanel       *ui.StatsPanel

	// State
	controls      ui.SimControls
	pointer       *systems.Pointer
	probeDensity  float32
	probeX        float32
	probeY        float32
	tick          int32
	screenWidth   float32
	screenHeight  float32
	stepsPerFrame int
}

// NewGameWithOptions creates a game from the global config. config.Init must
// have been called.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	spawnOpts := cfg.SpawnOptions()
	if opts.Seed != 0 {
		spawnOpts.Seed = opts.Seed
	}
	if opts.Layout != "" {
		layout, err := spawn.ParseLayout(opts.Layout)
		if err != nil {
			return nil, err
		}
		spawnOpts.Layout = layout
	}

	particles, err := spawn.Particles(spawnOpts)
	if err != nil {
		return nil, fmt.Errorf("spawning particles: %w", err)
	}
	if err := components.CheckIndexes(particles); err != nil {
		return nil, fmt.Errorf("spawned particles: %w", err)
	}

	g := &Game{
		cfg:       cfg,
		params:    cfg.Params(),
		dt:        cfg.Derived.DT32,
		logger:    slog.Default(),
		particles: particles,
		initial:   append([]components.Particle(nil), particles...),
		stages:    systems.NewStageRegistry(),
		logStats:  opts.LogStats,
		headless:  opts.Headless,
	}

	g.stepsPerFrame = cfg.Render.StepsPerFrame
	if opts.StepsPerUpdate > 0 {
		g.stepsPerFrame = opts.StepsPerUpdate
	}
	g.controls = ui.SimControls{
		StrengthScale: 1,
		StepsPerFrame: min(g.stepsPerFrame, maxStepsPerUpdate),
	}

	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.sim, err = fluid.New(g.params, len(particles),
		fluid.WithWorkers(cfg.Parallel.Workers),
		fluid.WithParallelThreshold(cfg.Parallel.Threshold),
		fluid.WithLogger(g.logger),
		fluid.WithPhaseHook(g.perfCollector.StartPhase),
	)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, g.dt)

	g.recorder, err = telemetry.NewRecorder(opts.OutputDir)
	if err != nil {
		g.sim.Close()
		return nil, fmt.Errorf("creating run recorder: %w", err)
	}
	if err := g.recorder.WriteConfig(cfg); err != nil {
		g.sim.Close()
		g.recorder.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	if g.recorder != nil {
		g.logger.Info("writing run output", "dir", g.recorder.Dir())
	}

	if !g.headless {
		if err := g.initGraphics(); err != nil {
			g.Unload()
			return nil, err
		}
	}

	return g, nil
}

// initGraphics sets up the camera, renderers and panels. It needs an open
// window only for drawing, not for construction.
func (g *Game) initGraphics() error {
	cfg := g.cfg
	mode, err := renderer.ParseColorMode(cfg.Render.ColorMode)
	if err != nil {
		return err
	}

	g.screenWidth = cfg.Derived.ScreenW32
	g.screenHeight = cfg.Derived.ScreenH32
	half := cfg.Derived.HalfExtent

	g.world = systems.NewParticleWorld(g.particles)
	g.camera = camera.New(g.screenWidth, g.screenHeight, half.X, half.Y)
	g.palette = renderer.NewPalette(mode, float32(cfg.Render.SpeedScale), float32(cfg.Render.DensityScale), g.params.TargetDensity)
	g.particleRenderer = renderer.NewParticleRenderer(g.palette)
	g.boundsRenderer = renderer.NewBoundsRenderer()

	g.overlays = ui.NewOverlayRegistry()
	if mode == renderer.ColorBySpeed {
		g.overlays.SetEnabled(ui.OverlaySpeedColors, true)
	}

	g.hud = ui.NewHUD()
	g.overlayPanel = ui.NewOverlayPanel(10, 100, 220)
	g.simPanel = ui.NewSimPanel(0, 0, 260)
	g.perfPanel = ui.NewPerfPanel(0, 0, 300)
	g.statsPanel = ui.NewStatsPanel(0, 0, 240)
	g.layoutPanels()
	return nil
}

// layoutPanels anchors the right-hand panels to the current screen size.
func (g *Game) layoutPanels() {
	w := int32(g.screenWidth)
	h := int32(g.screenHeight)
	g.simPanel.SetPosition(w-270, 10)
	g.statsPanel.SetPosition(w-250, 10+g.simPanel.Height()+10)
	g.perfPanel.SetPosition(10, h-40-g.perfPanel.Height(len(g.perfPhases())))
}

// SetStatsCallback registers fn to receive every flushed telemetry window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Particles returns the live particle records.
func (g *Game) Particles() []components.Particle {
	return g.particles
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Unload releases the worker pool and closes output files.
func (g *Game) Unload() {
	if g.sim != nil {
		g.sim.Close()
	}
	if err := g.recorder.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}
