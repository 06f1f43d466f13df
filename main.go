package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/game"
)

type cliFlags struct {
	configPath string
	headless   bool
	maxTicks   int
	verbose    bool
	opts       game.Options
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.BoolVar(&f.headless, "headless", false, "Run without graphics")
	flag.IntVar(&f.maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.BoolVar(&f.verbose, "v", false, "Log at debug level")
	flag.BoolVar(&f.opts.LogStats, "log-stats", false, "Output stats via slog")
	flag.Float64Var(&f.opts.StatsWindowSec, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	flag.StringVar(&f.opts.OutputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Int64Var(&f.opts.Seed, "seed", 0, "Spawn seed (0 = use config)")
	flag.IntVar(&f.opts.StepsPerUpdate, "steps-per-update", 0, "Simulation ticks per update call (0 = use config)")
	flag.StringVar(&f.opts.Layout, "layout", "", "Spawn layout: box or random (empty = use config)")
	flag.Parse()
	f.opts.Headless = f.headless
	return f
}

func main() {
	f := parseFlags()

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(f); err != nil {
		slog.Error("fluid exited", "error", err)
		os.Exit(1)
	}
}

func run(f cliFlags) error {
	if err := config.Init(f.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if f.headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runHeadless(ctx, f)
	}
	return runWindowed(f, config.Cfg())
}

// runHeadless steps the simulation without a window until maxTicks is
// reached or ctx is cancelled.
func runHeadless(ctx context.Context, f cliFlags) error {
	g, err := game.NewGameWithOptions(f.opts)
	if err != nil {
		return fmt.Errorf("starting simulation: %w", err)
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"particles", len(g.Particles()),
		"seed", f.opts.Seed,
		"max_ticks", f.maxTicks,
		"steps_per_update", f.opts.StepsPerUpdate,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", g.Tick())
			return nil
		default:
		}

		if err := g.UpdateHeadless(); err != nil {
			return fmt.Errorf("tick %d: %w", g.Tick(), err)
		}
		if f.maxTicks > 0 && int(g.Tick()) >= f.maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
}

func runWindowed(f cliFlags, cfg *config.Config) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(f.opts)
	if err != nil {
		return fmt.Errorf("starting simulation: %w", err)
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if f.maxTicks > 0 && int(g.Tick()) >= f.maxTicks {
			break
		}
	}
	return nil
}
