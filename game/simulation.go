package game

import (
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

// Update runs one frame of the graphical game: input, then StepsPerFrame
// simulation ticks unless paused.
func (g *Game) Update() {
	g.handleInput()

	steps := g.controls.StepsPerFrame
	if g.controls.Paused {
		steps = 0
		if g.controls.StepOnce {
			steps = 1
		}
	}
	for i := 0; i < steps; i++ {
		if err := g.simulationStep(); err != nil {
			g.logger.Error("simulation halted", "tick", g.tick, "error", err)
			g.controls.Paused = true
			break
		}
	}

	g.world.Sync(g.particles)
	g.updateProbe()
}

// UpdateHeadless runs StepsPerUpdate ticks without any window. It stops at
// the first tick the solver rejects.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.stepsPerFrame; i++ {
		if err := g.simulationStep(); err != nil {
			return err
		}
	}
	return nil
}

// simulationStep advances the solver by one fixed tick and feeds telemetry.
func (g *Game) simulationStep() error {
	g.perfCollector.StartTick()
	defer g.perfCollector.EndTick()

	stats, err := g.sim.Step(g.particles, g.dt, g.pointer)
	if err != nil {
		return err
	}
	g.lastTick = stats
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordTick(g.lastTick)
	g.flushTelemetry()
	return nil
}

// Reset restores the initial spawn and restarts the tick counter. Telemetry
// windows continue from the reset tick.
func (g *Game) Reset() {
	copy(g.particles, g.initial)
	g.tick = 0
	g.collector.Flush(0, g.particles)
	if g.world != nil {
		g.world.Sync(g.particles)
	}
	g.logger.Info("simulation reset", "particles", len(g.particles))
}

// updateProbe samples the density under the cursor when the probe overlay
// is enabled.
func (g *Game) updateProbe() {
	if !g.overlays.IsEnabled(ui.OverlayProbe) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(g.probeX, g.probeY)
	g.probeDensity = g.sim.SampleDensity(components.Vec2{X: wx, Y: wy})
}

// pointerAt builds a pointer at a world position.
func pointerAt(wx, wy, strength float32) *systems.Pointer {
	return &systems.Pointer{Position: components.Vec2{X: wx, Y: wy}, Strength: strength}
}
