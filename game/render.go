package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

const controlsLegend = "[LMB] Pull  [RMB] Push  [Space] Pause  [</>] Steps  [R] Reset  [Tab] Overlays  [Arrows/Wheel] Camera"

// Draw renders the frame.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	// Debug overlays drawn under the particles
	if g.overlays.IsEnabled(ui.OverlayGrid) {
		g.drawGrid()
	}

	g.particleRenderer.Draw(g.world, g.camera)

	if g.overlays.IsEnabled(ui.OverlayBounds) {
		g.boundsRenderer.Draw(g.cfg.Derived.HalfExtent, g.camera)
	}
	if g.overlays.IsEnabled(ui.OverlayPointer) {
		g.pointerRenderer.Draw(g.pointer, g.params.InteractionRadius, g.camera)
	}

	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders the HUD and panels. The sim panel is drawn last so its
// raygui widgets receive input.
func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:         "SPH Fluid",
		Particles:     len(g.particles),
		Tick:          g.tick,
		SimTime:       float64(g.tick) * float64(g.dt),
		StepsPerFrame: g.controls.StepsPerFrame,
		FPS:           rl.GetFPS(),
		Paused:        g.controls.Paused,
		ColorMode:     g.palette.Mode.String(),
		Recoveries:    g.lastTick.Recoveries,
	})
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)

	if g.overlays.IsEnabled(ui.OverlayProbe) {
		g.hud.DrawProbe(g.probeX, g.probeY, g.probeDensity, g.params.TargetDensity)
	}

	g.overlayPanel.Draw(g.overlays)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(ui.PerfPanelData{
			Stats:    g.perfCollector.Stats(),
			Registry: g.stages,
		}, g.perfPhases())
	}

	g.statsPanel.Draw(g.lastWindow, g.params.TargetDensity)

	g.simPanel.Draw(&g.controls)
	if g.controls.Reset {
		g.Reset()
	}
}

// drawGrid draws spatial hash cell lines over the visible area.
func (g *Game) drawGrid() {
	cell := g.sim.Grid().CellSize()
	if g.camera.WorldLength(cell) < 4 {
		return
	}
	color := rl.Color{R: 40, G: 40, B: 60, A: 255}

	minX, minY, maxX, maxY, ok := g.camera.VisibleWorldBounds()
	if !ok {
		return
	}

	for x := floorTo(minX, cell); x <= maxX; x += cell {
		x0, y0 := g.camera.WorldToScreen(x, minY)
		x1, y1 := g.camera.WorldToScreen(x, maxY)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
	for y := floorTo(minY, cell); y <= maxY; y += cell {
		x0, y0 := g.camera.WorldToScreen(minX, y)
		x1, y1 := g.camera.WorldToScreen(maxX, y)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
}

// floorTo rounds v down to a multiple of step.
func floorTo(v, step float32) float32 {
	n := int(v / step)
	if float32(n)*step > v {
		n--
	}
	return float32(n) * step
}

// perfPhases lists the solver stages followed by the telemetry phase.
func (g *Game) perfPhases() []string {
	return append(g.stages.IDs(), telemetry.PhaseTelemetry)
}
