package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.controls.Paused = !g.controls.Paused
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.controls.StepsPerFrame > 1 {
		g.controls.StepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.controls.StepsPerFrame < maxStepsPerUpdate {
		g.controls.StepsPerFrame++
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.overlayPanel.Toggle()
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handlePointer()
}

// handleOverlayKeys toggles overlays and keeps the palette mode in sync with
// the selected colour overlay.
func (g *Game) handleOverlayKeys() {
	for _, key := range g.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			g.overlays.HandleKeyPress(key)
		}
	}

	switch g.overlays.Selected(ui.GroupColour) {
	case ui.OverlaySpeedColors:
		g.palette.Mode = renderer.ColorBySpeed
	default:
		g.palette.Mode = renderer.ColorByDensity
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.layoutPanels()
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan takes screen pixels, so the world speed already scales with zoom
	const panSpeed float32 = 8

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		mouse := rl.GetMousePosition()
		g.camera.ZoomAt(mouse.X, mouse.Y, 1.0+wheelMove*0.1)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handlePointer turns mouse buttons into the interaction pointer. Left
// button pulls with strength +1, right pushes with -1, both scaled by the
// strength slider. Clicks over a panel are ignored.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	g.probeX, g.probeY = mouse.X, mouse.Y
	g.pointer = nil

	if g.simPanel.Contains(mouse.X, mouse.Y) || g.overlayPanel.Contains(mouse.X, mouse.Y, g.overlays) {
		return
	}

	var strength float32
	switch {
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		strength = 1
	case rl.IsMouseButtonDown(rl.MouseButtonRight):
		strength = -1
	default:
		return
	}

	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.pointer = pointerAt(wx, wy, strength*g.controls.StrengthScale)
}
