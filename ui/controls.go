package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const checkSize = 12

// OverlayPanel lists every overlay as a raygui check box, grouped by
// category. Clicking a box toggles the overlay the same way its hotkey does.
type OverlayPanel struct {
	painter *Painter
	x, y    int32
	width   int32
	visible bool
}

// NewOverlayPanel creates a hidden overlay panel.
func NewOverlayPanel(x, y, width int32) *OverlayPanel {
	return &OverlayPanel{
		painter: NewPainter(),
		x:       x,
		y:       y,
		width:   width,
	}
}

// Toggle switches panel visibility.
func (o *OverlayPanel) Toggle() bool {
	o.visible = !o.visible
	return o.visible
}

// Contains reports whether a screen point is over the visible panel.
func (o *OverlayPanel) Contains(sx, sy float32, overlays *OverlayRegistry) bool {
	if !o.visible {
		return false
	}
	return sx >= float32(o.x) && sx <= float32(o.x+o.width) &&
		sy >= float32(o.y) && sy <= float32(o.y+o.height(overlays))
}

func (o *OverlayPanel) height(overlays *OverlayRegistry) int32 {
	t := o.painter.Theme
	rows := int32(len(overlays.Keys()) + len(overlays.Categories()) + 1)
	return rows*t.Line + t.Padding*2
}

// Draw renders the panel and applies check box clicks to overlays.
func (o *OverlayPanel) Draw(overlays *OverlayRegistry) {
	if !o.visible {
		return
	}
	p := o.painter
	t := p.Theme
	p.Panel(o.x, o.y, o.width, o.height(overlays))

	x := o.x + t.Padding
	y := p.Heading(x, o.y+t.Padding, "Overlays [Tab]")

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, t.TextSize, t.Muted)
		y += t.Line

		for _, desc := range overlays.ByCategory(category) {
			box := rl.Rectangle{X: float32(x), Y: float32(y + 1), Width: checkSize, Height: checkSize}
			enabled := overlays.IsEnabled(desc.ID)
			if checked := gui.CheckBox(box, desc.Name, enabled); checked != enabled {
				overlays.SetEnabled(desc.ID, checked)
			}
			if desc.KeyLabel != "" {
				key := fmt.Sprintf("[%s]", desc.KeyLabel)
				kw := rl.MeasureText(key, t.TextSize)
				rl.DrawText(key, o.x+o.width-t.Padding-kw, y, t.TextSize, t.Muted)
			}
			y += t.Line
		}
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Colouring"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// SimControls holds the values edited by the simulation panel.
type SimControls struct {
	// StrengthScale multiplies the pointer strength of ±1.
	StrengthScale float32
	StepsPerFrame int
	Paused        bool
	// StepOnce is set for one frame when the step button is pressed.
	StepOnce bool
	// Reset is set for one frame when the reset button is pressed.
	Reset bool
}

// Bounds of the simulation controls.
const (
	maxStrengthScale float32 = 4
	maxStepsPerFrame         = 10

	simPanelHeight = 150
)

// SimPanel renders raygui sliders and buttons that edit SimControls.
type SimPanel struct {
	painter *Painter
	x, y    int32
	width   int32
}

// NewSimPanel creates a simulation controls panel.
func NewSimPanel(x, y, width int32) *SimPanel {
	return &SimPanel{
		painter: NewPainter(),
		x:       x,
		y:       y,
		width:   width,
	}
}

// SetPosition updates the panel position.
func (s *SimPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Height returns the panel height in pixels.
func (s *SimPanel) Height() int32 {
	return simPanelHeight
}

// Contains reports whether a screen point is over the panel.
func (s *SimPanel) Contains(sx, sy float32) bool {
	return sx >= float32(s.x) && sx <= float32(s.x+s.width) &&
		sy >= float32(s.y) && sy <= float32(s.y+simPanelHeight)
}

// Draw renders the panel and applies edits to c. StepOnce and Reset only
// stay set until the next Draw.
func (s *SimPanel) Draw(c *SimControls) {
	p := s.painter
	t := p.Theme
	p.Panel(s.x, s.y, s.width, simPanelHeight)

	c.StepOnce = false
	c.Reset = false

	x := float32(s.x + t.Padding)
	y := float32(s.y + t.Padding)
	sliderW := float32(s.width-t.Padding*2) - 60

	rl.DrawText(fmt.Sprintf("Pointer strength x%.2f", c.StrengthScale), int32(x), int32(y), t.TextSize, t.Label)
	y += 16
	c.StrengthScale = gui.SliderBar(
		rl.Rectangle{X: x + 30, Y: y, Width: sliderW, Height: 16},
		"0", fmt.Sprintf("%.0f", maxStrengthScale),
		c.StrengthScale, 0, maxStrengthScale,
	)
	y += 24

	rl.DrawText(fmt.Sprintf("Steps per frame: %d", c.StepsPerFrame), int32(x), int32(y), t.TextSize, t.Label)
	y += 16
	steps := gui.SliderBar(
		rl.Rectangle{X: x + 30, Y: y, Width: sliderW, Height: 16},
		"1", fmt.Sprintf("%d", maxStepsPerFrame),
		float32(c.StepsPerFrame), 1, maxStepsPerFrame,
	)
	c.StepsPerFrame = int(steps + 0.5)
	y += 28

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 80, Height: 28}, toggleText(c.Paused, "Resume", "Pause")) {
		c.Paused = !c.Paused
	}
	if gui.Button(rl.Rectangle{X: x + 90, Y: y, Width: 60, Height: 28}, "Step") {
		c.StepOnce = true
	}
	if gui.Button(rl.Rectangle{X: x + 160, Y: y, Width: 60, Height: 28}, "Reset") {
		c.Reset = true
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
