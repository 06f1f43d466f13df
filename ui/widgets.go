package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const sectionGap = 4

// Painter draws themed panel primitives.
type Painter struct {
	Theme Theme
}

// NewPainter creates a painter with the default theme.
func NewPainter() *Painter {
	return &Painter{Theme: DefaultTheme()}
}

// Panel fills and outlines a panel rectangle.
func (p *Painter) Panel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, p.Theme.Background)
	rl.DrawRectangleLines(x, y, width, height, p.Theme.Border)
}

// Heading draws a section title and returns the next row's y.
func (p *Painter) Heading(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, p.Theme.HeadingSize, p.Theme.Heading)
	return y + p.Theme.Line
}

// Pair draws a label with its value in the value column and returns the next
// row's y.
func (p *Painter) Pair(x, y int32, label, value string) int32 {
	rl.DrawText(label, x, y, p.Theme.TextSize, p.Theme.Label)
	rl.DrawText(value, x+p.Theme.LabelColumn, y, p.Theme.TextSize, p.Theme.Value)
	return y + p.Theme.Line
}

// Gauge draws a horizontal fill for value with an optional marker line at
// mark. Both are clamped to [0, 1]; a negative mark is not drawn.
func (p *Painter) Gauge(x, y int32, label string, value, mark float32, width int32) int32 {
	t := p.Theme
	rl.DrawText(label, x, y, t.TextSize, t.Label)

	gx := x + t.LabelColumn
	gw := width - t.LabelColumn
	gy := y + (t.Line-t.GaugeHeight)/2
	rl.DrawRectangle(gx, gy, gw, t.GaugeHeight, t.GaugeTrack)
	rl.DrawRectangle(gx, gy, int32(float32(gw)*clampUnit(value)), t.GaugeHeight, t.GaugeFill)
	if mark >= 0 {
		mx := gx + int32(float32(gw)*clampUnit(mark))
		rl.DrawLine(mx, gy-2, mx, gy+t.GaugeHeight+2, t.GaugeMark)
	}
	return y + t.Line
}

// DrawSection draws s over data at (x, y) and returns the y below it.
func DrawSection[T any](p *Painter, x, y int32, s Section[T], data T, width int32) int32 {
	if s.Title != "" {
		y = p.Heading(x, y, s.Title)
	}
	for _, row := range s.Rows {
		if row.Hide != nil && row.Hide(data) {
			continue
		}
		switch {
		case row.Gauge != nil:
			value, mark := row.Gauge(data)
			y = p.Gauge(x, y, row.Label, value, mark, width)
		case row.Text != nil:
			y = p.Pair(x, y, row.Label, row.Text(data))
		}
	}
	return y + sectionGap
}

// SectionHeight is the height DrawSection uses for s over data.
func SectionHeight[T any](p *Painter, s Section[T], data T) int32 {
	h := int32(sectionGap)
	if s.Title != "" {
		h += p.Theme.Line
	}
	for _, row := range s.Rows {
		if row.Hide != nil && row.Hide(data) {
			continue
		}
		h += p.Theme.Line
	}
	return h
}

func clampUnit(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
