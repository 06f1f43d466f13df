// Package ui draws the sandbox's panels: HUD text, overlay toggles, the
// simulation controls and read-outs of the last telemetry window.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Row is one line of a read-out section. Exactly one of Text or Gauge is set.
type Row[T any] struct {
	Label string
	Text  func(T) string
	Gauge func(T) (value, mark float32) // both in [0, 1]; mark < 0 hides the marker
	Hide  func(T) bool                  // nil = always shown
}

// Section is a titled group of rows drawn over the same data.
type Section[T any] struct {
	Title string
	Rows  []Row[T]
}

// Theme holds panel colours and metrics.
type Theme struct {
	Background rl.Color
	Border     rl.Color
	Heading    rl.Color
	Label      rl.Color
	Value      rl.Color
	Muted      rl.Color
	GaugeTrack rl.Color
	GaugeFill  rl.Color
	GaugeMark  rl.Color

	Padding     int32
	Line        int32 // text row height
	LabelColumn int32 // x offset of values from the label
	GaugeHeight int32
	TextSize    int32
	HeadingSize int32
}

// DefaultTheme returns the dark panel theme.
func DefaultTheme() Theme {
	return Theme{
		Background: rl.Color{R: 12, G: 16, B: 28, A: 235},
		Border:     rl.Color{R: 50, G: 70, B: 100, A: 255},
		Heading:    rl.Color{R: 144, G: 238, B: 144, A: 255},
		Label:      rl.LightGray,
		Value:      rl.RayWhite,
		Muted:      rl.Gray,
		GaugeTrack: rl.Color{R: 30, G: 36, B: 52, A: 255},
		GaugeFill:  rl.Color{R: 70, G: 110, B: 200, A: 255},
		GaugeMark:  rl.Color{R: 255, G: 127, B: 80, A: 255},

		Padding:     10,
		Line:        16,
		LabelColumn: 90,
		GaugeHeight: 10,
		TextSize:    12,
		HeadingSize: 14,
	}
}
