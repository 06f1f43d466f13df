package renderer

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// ColorMode selects what a particle's colour encodes.
type ColorMode int

const (
	ColorByDensity ColorMode = iota
	ColorBySpeed
)

// ErrUnknownColorMode is returned by ParseColorMode.
var ErrUnknownColorMode = errors.New("unknown color mode")

// ParseColorMode maps a config string to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "density", "":
		return ColorByDensity, nil
	case "speed":
		return ColorBySpeed, nil
	}
	return ColorByDensity, fmt.Errorf("%q: %w", s, ErrUnknownColorMode)
}

// String returns the config name of the mode.
func (m ColorMode) String() string {
	if m == ColorBySpeed {
		return "speed"
	}
	return "density"
}

// Palette maps particle speed or density to a colour. Speed blends dark blue
// to light green; density blends dark blue through light green at the target
// density to coral.
type Palette struct {
	Mode          ColorMode
	SpeedScale    float32 // speed at the top of the speed ramp
	DensityScale  float32 // position of the target density on the ramp, in (0,1)
	TargetDensity float32

	slow, fast          colorful.Color
	sparse, rest, dense colorful.Color
}

// NewPalette creates a palette.
func NewPalette(mode ColorMode, speedScale, densityScale, targetDensity float32) *Palette {
	darkBlue := mustHex("#00008b")
	lightGreen := mustHex("#90ee90")
	return &Palette{
		Mode:          mode,
		SpeedScale:    speedScale,
		DensityScale:  densityScale,
		TargetDensity: targetDensity,
		slow:          darkBlue,
		fast:          lightGreen,
		sparse:        darkBlue,
		rest:          lightGreen,
		dense:         mustHex("#ff7f50"),
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Color returns the colour for a particle with the given speed and density.
func (p *Palette) Color(speed, density float32) rl.Color {
	var c colorful.Color
	switch p.Mode {
	case ColorBySpeed:
		c = p.slow.BlendLab(p.fast, float64(unit(speed/p.SpeedScale)))
	default:
		t := float32(0)
		if p.TargetDensity > 0 {
			t = unit(density / p.TargetDensity * p.DensityScale)
		}
		if t < p.DensityScale {
			c = p.sparse.BlendLab(p.rest, float64(t/p.DensityScale))
		} else {
			c = p.rest.BlendLab(p.dense, float64((t-p.DensityScale)/(1-p.DensityScale)))
		}
	}
	r, g, b := c.Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}

// unit clamps x to [0, 1]. NaN maps to 0.
func unit(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
