// Package spawn generates initial particle layouts.
package spawn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/fluid/components"
)

// Layout selects how initial positions are generated.
type Layout string

const (
	LayoutBox    Layout = "box"    // rows of evenly spaced particles centred on the origin
	LayoutRandom Layout = "random" // uniform inside the spawn bounds
)

// ErrUnknownLayout is returned for layout names that are not recognised.
var ErrUnknownLayout = errors.New("unknown spawn layout")

// ParseLayout converts a layout name.
func ParseLayout(name string) (Layout, error) {
	switch Layout(name) {
	case LayoutBox, LayoutRandom:
		return Layout(name), nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownLayout)
}

// Options describes a spawn.
type Options struct {
	Layout   Layout
	Count    int
	Layers   int     // rows in the box layout
	Spacing  float32 // distance between neighbours in the box layout
	Half     components.Vec2
	Mass     float32
	Radius   float32
	Velocity components.Vec2 // initial velocity of every particle

	// Jitter perturbs initial velocities with coherent noise sampled at the
	// spawn position. Zero disables it.
	Jitter      float32
	JitterScale float32 // noise frequency in 1/world units
	Seed        int64
}

// Particles creates opts.Count particles with indexes 0..Count.
func Particles(opts Options) ([]components.Particle, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("negative particle count %d", opts.Count)
	}
	if opts.Layout == LayoutBox && opts.Layers <= 0 {
		return nil, fmt.Errorf("box layout needs at least one layer, got %d", opts.Layers)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var noise opensimplex.Noise32
	if opts.Jitter != 0 {
		noise = opensimplex.New32(opts.Seed)
	}

	particles := make([]components.Particle, opts.Count)
	for i := range particles {
		var pos components.Vec2
		switch opts.Layout {
		case LayoutBox:
			pos = BoxPosition(i, opts.Count, opts.Layers, opts.Spacing)
		case LayoutRandom:
			pos = RandomPosition(rng, opts.Half)
		default:
			return nil, fmt.Errorf("%q: %w", opts.Layout, ErrUnknownLayout)
		}

		vel := opts.Velocity
		if noise != nil {
			vel = vel.Add(jitter(noise, pos, opts.JitterScale).Scale(opts.Jitter))
		}

		p := components.NewParticle(opts.Mass, vel, opts.Radius, i)
		p.Position = pos
		particles[i] = p
	}
	return particles, nil
}

// BoxPosition places particle i of count in a block of layers rows, centred
// horizontally on the origin with the bottom row at -layers/2*spacing.
func BoxPosition(i, count, layers int, spacing float32) components.Vec2 {
	perRow := float32(count) / float32(layers)
	y := float32(math.Floor(float64(float32(i) / perRow)))
	x := float32(i) - y*perRow

	offset := components.Vec2{
		X: -spacing * perRow / 2,
		Y: -float32(layers) / 2 * spacing,
	}
	return components.Vec2{X: x, Y: y}.Scale(spacing).Add(offset)
}

// RandomPosition returns a uniform point in [-half, half).
func RandomPosition(rng *rand.Rand, half components.Vec2) components.Vec2 {
	return components.Vec2{
		X: (rng.Float32()*2 - 1) * half.X,
		Y: (rng.Float32()*2 - 1) * half.Y,
	}
}

// jitter samples two decorrelated noise channels at pos. Each component is in
// roughly [-1, 1].
func jitter(noise opensimplex.Noise32, pos components.Vec2, scale float32) components.Vec2 {
	x, y := pos.X*scale, pos.Y*scale
	return components.Vec2{
		X: noise.Eval2(x, y),
		Y: noise.Eval2(x+31.7, y-17.3),
	}
}
