package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

// minParticlePixels keeps particles visible when zoomed out.
const minParticlePixels = 1.0

// ParticleRenderer draws fluid particles from the ECS mirror.
type ParticleRenderer struct {
	Palette *Palette
}

// NewParticleRenderer creates a particle renderer.
func NewParticleRenderer(palette *Palette) *ParticleRenderer {
	return &ParticleRenderer{Palette: palette}
}

// Draw renders every particle in world, culling those off screen.
func (r *ParticleRenderer) Draw(world *systems.ParticleWorld, cam *camera.Camera) {
	world.Each(func(pos components.Position, vel components.Velocity, body components.Body, density float32) {
		// Footprint diameter is Radius * ParticleResolution world units
		radius := body.Radius * components.ParticleResolution / 2
		if !cam.IsVisible(pos.X, pos.Y, radius) {
			return
		}

		speed := float32(math.Hypot(float64(vel.X), float64(vel.Y)))
		color := r.Palette.Color(speed, density)

		size := cam.WorldLength(radius)
		if size < minParticlePixels {
			size = minParticlePixels
		}
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, color)
	})
}

// BoundsRenderer draws the simulation box outline.
type BoundsRenderer struct {
	Color     rl.Color
	Thickness float32
}

// NewBoundsRenderer creates a bounds renderer with a grey outline.
func NewBoundsRenderer() *BoundsRenderer {
	return &BoundsRenderer{
		Color:     rl.Gray,
		Thickness: 2,
	}
}

// Draw renders the box with the given world half extent.
func (b *BoundsRenderer) Draw(half components.Vec2, cam *camera.Camera) {
	x0, y0 := cam.WorldToScreen(-half.X, half.Y)
	x1, y1 := cam.WorldToScreen(half.X, -half.Y)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0},
		b.Thickness,
		b.Color,
	)
}

// PointerRenderer draws the interaction radius around the cursor while the
// pointer is active.
type PointerRenderer struct{}

// Draw renders a circle outline for an active pointer.
func (PointerRenderer) Draw(pointer *systems.Pointer, radius float32, cam *camera.Camera) {
	if pointer == nil {
		return
	}
	color := rl.Color{R: 100, G: 200, B: 100, A: 120}
	if pointer.Strength < 0 {
		color = rl.Color{R: 200, G: 100, B: 100, A: 120}
	}
	sx, sy := cam.WorldToScreen(pointer.Position.X, pointer.Position.Y)
	rl.DrawCircleLines(int32(sx), int32(sy), cam.WorldLength(radius), color)
}
