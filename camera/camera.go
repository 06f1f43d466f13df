// Package camera provides a 2D camera for viewing the fluid box.
package camera

// Camera controls the viewport into the simulation world.
//
// World space is centred on the origin with y pointing up; screen space has
// its origin in the top-left corner with y pointing down. Zoom is measured in
// pixels per world unit.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Half extents of the simulation box. The camera center never leaves it.
	HalfW, HalfH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the origin, zoomed so the whole box fits
// in the viewport.
func New(viewportW, viewportH, halfW, halfH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		HalfW:     halfW,
		HalfH:     halfH,
		MaxZoom:   4.0,
	}
	c.MinZoom = c.FitZoom() / 2
	c.Zoom = c.FitZoom()
	return c
}

// FitZoom returns the zoom at which the box exactly fits the viewport in its
// limiting dimension.
func (c *Camera) FitZoom() float32 {
	zx := c.ViewportW / (2 * c.HalfW)
	zy := c.ViewportH / (2 * c.HalfH)
	if zy < zx {
		return zy
	}
	return zx
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(d float32) float32 {
	return d * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.FitZoom() / 2
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// Pan moves the camera by the given delta in screen pixels. Positive dy pans
// down the screen. The center is clamped to the box.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, -c.HalfW, c.HalfW)
	c.Y = clamp(c.Y-dy/c.Zoom, -c.HalfH, c.HalfH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under screen position
// (sx, sy) fixed, subject to the box clamp on the center.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X = clamp(c.X+wx-nx, -c.HalfW, c.HalfW)
	c.Y = clamp(c.Y+wy-ny, -c.HalfH, c.HalfH)
}

// Reset returns the camera to the origin at fit zoom.
func (c *Camera) Reset() {
	c.X = 0
	c.Y = 0
	c.Zoom = c.FitZoom()
}

// VisibleWorldBounds returns the visible world rectangle intersected with the
// box. ok is false when the view does not overlap the box.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32, ok bool) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = max(c.X-halfW, -c.HalfW)
	maxX = min(c.X+halfW, c.HalfW)
	minY = max(c.Y-halfH, -c.HalfH)
	maxY = min(c.Y+halfH, c.HalfH)
	return minX, minY, maxX, maxY, minX < maxX && minY < maxY
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	return max(lo, min(x, hi))
}
