package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1000, 500, 1000, 500)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Y)
	}
	// Box is 2000x1000, viewport 1000x500
	if cam.Zoom != 0.5 {
		t.Errorf("expected fit zoom 0.5, got %f", cam.Zoom)
	}
	if cam.MinZoom != 0.25 {
		t.Errorf("expected MinZoom 0.25, got %f", cam.MinZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1000, 500, 1000, 500)

	sx, sy := cam.WorldToScreen(0, 0)
	if math.Abs(float64(sx-500)) > 0.01 || math.Abs(float64(sy-250)) > 0.01 {
		t.Errorf("expected screen center (500, 250), got (%f, %f)", sx, sy)
	}
}

func TestWorldYUp(t *testing.T) {
	cam := New(1000, 500, 1000, 500)

	// Top-right corner of the box lands at the top-right of the screen
	sx, sy := cam.WorldToScreen(1000, 500)
	if math.Abs(float64(sx-1000)) > 0.01 || math.Abs(float64(sy)) > 0.01 {
		t.Errorf("expected (1000, 0), got (%f, %f)", sx, sy)
	}

	_, syLow := cam.WorldToScreen(0, -100)
	_, syHigh := cam.WorldToScreen(0, 100)
	if syHigh >= syLow {
		t.Errorf("higher world y should be higher on screen: %f >= %f", syHigh, syLow)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 800, 850, 500)
	cam.X = 120
	cam.Y = -40
	cam.SetZoom(1.7)

	testCases := []struct{ sx, sy float32 }{
		{640, 400},  // center
		{100, 100},  // top-left
		{1200, 700}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToBox(t *testing.T) {
	cam := New(1000, 500, 1000, 500)
	cam.SetZoom(1)

	cam.Pan(-5000, 0)
	if cam.X != -1000 {
		t.Errorf("expected X clamped to -1000, got %f", cam.X)
	}

	// Panning down the screen moves the view down in world space
	cam.Pan(0, 100)
	if cam.Y != -100 {
		t.Errorf("expected Y -100, got %f", cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1000, 500, 1000, 500)

	cam.SetZoom(0.1)
	if cam.Zoom != 0.25 {
		t.Errorf("expected zoom clamped to 0.25, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0)
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}
}

func TestFitZoomLimitingDimension(t *testing.T) {
	cam := New(800, 600, 800, 400)

	// min(800/1600, 600/800) = 0.5
	if math.Abs(float64(cam.FitZoom()-0.5)) > 0.001 {
		t.Errorf("expected fit zoom 0.5, got %f", cam.FitZoom())
	}

	visibleW := cam.ViewportW / cam.Zoom
	if math.Abs(float64(visibleW-2*cam.HalfW)) > 0.01 {
		t.Errorf("at fit zoom, visible width %f should equal box width %f", visibleW, 2*cam.HalfW)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1000, 500, 1000, 500)
	cam.SetZoom(1)

	// Visible range is (-500, -250) to (500, 250)
	if !cam.IsVisible(0, 0, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(900, 400, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(540, 0, 50) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResizeRaisesZoom(t *testing.T) {
	cam := New(1000, 500, 1000, 500)
	cam.SetZoom(cam.MinZoom)

	cam.Resize(4000, 2000)
	if cam.MinZoom != 1 {
		t.Errorf("expected MinZoom 1 after resize, got %f", cam.MinZoom)
	}
	if cam.Zoom != 1 {
		t.Errorf("expected zoom raised to 1, got %f", cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1000, 500, 1000, 500)
	cam.X = 300
	cam.Y = -200
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected origin, got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1000, 500, 1000, 500)
	cam.SetZoom(1)

	sx, sy := float32(700), float32(150)
	wx, wy := cam.ScreenToWorld(sx, sy)
	cam.ZoomAt(sx, sy, 2)

	if cam.Zoom != 2 {
		t.Fatalf("expected zoom 2, got %f", cam.Zoom)
	}
	nx, ny := cam.WorldToScreen(wx, wy)
	if math.Abs(float64(nx-sx)) > 0.01 || math.Abs(float64(ny-sy)) > 0.01 {
		t.Errorf("world point moved from (%f, %f) to (%f, %f)", sx, sy, nx, ny)
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	tests := []struct {
		name               string
		x, y, zoom         float32
		wantMinX, wantMaxX float32
		wantMinY, wantMaxY float32
	}{
		{"zoomed in", 0, 0, 2, -250, 250, -125, 125},
		{"fit clips to box", 0, 0, 0.25, -1000, 1000, -500, 500},
		{"offset", 900, 0, 1, 400, 1000, -250, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(1000, 500, 1000, 500)
			cam.X, cam.Y = tt.x, tt.y
			cam.SetZoom(tt.zoom)

			minX, minY, maxX, maxY, ok := cam.VisibleWorldBounds()
			if !ok {
				t.Fatal("expected overlap with the box")
			}
			if minX != tt.wantMinX || maxX != tt.wantMaxX || minY != tt.wantMinY || maxY != tt.wantMaxY {
				t.Errorf("bounds = (%f, %f)-(%f, %f), want (%f, %f)-(%f, %f)",
					minX, minY, maxX, maxY, tt.wantMinX, tt.wantMinY, tt.wantMaxX, tt.wantMaxY)
			}
		})
	}
}
