package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
)

// HUDData is the per-frame state shown in the top-left corner.
type HUDData struct {
	Title         string
	Particles     int
	Tick          int32
	SimTime       float64
	StepsPerFrame int
	FPS           int32
	Paused        bool
	ColorMode     string
	Recoveries    int // in the last tick
}

// HUD draws the status lines, the key legend and the density probe.
type HUD struct {
	painter *Painter
}

// NewHUD creates a HUD.
func NewHUD() *HUD {
	return &HUD{painter: NewPainter()}
}

// Draw renders the status lines.
func (h *HUD) Draw(data HUDData) {
	t := h.painter.Theme
	rl.DrawText(data.Title, 10, 10, 20, t.Value)

	status, statusColor := "running", t.Heading
	if data.Paused {
		status, statusColor = "paused", t.GaugeMark
	}
	titleW := rl.MeasureText(data.Title, 20)
	rl.DrawText(status, 20+titleW, 14, t.HeadingSize, statusColor)

	rl.DrawText(
		fmt.Sprintf("%d particles  %s colours  %d recovered", data.Particles, data.ColorMode, data.Recoveries),
		10, 35, 16, t.Label,
	)
	rl.DrawText(
		fmt.Sprintf("tick %d  t=%.1fs  %dx  %d fps", data.Tick, data.SimTime, data.StepsPerFrame, data.FPS),
		10, 55, 16, t.Label,
	)
}

// DrawControls renders the key legend along the bottom edge.
func (h *HUD) DrawControls(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-25, 14, h.painter.Theme.Muted)
}

// DrawProbe prints the sampled density next to the cursor, highlighted when
// it is above the target density.
func (h *HUD) DrawProbe(sx, sy, density, target float32) {
	t := h.painter.Theme
	color := t.Label
	if target > 0 && density > target {
		color = t.GaugeMark
	}
	rl.DrawText(fmt.Sprintf("rho %.3f", density), int32(sx)+14, int32(sy)-6, t.TextSize, color)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats    telemetry.PerfStats
	Registry *systems.StageRegistry
}

// PerfPanel shows the average tick time and each stage's share of it.
type PerfPanel struct {
	painter *Painter
	x, y    int32
	width   int32
}

// NewPerfPanel creates a perf panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	painter := NewPainter()
	painter.Theme.LabelColumn = 130 // stage name and duration
	return &PerfPanel{
		painter: painter,
		x:       x,
		y:       y,
		width:   width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Height returns the panel height for n phases.
func (p *PerfPanel) Height(n int) int32 {
	t := p.painter.Theme
	return int32(n+2)*t.Line + t.Padding*2
}

// Draw renders one gauge per phase, in the given order.
func (p *PerfPanel) Draw(data PerfPanelData, phases []string) {
	pt := p.painter
	t := pt.Theme
	pt.Panel(p.x, p.y, p.width, p.Height(len(phases)))

	x := p.x + t.Padding
	y := pt.Heading(x, p.y+t.Padding, "Stages")
	y = pt.Pair(x, y, "Tick", fmt.Sprintf("%s (p95 %s)",
		data.Stats.AvgTickDuration.Round(time.Microsecond),
		data.Stats.P95TickDuration.Round(time.Microsecond)))

	for _, phase := range phases {
		name := phase
		if data.Registry != nil {
			name = data.Registry.GetName(phase)
		}
		label := fmt.Sprintf("%s %s", name, data.Stats.PhaseAvg[phase].Round(time.Microsecond))
		y = pt.Gauge(x, y, label, float32(data.Stats.PhasePct[phase]/100), -1, p.width-t.Padding*2)
	}
}

// StatsPanel shows the latest telemetry window.
type StatsPanel struct {
	painter  *Painter
	x, y     int32
	width    int32
	sections []Section[statsView]
}

// NewStatsPanel creates a panel showing density and motion statistics.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		painter:  NewPainter(),
		x:        x,
		y:        y,
		width:    width,
		sections: windowSections(),
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the panel for the given window.
func (s *StatsPanel) Draw(stats telemetry.WindowStats, targetDensity float32) {
	data := statsView{WindowStats: stats, target: float64(targetDensity)}
	p := s.painter
	pad := p.Theme.Padding

	height := pad * 2
	for _, sec := range s.sections {
		height += SectionHeight(p, sec, data)
	}
	p.Panel(s.x, s.y, s.width, height)

	y := s.y + pad
	for _, sec := range s.sections {
		y = DrawSection(p, s.x+pad, y, sec, data, s.width-pad*2)
	}
}

type statsView struct {
	telemetry.WindowStats
	target float64
}

// densityGauge places density on a [0, 2·target] scale with the target at the
// midpoint.
func (v statsView) densityGauge(d float64) (float32, float32) {
	return float32(d / (2 * v.target)), 0.5
}

func count(n int) string { return fmt.Sprintf("%d", n) }

func windowSections() []Section[statsView] {
	noTarget := func(v statsView) bool { return v.target <= 0 }
	return []Section[statsView]{
		{
			Title: "Density",
			Rows: []Row[statsView]{
				{Label: "Mean", Text: func(v statsView) string { return fmt.Sprintf("%.4f", v.DensityMean) }},
				{Label: "P10 / P90", Text: func(v statsView) string {
					return fmt.Sprintf("%.3f / %.3f", v.DensityP10, v.DensityP90)
				}},
				{Label: "Median", Hide: noTarget, Gauge: func(v statsView) (float32, float32) {
					return v.densityGauge(v.DensityP50)
				}},
				{Label: "Max", Hide: noTarget, Gauge: func(v statsView) (float32, float32) {
					return v.densityGauge(v.DensityMax)
				}},
			},
		},
		{
			Title: "Motion",
			Rows: []Row[statsView]{
				{Label: "Speed", Text: func(v statsView) string {
					return fmt.Sprintf("%.1f (p90 %.1f)", v.SpeedMean, v.SpeedP90)
				}},
				{Label: "Max speed", Text: func(v statsView) string { return fmt.Sprintf("%.1f", v.SpeedMax) }},
				{Label: "Kinetic", Text: func(v statsView) string { return fmt.Sprintf("%.3g", v.KineticEnergy) }},
				{Label: "Centroid", Text: func(v statsView) string {
					return fmt.Sprintf("(%.0f, %.0f)", v.CentroidX, v.CentroidY)
				}},
			},
		},
		{
			Title: "Events",
			Rows: []Row[statsView]{
				{Label: "Collisions", Text: func(v statsView) string { return count(v.Collisions) }},
				{Label: "Recoveries", Text: func(v statsView) string { return count(v.Recoveries) }},
				{Label: "Out of grid", Text: func(v statsView) string { return count(v.OutOfGrid) },
					Hide: func(v statsView) bool { return v.OutOfGrid == 0 }},
			},
		},
	}
}
