package chart

import (
	"github.com/match-odds-chart/internal/config"
)

const (
	DefaultTickCount  = 4
	DefaultDateLayout = "02 Jan"
)

// XLabel is an x-axis label centred under its band.
type XLabel struct {
	PixelX float64 `json:"pixel_x"`
	Label  string  `json:"label"`
	Date   string  `json:"date"`
}

// Geometry is everything a renderer needs to draw the chart for one viewport.
// It is recomputed from scratch for every viewport or series change.
type Geometry struct {
	Empty     bool        `json:"empty"`
	Viewport  Viewport    `json:"viewport"`
	Margins   Margins     `json:"margins"`
	XScale    BandScale   `json:"x_scale"`
	YScale    LinearScale `json:"y_scale"`
	BaselineY float64     `json:"baseline_y"`
	Line      Path        `json:"line"`
	Area      Path        `json:"area"`
	YTicks    []YTick     `json:"y_ticks"`
	XLabels   []XLabel    `json:"x_labels"`
}

// ComputeXAxisLabels returns one label per sample at its band center.
func ComputeXAxisLabels(series Series, x BandScale, layout string) []XLabel {
	if len(series.Samples) == 0 || x.Len() != len(series.Samples) {
		return []XLabel{}
	}
	if layout == "" {
		layout = DefaultDateLayout
	}

	labels := make([]XLabel, len(series.Samples))
	for i, sample := range series.Samples {
		labels[i] = XLabel{
			PixelX: x.Center(i),
			Label:  sample.Date.Format(layout),
			Date:   sample.Date.Format("2006-01-02"),
		}
	}
	return labels
}

// Engine holds the per-chart constants. Compute has no side effects and keeps
// no state between calls.
type Engine struct {
	Margins    Margins
	TickCount  int
	DateLayout string
}

func NewEngine(cfg config.ChartConfig) *Engine {
	e := &Engine{
		Margins: Margins{
			Top:    cfg.MarginTop,
			Right:  cfg.MarginRight,
			Bottom: cfg.MarginBottom,
			Left:   cfg.MarginLeft,
		},
		TickCount:  cfg.TickCount,
		DateLayout: cfg.DateLayout,
	}
	if e.TickCount <= 0 {
		e.TickCount = DefaultTickCount
	}
	e.TickCount = min(e.TickCount, MaxTickCount)
	if e.DateLayout == "" {
		e.DateLayout = DefaultDateLayout
	}
	return e
}

// Compute runs the full pipeline. An empty series or a viewport with no room
// left inside the margins produces an empty bundle rather than an error.
func (e *Engine) Compute(series Series, viewport Viewport) Geometry {
	if len(series.Samples) == 0 || !e.hasPlotArea(viewport) {
		return e.empty(viewport)
	}

	x := ComputeXScale(series, viewport, e.Margins)
	y := ComputeYScale(series, viewport, e.Margins)
	baseline := viewport.Height - e.Margins.Bottom

	return Geometry{
		Viewport:  viewport,
		Margins:   e.Margins,
		XScale:    x,
		YScale:    y,
		BaselineY: baseline,
		Line:      BuildLinePath(series, x, y),
		Area:      BuildAreaPath(series, x, y, baseline),
		YTicks:    ComputeYAxisTicks(y, e.TickCount),
		XLabels:   ComputeXAxisLabels(series, x, e.DateLayout),
	}
}

func (e *Engine) hasPlotArea(v Viewport) bool {
	return v.Width-e.Margins.Left-e.Margins.Right > 0 &&
		v.Height-e.Margins.Top-e.Margins.Bottom > 0
}

func (e *Engine) empty(v Viewport) Geometry {
	return Geometry{
		Empty:    true,
		Viewport: v,
		Margins:  e.Margins,
		XScale:   BandScale{Lefts: []float64{}},
		YTicks:   []YTick{},
		XLabels:  []XLabel{},
	}
}
