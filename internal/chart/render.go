package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var ErrUnknownFormat = errors.New("unknown render format")

var (
	lineColor  = drawing.ColorFromHex("2563eb")
	areaColor  = drawing.ColorFromHex("3b82f6").WithAlpha(77)
	gridColor  = drawing.ColorFromHex("d1d5db")
	labelColor = drawing.ColorFromHex("374151")
)

const labelFontSize = 12

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the rendered output.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render draws the geometry bundle. Empty geometry produces a blank canvas of
// the viewport size.
func Render(w io.Writer, g Geometry, format Format) error {
	provider := gochart.SVG
	switch format {
	case FormatSVG:
	case FormatPNG:
		provider = gochart.PNG
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	r, err := provider(canvasSize(g.Viewport.Width), canvasSize(g.Viewport.Height))
	if err != nil {
		return fmt.Errorf("failed to create %s renderer: %w", format, err)
	}

	if !g.Empty {
		font, err := gochart.GetDefaultFont()
		if err != nil {
			return fmt.Errorf("failed to load font: %w", err)
		}
		drawGridlines(r, g)
		drawXAxis(r, g, font)
		drawArea(r, g)
		drawLine(r, g)
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}

func canvasSize(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}

func px(v float64) int {
	return int(math.Round(v))
}

func drawGridlines(r gochart.Renderer, g Geometry) {
	r.ResetStyle()
	r.SetStrokeColor(gridColor)
	r.SetStrokeWidth(1)
	r.SetStrokeDashArray([]float64{1.1})
	for _, tick := range g.YTicks {
		r.MoveTo(px(g.Margins.Left), px(tick.PixelRow))
		r.LineTo(px(g.Viewport.Width-g.Margins.Right), px(tick.PixelRow))
		r.Stroke()
	}
}

func drawXAxis(r gochart.Renderer, g Geometry, font *truetype.Font) {
	r.ResetStyle()
	r.SetStrokeColor(gridColor)
	r.SetStrokeWidth(1)
	top := px(g.Viewport.Height - 2*g.Margins.Bottom)
	bottom := px(g.BaselineY)
	for _, label := range g.XLabels {
		x := px(label.PixelX)
		r.MoveTo(x, top)
		r.LineTo(x, bottom)
		r.Stroke()
	}

	r.ResetStyle()
	r.SetFont(font)
	r.SetFontSize(labelFontSize)
	r.SetFontColor(labelColor)
	y := px(g.BaselineY + 16)
	for _, label := range g.XLabels {
		box := r.MeasureText(label.Label)
		r.Text(label.Label, px(label.PixelX)-box.Width()/2, y)
	}
}

func drawArea(r gochart.Renderer, g Geometry) {
	if g.Area.Empty() {
		return
	}
	r.ResetStyle()
	r.SetFillColor(areaColor)
	r.SetStrokeWidth(0)
	tracePath(r, g.Area)
	r.Fill()
}

func drawLine(r gochart.Renderer, g Geometry) {
	if g.Line.Empty() {
		return
	}
	r.ResetStyle()
	r.SetStrokeColor(lineColor)
	r.SetStrokeWidth(2)
	tracePath(r, g.Line)
	r.Stroke()
}

func tracePath(r gochart.Renderer, p Path) {
	for i, v := range p.Vertices {
		if i == 0 {
			r.MoveTo(px(v.X), px(v.Y))
			continue
		}
		r.LineTo(px(v.X), px(v.Y))
	}
	if p.Closed {
		r.Close()
	}
}
