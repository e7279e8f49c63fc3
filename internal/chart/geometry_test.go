package chart

import (
	"encoding/json"
	"testing"

	"github.com/match-odds-chart/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(config.ChartConfig{
		MarginTop:    10,
		MarginRight:  10,
		MarginBottom: 20,
		MarginLeft:   10,
	})
}

func TestNewEngineDefaults(t *testing.T) {
	e := testEngine()
	assert.Equal(t, DefaultMargins, e.Margins)
	assert.Equal(t, DefaultTickCount, e.TickCount)
	assert.Equal(t, DefaultDateLayout, e.DateLayout)

	e = NewEngine(config.ChartConfig{TickCount: 1 << 30})
	assert.Equal(t, MaxTickCount, e.TickCount)
}

func TestComputeScenarioA(t *testing.T) {
	s := Series{Samples: []Sample{
		{Date: day("2025-01-01"), ImpliedProbabilityPercent: 50},
		{Date: day("2025-01-02"), ImpliedProbabilityPercent: 80},
	}}

	g := testEngine().Compute(s, Viewport{Width: 100, Height: 100})
	require.False(t, g.Empty)
	assert.Equal(t, 40.0, g.XScale.Bandwidth)
	assert.Equal(t, []float64{10, 50}, g.XScale.Lefts)
	assert.Equal(t, 80.0, g.BaselineY)
	assert.Less(t, g.Line.Vertices[1].Y, g.Line.Vertices[0].Y)
	assert.Equal(t, []XLabel{
		{PixelX: 30, Label: "01 Jan", Date: "2025-01-01"},
		{PixelX: 70, Label: "02 Jan", Date: "2025-01-02"},
	}, g.XLabels)
	assert.Equal(t, []float64{0, 20, 40, 60, 80}, tickValues(g.YTicks))
}

func TestComputeLabelsAlignWithVertices(t *testing.T) {
	e := testEngine()
	s := seriesOf(80, 62, 80, 81.8, 50, 52.2, 77, 83.3, 80, 57.1, 66.7, 81.8)

	for _, vp := range []Viewport{{Width: 320, Height: 320}, {Width: 1111, Height: 333}, {Width: 27, Height: 40}} {
		g := e.Compute(s, vp)
		require.False(t, g.Empty)
		require.Len(t, g.XLabels, s.Len())
		require.Len(t, g.Line.Vertices, s.Len())
		for i := range g.XLabels {
			assert.Equal(t, g.Line.Vertices[i].X, g.XLabels[i].PixelX, "viewport %+v sample %d", vp, i)
			assert.Equal(t, g.Area.Vertices[i].X, g.XLabels[i].PixelX)
		}
	}
}

func TestComputeGracefulDegeneracy(t *testing.T) {
	e := testEngine()
	tests := []struct {
		name     string
		series   Series
		viewport Viewport
	}{
		{"empty series", Series{}, Viewport{Width: 640, Height: 320}},
		{"zero viewport", seriesOf(50, 80), Viewport{}},
		{"narrower than margins", seriesOf(50, 80), Viewport{Width: 20, Height: 320}},
		{"shorter than margins", seriesOf(50, 80), Viewport{Width: 640, Height: 30}},
		{"negative viewport", seriesOf(50), Viewport{Width: -10, Height: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Geometry
			require.NotPanics(t, func() { g = e.Compute(tt.series, tt.viewport) })
			assert.True(t, g.Empty)
			assert.True(t, g.Line.Empty())
			assert.True(t, g.Area.Empty())
			assert.Empty(t, g.YTicks)
			assert.Empty(t, g.XLabels)
			assert.Equal(t, tt.viewport, g.Viewport)
		})
	}
}

func TestComputeSingleZeroSample(t *testing.T) {
	g := testEngine().Compute(seriesOf(0), Viewport{Width: 100, Height: 100})
	require.False(t, g.Empty)
	require.Len(t, g.Line.Vertices, 1)
	assert.Equal(t, Point{X: 50, Y: 80}, g.Line.Vertices[0])
	assert.Equal(t, "M50,80", g.Line.String())
}

func TestGeometryJSON(t *testing.T) {
	g := testEngine().Compute(seriesOf(50, 80), Viewport{Width: 100, Height: 100})
	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded struct {
		Empty bool `json:"empty"`
		Line  struct {
			D string `json:"d"`
		} `json:"line"`
		YTicks []YTick `json:"y_ticks"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Empty)
	assert.Equal(t, "M30,36.25L70,10", decoded.Line.D)
	assert.Len(t, decoded.YTicks, 5)

	data, err = json.Marshal(testEngine().Compute(Series{}, Viewport{}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"y_ticks":[]`)
	assert.Contains(t, string(data), `"x_labels":[]`)
}

func tickValues(ticks []YTick) []float64 {
	values := make([]float64, len(ticks))
	for i, tick := range ticks {
		values[i] = tick.Value
	}
	return values
}
