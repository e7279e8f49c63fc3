package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePathVisitsEveryBandCenter(t *testing.T) {
	s := seriesOf(80, 62, 80, 81.8, 50, 52.2, 77)
	vp := Viewport{Width: 613, Height: 287}
	x := ComputeXScale(s, vp, scenarioMargins)
	y := ComputeYScale(s, vp, scenarioMargins)

	line := BuildLinePath(s, x, y)
	require.Len(t, line.Vertices, s.Len())
	assert.False(t, line.Closed)
	for i, v := range line.Vertices {
		assert.Equal(t, x.Center(i), v.X, "vertex %d", i)
		assert.Equal(t, y.Map(s.Samples[i].ImpliedProbabilityPercent), v.Y, "vertex %d", i)
	}
}

func TestLinePathScenarioA(t *testing.T) {
	s := seriesOf(50, 80)
	vp := Viewport{Width: 100, Height: 100}
	x := ComputeXScale(s, vp, scenarioMargins)
	y := ComputeYScale(s, vp, scenarioMargins)

	line := BuildLinePath(s, x, y)
	assert.Equal(t, "M30,36.25L70,10", line.String())

	area := BuildAreaPath(s, x, y, 80)
	assert.Equal(t, "M30,36.25L70,10L70,80L30,80Z", area.String())
}

func TestAreaPathClosesAgainstBaseline(t *testing.T) {
	s := seriesOf(20, 45, 10, 90)
	vp := Viewport{Width: 400, Height: 200}
	x := ComputeXScale(s, vp, scenarioMargins)
	y := ComputeYScale(s, vp, scenarioMargins)
	baseline := vp.Height - scenarioMargins.Bottom

	area := BuildAreaPath(s, x, y, baseline)
	require.Len(t, area.Vertices, 2*s.Len())
	assert.True(t, area.Closed)

	line := BuildLinePath(s, x, y)
	assert.Equal(t, line.Vertices, area.Vertices[:s.Len()])
	for i := 0; i < s.Len(); i++ {
		bottom := area.Vertices[2*s.Len()-1-i]
		assert.Equal(t, line.Vertices[i].X, bottom.X)
		assert.Equal(t, baseline, bottom.Y)
	}
}

func TestPathsEmptySentinelScenarioC(t *testing.T) {
	var s Series
	vp := Viewport{Width: 100, Height: 100}
	x := ComputeXScale(s, vp, scenarioMargins)
	y := ComputeYScale(s, vp, scenarioMargins)

	line := BuildLinePath(s, x, y)
	area := BuildAreaPath(s, x, y, 80)
	assert.True(t, line.Empty())
	assert.True(t, area.Empty())
	assert.Equal(t, "", line.String())
	assert.Equal(t, "", area.String())
	assert.Empty(t, ComputeYAxisTicks(y, 4))
}

func TestPathsToleratesZeroWidthBands(t *testing.T) {
	s := seriesOf(30, 60)
	vp := Viewport{}
	x := ComputeXScale(s, vp, scenarioMargins)
	y := ComputeYScale(s, vp, scenarioMargins)

	line := BuildLinePath(s, x, y)
	require.Len(t, line.Vertices, 2)
	for _, v := range line.Vertices {
		assert.Equal(t, 10.0, v.X)
	}
	assert.NotContains(t, line.String(), "NaN")
	assert.NotContains(t, BuildAreaPath(s, x, y, -20).String(), "NaN")
}

func TestPathMismatchedScaleIsEmpty(t *testing.T) {
	s := seriesOf(30, 60, 90)
	vp := Viewport{Width: 100, Height: 100}
	x := ComputeXScale(seriesOf(1, 2), vp, scenarioMargins)
	y := ComputeYScale(s, vp, scenarioMargins)

	assert.True(t, BuildLinePath(s, x, y).Empty())
}

func TestPathJSON(t *testing.T) {
	p := Path{Vertices: []Point{{X: 1.005, Y: -0.001}, {X: 2, Y: 3.5}}}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"M1,0L2,3.5","vertices":[{"x":1.005,"y":-0.001},{"x":2,"y":3.5}],"closed":false}`, string(data))

	data, err = json.Marshal(Path{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"","vertices":[],"closed":false}`, string(data))
}
