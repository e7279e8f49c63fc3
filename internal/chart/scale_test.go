package chart

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func seriesOf(values ...float64) Series {
	start := day("2025-01-01")
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = Sample{Date: start.AddDate(0, 0, i), ImpliedProbabilityPercent: v}
	}
	return Series{Name: "test", Samples: samples}
}

var scenarioMargins = Margins{Top: 10, Right: 10, Bottom: 20, Left: 10}

func TestXScaleScenarioA(t *testing.T) {
	s := seriesOf(50, 80)
	x := ComputeXScale(s, Viewport{Width: 100, Height: 100}, scenarioMargins)

	require.Equal(t, 2, x.Len())
	assert.Equal(t, 40.0, x.Bandwidth)
	assert.Equal(t, 10.0, x.Left(0))
	assert.Equal(t, 50.0, x.Left(1))
	assert.Equal(t, 30.0, x.Center(0))
	assert.Equal(t, 70.0, x.Center(1))
}

func TestXScaleBandsTileAvailableWidth(t *testing.T) {
	for n := 1; n <= 13; n++ {
		values := make([]float64, n)
		s := seriesOf(values...)
		x := ComputeXScale(s, Viewport{Width: 437, Height: 200}, scenarioMargins)

		require.Equal(t, n, x.Len())
		assert.Equal(t, 10.0, x.Left(0))
		for i := 1; i < n; i++ {
			assert.Greater(t, x.Left(i), x.Left(i-1), "n=%d band %d", n, i)
			assert.InDelta(t, x.Left(i-1)+x.Bandwidth, x.Left(i), 1e-9, "n=%d band %d leaves a gap", n, i)
		}
		assert.InDelta(t, 427.0, x.Left(n-1)+x.Bandwidth, 1e-9, "n=%d bands end at width-right", n)
	}
}

func TestXScaleDegenerateViewport(t *testing.T) {
	s := seriesOf(10, 20, 30)

	for _, vp := range []Viewport{{}, {Width: 15}, {Width: 20}, {Width: -5}} {
		x := ComputeXScale(s, vp, scenarioMargins)
		require.Equal(t, 3, x.Len())
		assert.Equal(t, 0.0, x.Bandwidth)
		for i := 0; i < x.Len(); i++ {
			assert.Equal(t, 10.0, x.Left(i))
		}
	}
}

func TestXScaleEmptySeries(t *testing.T) {
	x := ComputeXScale(Series{}, Viewport{Width: 100, Height: 100}, scenarioMargins)
	assert.Equal(t, 0, x.Len())
	assert.Equal(t, 0.0, x.Bandwidth)
}

func TestYScaleScenarioA(t *testing.T) {
	s := seriesOf(50, 80)
	y := ComputeYScale(s, Viewport{Width: 100, Height: 100}, scenarioMargins)

	require.True(t, y.Defined)
	assert.Equal(t, [2]float64{0, 80}, y.Domain)
	assert.Equal(t, [2]float64{80, 10}, y.Range)
	assert.Equal(t, 80.0, y.Map(0))
	assert.Equal(t, 10.0, y.Map(80))
	assert.InDelta(t, 36.25, y.Map(50), 1e-9)
	assert.Less(t, y.Map(80), y.Map(50))
}

func TestYScaleReversesOrder(t *testing.T) {
	s := seriesOf(12, 83.3, 47, 66.7)
	y := ComputeYScale(s, Viewport{Width: 300, Height: 240}, scenarioMargins)

	prev := y.Map(0)
	for v := 0.5; v <= 83.3; v += 0.5 {
		cur := y.Map(v)
		require.Less(t, cur, prev, "y(%v) must sit above y(%v)", v, v-0.5)
		prev = cur
	}
}

func TestYScaleZeroDomainScenarioB(t *testing.T) {
	s := seriesOf(0)
	y := ComputeYScale(s, Viewport{Width: 100, Height: 100}, scenarioMargins)

	require.True(t, y.Defined)
	assert.Equal(t, [2]float64{0, 0}, y.Domain)
	for _, v := range []float64{0, 1, 50, -3, math.Inf(1)} {
		got := y.Map(v)
		assert.Equal(t, 80.0, got, "value %v", v)
	}
}

func TestYScaleEmptySeriesUndefined(t *testing.T) {
	y := ComputeYScale(Series{}, Viewport{Width: 100, Height: 100}, scenarioMargins)
	assert.False(t, y.Defined)
}

func TestSeriesHelpers(t *testing.T) {
	s := Series{Samples: []Sample{
		{Date: day("2025-11-9"), ImpliedProbabilityPercent: 52.2},
		{Date: day("2025-10-18"), ImpliedProbabilityPercent: 81.8},
		{Date: day("2025-11-05"), ImpliedProbabilityPercent: 77},
	}}
	assert.False(t, s.IsChronological())
	assert.Equal(t, 81.8, s.MaxValue())

	clone := s.Clone()
	clone.SortChronologically()
	assert.True(t, clone.IsChronological())
	assert.Equal(t, day("2025-11-09"), s.Samples[0].Date, "sorting the clone leaves the original alone")
	assert.Equal(t, day("2025-10-18"), clone.Samples[0].Date)

	_, err := ParseDate("18/10/2025")
	assert.Error(t, err)
}
