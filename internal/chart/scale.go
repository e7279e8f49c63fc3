package chart

import "math"

// BandScale partitions [Start, Stop] into equal contiguous bands, one per
// sample, in series order.
type BandScale struct {
	Start     float64   `json:"start"`
	Stop      float64   `json:"stop"`
	Bandwidth float64   `json:"bandwidth"`
	Lefts     []float64 `json:"lefts"`
}

// ComputeXScale builds the categorical x-scale. An empty series yields a scale
// with no bands. A viewport narrower than the horizontal margins collapses every
// band to zero width at the left margin.
func ComputeXScale(series Series, viewport Viewport, margins Margins) BandScale {
	start := margins.Left
	stop := viewport.Width - margins.Right
	if !(stop > start) {
		stop = start
	}

	scale := BandScale{Start: start, Stop: stop}
	n := len(series.Samples)
	if n == 0 {
		return scale
	}

	step := (stop - start) / float64(n)
	scale.Bandwidth = step
	scale.Lefts = make([]float64, n)
	for i := range scale.Lefts {
		scale.Lefts[i] = start + float64(i)*step
	}
	return scale
}

func (b BandScale) Len() int {
	return len(b.Lefts)
}

// Left returns the left edge of band i.
func (b BandScale) Left(i int) float64 {
	return b.Lefts[i]
}

// Center returns the horizontal center of band i. Path vertices and axis
// labels both use it so labels sit exactly under their data points.
func (b BandScale) Center(i int) float64 {
	return b.Lefts[i] + b.Bandwidth/2
}

// LinearScale maps Domain linearly onto Range. For the y-axis the range is
// inverted (bottom pixel row first).
type LinearScale struct {
	Domain  [2]float64 `json:"domain"`
	Range   [2]float64 `json:"range"`
	Defined bool       `json:"defined"`
}

// ComputeYScale builds the y-scale with domain [0, max value] and range
// [height-bottom, top]. The scale is undefined for an empty series.
func ComputeYScale(series Series, viewport Viewport, margins Margins) LinearScale {
	if len(series.Samples) == 0 {
		return LinearScale{}
	}
	return LinearScale{
		Domain:  [2]float64{0, series.MaxValue()},
		Range:   [2]float64{viewport.Height - margins.Bottom, margins.Top},
		Defined: true,
	}
}

// Map converts a domain value to a pixel coordinate. A zero-width (or
// negative, or NaN) domain maps every value to the first range value.
func (s LinearScale) Map(v float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	span := d1 - d0
	if !(span > 0) || math.IsInf(span, 0) {
		return r0
	}
	y := r0 + (v-d0)/span*(r1-r0)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return r0
	}
	return y
}
