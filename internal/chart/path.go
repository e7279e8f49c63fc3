package chart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is a polyline through Vertices, optionally closed. The zero value is
// the empty sentinel: callers render nothing for it.
type Path struct {
	Vertices []Point
	Closed   bool
}

func (p Path) Empty() bool {
	return len(p.Vertices) == 0
}

// String serialises the path as SVG path data ("M10,20L30,40Z").
func (p Path) String() string {
	if p.Empty() {
		return ""
	}

	var b strings.Builder
	for i, v := range p.Vertices {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(formatCoord(v.X))
		b.WriteByte(',')
		b.WriteString(formatCoord(v.Y))
	}
	if p.Closed {
		b.WriteByte('Z')
	}
	return b.String()
}

func (p Path) MarshalJSON() ([]byte, error) {
	vertices := p.Vertices
	if vertices == nil {
		vertices = []Point{}
	}
	return json.Marshal(struct {
		D        string  `json:"d"`
		Vertices []Point `json:"vertices"`
		Closed   bool    `json:"closed"`
	}{
		D:        p.String(),
		Vertices: vertices,
		Closed:   p.Closed,
	})
}

func formatCoord(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		// avoid "-0"
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// BuildLinePath visits every sample in series order at its band center.
// It returns the empty sentinel when the series is empty or the scales do not
// describe it.
func BuildLinePath(series Series, x BandScale, y LinearScale) Path {
	if !describes(series, x, y) {
		return Path{}
	}

	vertices := make([]Point, len(series.Samples))
	for i, sample := range series.Samples {
		vertices[i] = Point{X: x.Center(i), Y: y.Map(sample.ImpliedProbabilityPercent)}
	}
	return Path{Vertices: vertices}
}

// BuildAreaPath shares the line's top vertices and closes them against a
// constant baseline, walking the baseline back right to left.
func BuildAreaPath(series Series, x BandScale, y LinearScale, baselineY float64) Path {
	line := BuildLinePath(series, x, y)
	if line.Empty() {
		return Path{}
	}

	n := len(line.Vertices)
	vertices := make([]Point, 0, 2*n)
	vertices = append(vertices, line.Vertices...)
	for i := n - 1; i >= 0; i-- {
		vertices = append(vertices, Point{X: line.Vertices[i].X, Y: baselineY})
	}
	return Path{Vertices: vertices, Closed: true}
}

func describes(series Series, x BandScale, y LinearScale) bool {
	n := len(series.Samples)
	return n > 0 && x.Len() == n && y.Defined
}
