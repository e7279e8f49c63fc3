package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" SVG ")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	f, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())

	_, err = ParseFormat("gif")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestRenderSVG(t *testing.T) {
	g := testEngine().Compute(seriesOf(50, 80, 62), Viewport{Width: 320, Height: 200})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, g, FormatSVG))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "<path")
	assert.Contains(t, out, "01 Jan")
	assert.Contains(t, out, "03 Jan")
}

func TestRenderPNG(t *testing.T) {
	g := testEngine().Compute(seriesOf(50, 80), Viewport{Width: 120, Height: 90})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, g, FormatPNG))
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), buf.Bytes()[:8])
}

func TestRenderEmptyGeometry(t *testing.T) {
	g := testEngine().Compute(Series{}, Viewport{})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, g, FormatSVG))
	assert.Contains(t, buf.String(), "<svg")
	assert.NotContains(t, buf.String(), "<text")
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Geometry{Empty: true}, Format("bmp"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.Zero(t, buf.Len())
}
