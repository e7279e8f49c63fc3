package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/match-odds-chart/internal/config"
	"github.com/match-odds-chart/internal/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadStateBuiltIn(t *testing.T) {
	st, err := loadState(config.DataConfig{})
	require.NoError(t, err)
	_, ok := st.Get(state.MatchHistoryName)
	assert.True(t, ok)
}

func TestLoadStateFromFile(t *testing.T) {
	st, err := loadState(config.DataConfig{Path: filepath.Join("data", "matches.toml")})
	require.NoError(t, err)
	s, err := st.Lookup(state.MatchHistoryName)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Len())
}

func TestCheckCommand(t *testing.T) {
	path := writeConfig(t, "[data]\ndefault_series = \"man-city\"\n")
	cmd := newCheckCmd(&path)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "man-city: 12 samples")
	assert.Contains(t, out.String(), "ok, 0 warnings")
}

func TestCheckCommandUnknownDefaultSeries(t *testing.T) {
	path := writeConfig(t, "[data]\ndefault_series = \"arsenal\"\n")
	cmd := newCheckCmd(&path)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(nil)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series not found")
}

func TestRenderCommand(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"none\"\n")
	out := filepath.Join(t.TempDir(), "chart.svg")

	cmd := newRenderCmd(&path)
	cmd.SetArgs([]string{"--width", "400", "--height", "200", "--out", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"))
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"none\"\n")
	cmd := newRenderCmd(&path)
	cmd.SetArgs([]string{"--format", "gif", "--out", filepath.Join(t.TempDir(), "x")})
	cmd.SilenceUsage = true
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown render format")
}
