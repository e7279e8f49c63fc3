package stats

import (
	"testing"
	"time"

	"github.com/match-odds-chart/internal/chart"
	"github.com/match-odds-chart/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	assert.Equal(t, OutcomeWin, ParseOutcome("Win (3-0)"))
	assert.Equal(t, OutcomeLoss, ParseOutcome(" loss (0-2)"))
	assert.Equal(t, OutcomeDraw, ParseOutcome("Draw (1-1)"))
	assert.Equal(t, OutcomeUnknown, ParseOutcome("Postponed"))
	assert.Equal(t, OutcomeUnknown, ParseOutcome(""))
}

func TestSummarizeMatchHistory(t *testing.T) {
	sum := Summarize(state.MatchHistory())

	require.Equal(t, 12, sum.Count)
	assert.Equal(t, 9, sum.Wins)
	assert.Equal(t, 3, sum.Losses)
	assert.Equal(t, 0, sum.Draws)
	assert.Equal(t, 50.0, sum.MinImplied)
	assert.Equal(t, 83.3, sum.MaxImplied)
	assert.InDelta(t, 70.99, sum.MeanImplied, 0.01)
	assert.InDelta(t, 8.519, sum.ExpectedWins, 1e-9)
	assert.InDelta(t, (9-8.519)/12, sum.CalibrationError, 1e-9)
	assert.Greater(t, sum.BrierScore, 0.0)
	assert.Less(t, sum.BrierScore, 0.25)
	assert.Greater(t, sum.Volatility, 0.0)
}

func TestSummarizeSkipsUnknownResults(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := chart.Series{Name: "x", Samples: []chart.Sample{
		{Date: d, ImpliedProbabilityPercent: 100, Result: "Win"},
		{Date: d.AddDate(0, 0, 1), ImpliedProbabilityPercent: 40, Result: "TBD"},
	}}

	sum := Summarize(s)
	assert.Equal(t, 1, sum.Wins)
	assert.Equal(t, 1, sum.Unknown)
	assert.Equal(t, 1.0, sum.ExpectedWins)
	assert.Equal(t, 0.0, sum.BrierScore)
	assert.Equal(t, 70.0, sum.MeanImplied)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(chart.Series{Name: "none"})
	assert.Equal(t, Summary{Series: "none"}, sum)
}
