package stats

import (
	"math"
	"strings"

	"github.com/match-odds-chart/internal/chart"
)

type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeDraw    Outcome = "draw"
	OutcomeLoss    Outcome = "loss"
	OutcomeUnknown Outcome = "unknown"
)

// Summary describes how well the implied probabilities of a series matched
// the results.
type Summary struct {
	Series string `json:"series"`
	Count  int    `json:"count"`

	// Implied probability, percent
	MeanImplied float64 `json:"mean_implied"`
	MinImplied  float64 `json:"min_implied"`
	MaxImplied  float64 `json:"max_implied"`
	Volatility  float64 `json:"volatility"` // standard deviation

	// Results
	Wins    int `json:"wins"`
	Draws   int `json:"draws"`
	Losses  int `json:"losses"`
	Unknown int `json:"unknown"`

	// Calibration, over samples with a known result
	ExpectedWins     float64 `json:"expected_wins"`
	BrierScore       float64 `json:"brier_score"`       // 0 is perfect
	CalibrationError float64 `json:"calibration_error"` // |expected - actual| / settled
}

// ParseOutcome reads the leading word of a result such as "Win (3-0)".
func ParseOutcome(result string) Outcome {
	r := strings.ToLower(strings.TrimSpace(result))
	switch {
	case strings.HasPrefix(r, "win"):
		return OutcomeWin
	case strings.HasPrefix(r, "draw"):
		return OutcomeDraw
	case strings.HasPrefix(r, "loss"), strings.HasPrefix(r, "lose"), strings.HasPrefix(r, "lost"):
		return OutcomeLoss
	}
	return OutcomeUnknown
}

// Summarize computes the summary of a series. An empty series yields a zero
// summary carrying only the name.
func Summarize(series chart.Series) Summary {
	sum := Summary{Series: series.Name, Count: series.Len()}
	if sum.Count == 0 {
		return sum
	}

	values := make([]float64, 0, sum.Count)
	settled := 0
	brier := 0.0
	for _, sample := range series.Samples {
		v := sample.ImpliedProbabilityPercent
		values = append(values, v)

		p := math.Min(1, math.Max(0, v/100))
		var actual float64
		switch ParseOutcome(sample.Result) {
		case OutcomeWin:
			sum.Wins++
			actual = 1
		case OutcomeDraw:
			sum.Draws++
		case OutcomeLoss:
			sum.Losses++
		default:
			sum.Unknown++
			continue
		}
		settled++
		sum.ExpectedWins += p
		brier += (p - actual) * (p - actual)
	}

	sum.MeanImplied = computeMean(values)
	sum.MinImplied, sum.MaxImplied = computeRange(values)
	sum.Volatility = computeStdDev(values, sum.MeanImplied)

	if settled > 0 {
		sum.BrierScore = brier / float64(settled)
		sum.CalibrationError = math.Abs(sum.ExpectedWins-float64(sum.Wins)) / float64(settled)
	}
	return sum
}

func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func computeRange(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max
}

func computeStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
