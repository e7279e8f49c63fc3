package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/match-odds-chart/internal/chart"
	"github.com/match-odds-chart/internal/odds"
)

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// OddsTolerance is how far, in percentage points, a stated implied
// probability may drift from its quoted odds before Validate warns.
const OddsTolerance = 5.0

type fileDataset struct {
	Series []fileSeries `toml:"series" yaml:"series"`
}

type fileSeries struct {
	Name    string       `toml:"name" yaml:"name"`
	Title   string       `toml:"title" yaml:"title"`
	Samples []fileSample `toml:"samples" yaml:"samples"`
}

type fileSample struct {
	Date                      string  `toml:"date" yaml:"date"`
	Opponent                  string  `toml:"opponent" yaml:"opponent"`
	Competition               string  `toml:"competition" yaml:"competition"`
	MoneylineOdds             string  `toml:"moneyline_odds" yaml:"moneyline_odds"`
	ImpliedProbabilityPercent float64 `toml:"implied_probability_percent" yaml:"implied_probability_percent"`
	Result                    string  `toml:"result" yaml:"result"`
}

// Load reads every series from a .toml, .yaml or .yml file. Samples come back
// in ascending date order regardless of their order in the file.
func Load(path string) ([]chart.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses dataset content; ext selects the format and includes the dot.
func Decode(data []byte, ext string) ([]chart.Series, error) {
	var raw fileDataset
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML dataset: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	seen := make(map[string]bool, len(raw.Series))
	out := make([]chart.Series, 0, len(raw.Series))
	for i, fs := range raw.Series {
		name := strings.TrimSpace(fs.Name)
		if name == "" {
			return nil, fmt.Errorf("series %d: missing name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("series %q: defined twice", name)
		}
		seen[name] = true

		series, err := fs.toSeries(name)
		if err != nil {
			return nil, err
		}
		out = append(out, series)
	}
	return out, nil
}

func (fs fileSeries) toSeries(name string) (chart.Series, error) {
	series := chart.Series{
		Name:    name,
		Title:   fs.Title,
		Samples: make([]chart.Sample, 0, len(fs.Samples)),
	}
	dates := make(map[string]bool, len(fs.Samples))
	for j, raw := range fs.Samples {
		date, err := chart.ParseDate(raw.Date)
		if err != nil {
			return chart.Series{}, fmt.Errorf("series %q sample %d: %w", name, j, err)
		}
		key := date.Format("2006-01-02")
		if dates[key] {
			return chart.Series{}, fmt.Errorf("series %q: duplicate date %s", name, key)
		}
		dates[key] = true

		v := raw.ImpliedProbabilityPercent
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return chart.Series{}, fmt.Errorf("series %q sample %d: implied probability is not finite", name, j)
		}

		series.Samples = append(series.Samples, chart.Sample{
			Date:                      date,
			ImpliedProbabilityPercent: v,
			Opponent:                  raw.Opponent,
			Competition:               raw.Competition,
			MoneylineOdds:             raw.MoneylineOdds,
			Result:                    raw.Result,
		})
	}
	series.SortChronologically()
	return series, nil
}

// Warning flags a sample that loaded fine but looks wrong.
type Warning struct {
	Series  string `json:"series"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Series, w.Date, w.Message)
}

// Validate checks stated probabilities against their range and, when the odds
// text can be parsed, against the probability the odds imply.
func Validate(series chart.Series) []Warning {
	var warnings []Warning
	for _, s := range series.Samples {
		date := s.Date.Format("2006-01-02")
		v := s.ImpliedProbabilityPercent
		if v < 0 || v > 100 {
			warnings = append(warnings, Warning{
				Series:  series.Name,
				Date:    date,
				Message: fmt.Sprintf("implied probability %.1f%% outside [0, 100]", v),
			})
			continue
		}
		if s.MoneylineOdds == "" {
			continue
		}
		fromOdds, err := odds.ImpliedPercent(s.MoneylineOdds)
		if err != nil {
			continue
		}
		if math.Abs(fromOdds-v) > OddsTolerance {
			warnings = append(warnings, Warning{
				Series:  series.Name,
				Date:    date,
				Message: fmt.Sprintf("stated %.1f%% but odds %q imply %.1f%%", v, s.MoneylineOdds, fromOdds),
			})
		}
	}
	return warnings
}
