package chart

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ISODate parses calendar dates with or without zero padding ("2025-11-9", "2025-11-09").
const ISODate = "2006-1-2"

// Sample is one dated observation of a series. Only Date and
// ImpliedProbabilityPercent drive the geometry; the rest is payload.
type Sample struct {
	Date                      time.Time `json:"date"`
	ImpliedProbabilityPercent float64   `json:"implied_probability_percent"`
	Opponent                  string    `json:"opponent,omitempty"`
	Competition               string    `json:"competition,omitempty"`
	MoneylineOdds             string    `json:"moneyline_odds,omitempty"`
	Result                    string    `json:"result,omitempty"`
}

// Series is an ordered list of samples. The engine assumes ascending date order.
type Series struct {
	Name    string   `json:"name"`
	Title   string   `json:"title,omitempty"`
	Samples []Sample `json:"samples"`
}

// Viewport is the measured pixel size of the render surface.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Margins are fixed per chart instance.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins matches the portfolio chart layout.
var DefaultMargins = Margins{Top: 10, Right: 10, Bottom: 20, Left: 10}

// ParseDate parses an ISO calendar date at day resolution.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func (s Series) Len() int {
	return len(s.Samples)
}

// MaxValue returns the largest implied probability, or 0 for an empty series.
func (s Series) MaxValue() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	max := s.Samples[0].ImpliedProbabilityPercent
	for _, sample := range s.Samples[1:] {
		if sample.ImpliedProbabilityPercent > max {
			max = sample.ImpliedProbabilityPercent
		}
	}
	return max
}

// IsChronological reports whether sample dates are strictly increasing.
func (s Series) IsChronological() bool {
	for i := 1; i < len(s.Samples); i++ {
		if !s.Samples[i].Date.After(s.Samples[i-1].Date) {
			return false
		}
	}
	return true
}

// SortChronologically orders samples by ascending date in place.
func (s *Series) SortChronologically() {
	sort.SliceStable(s.Samples, func(i, j int) bool {
		return s.Samples[i].Date.Before(s.Samples[j].Date)
	})
}

func (s Series) Clone() Series {
	samples := make([]Sample, len(s.Samples))
	copy(samples, s.Samples)
	return Series{
		Name:    s.Name,
		Title:   s.Title,
		Samples: samples,
	}
}
