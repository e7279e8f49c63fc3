package state

import (
	"github.com/match-odds-chart/internal/chart"
)

// MatchHistoryName is the name the built-in series is stored under.
const MatchHistoryName = "man-city"

type match struct {
	date, opponent, competition, odds, result string
	implied                                   float64
}

// Newest first, as published.
var manCityMatches = []match{
	{"2025-12-06", "Sunderland (H)", "Premier League", "-375 to -435", "Win (3-0)", 80},
	{"2025-12-02", "Fulham (A)", "Premier League", "3/5 (Fractional, approx. -166)", "Win (5-4)", 62},
	{"2025-11-29", "Leeds (H)", "Premier League", "-398 to -435", "Win (3-2)", 80},
	{"2025-11-25", "Leverkusen (H)", "Champions League", "-450", "Loss (0-2)", 81.8},
	{"2025-11-22", "Newcastle (A)", "Premier League", "+102 (or 19/20)", "Loss (1-2)", 50},
	{"2025-11-9", "Liverpool (H)", "Premier League", "-107 to 9/10 (Fractional)", "Win (3-0)", 52.2},
	{"2025-11-5", "Dortmund (H)", "Champions League", "-333 (Estimate)", "Win (4-1)", 77},
	{"2025-11-2", "Bournemouth (H)", "Premier League", "-500 (Estimate)", "Win (3-1)", 83.3},
	{"2025-10-29", "Swansea (A)", "League Cup", "-400 (Estimate)", "Win (3-1)", 80},
	{"2025-10-26", "Aston Villa (A)", "Premier League", "-133 (Estimate)", "Loss (0-1)", 57.1},
	{"2025-10-21", "Villarreal (A)", "Champions League", "-200 (Estimate)", "Win (2-0)", 66.7},
	{"2025-10-18", "Everton (H)", "Premier League", "-450 (Estimate)", "Win (2-0)", 81.8},
}

// MatchHistory returns the built-in Manchester City series in ascending date order.
func MatchHistory() chart.Series {
	samples := make([]chart.Sample, 0, len(manCityMatches))
	for i := len(manCityMatches) - 1; i >= 0; i-- {
		m := manCityMatches[i]
		date, err := chart.ParseDate(m.date)
		if err != nil {
			panic(err)
		}
		samples = append(samples, chart.Sample{
			Date:                      date,
			ImpliedProbabilityPercent: m.implied,
			Opponent:                  m.opponent,
			Competition:               m.competition,
			MoneylineOdds:             m.odds,
			Result:                    m.result,
		})
	}
	return chart.Series{
		Name:    MatchHistoryName,
		Title:   "Manchester City implied win probability",
		Samples: samples,
	}
}
