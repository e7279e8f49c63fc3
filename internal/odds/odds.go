// Package odds converts bookmaker price quotes into implied win probabilities.
package odds

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrUnparseable = errors.New("unparseable odds")

type Kind string

const (
	KindAmerican   Kind = "american"
	KindFractional Kind = "fractional"
	KindDecimal    Kind = "decimal"
)

// Odds is a single price normalised to decimal odds (stake included).
type Odds struct {
	Kind    Kind    `json:"kind"`
	Decimal float64 `json:"decimal"`
}

// ImpliedProbability returns 1/decimal in [0, 1].
func (o Odds) ImpliedProbability() float64 {
	if o.Decimal <= 0 {
		return 0
	}
	return math.Min(1.0, math.Max(0.0, 1.0/o.Decimal))
}

// Quote is one or more prices for the same outcome, e.g. "-375 to -435".
type Quote struct {
	Prices []Odds `json:"prices"`
	Note   string `json:"note,omitempty"`
}

// ImpliedProbability averages the implied probability of every price in the quote.
func (q Quote) ImpliedProbability() float64 {
	if len(q.Prices) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range q.Prices {
		sum += p.ImpliedProbability()
	}
	return sum / float64(len(q.Prices))
}

// ParseQuote reads free-form moneyline text such as "-450 (Estimate)",
// "3/5 (Fractional, approx. -166)", "+102 (or 19/20)" or "-107 to 9/10".
// Parenthesised annotations are kept as Note and never parsed as prices.
// Every price of a range must be a single token joined by the word "to".
func ParseQuote(text string) (Quote, error) {
	body, note := splitNote(text)
	if body == "" {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}

	q := Quote{Note: note}
	expectPrice := true
	for _, field := range strings.Fields(body) {
		if !expectPrice {
			if !strings.EqualFold(field, "to") {
				return Quote{}, fmt.Errorf("%w: %q", ErrUnparseable, text)
			}
			expectPrice = true
			continue
		}
		o, err := Parse(field)
		if err != nil {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnparseable, text)
		}
		q.Prices = append(q.Prices, o)
		expectPrice = false
	}
	// Dangling "to"
	if expectPrice {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	return q, nil
}

// ImpliedPercent is ParseQuote followed by ImpliedProbability, scaled to 0-100.
func ImpliedPercent(text string) (float64, error) {
	q, err := ParseQuote(text)
	if err != nil {
		return 0, err
	}
	return q.ImpliedProbability() * 100, nil
}

// Parse reads a single price token: American ("-375", "+102"), fractional
// ("3/5") or decimal ("1.25").
func Parse(token string) (Odds, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Odds{}, fmt.Errorf("%w: empty price", ErrUnparseable)
	}

	if num, den, ok := strings.Cut(token, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || n < 0 || d <= 0 {
			return Odds{}, fmt.Errorf("%w: %q", ErrUnparseable, token)
		}
		return Odds{Kind: KindFractional, Decimal: 1 + n/d}, nil
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Odds{}, fmt.Errorf("%w: %q", ErrUnparseable, token)
	}

	signed := token[0] == '+' || token[0] == '-'
	switch {
	case signed || math.Abs(v) >= 100:
		if math.Abs(v) < 100 {
			return Odds{}, fmt.Errorf("%w: american price %q below 100", ErrUnparseable, token)
		}
		if v < 0 {
			return Odds{Kind: KindAmerican, Decimal: 1 + 100/-v}, nil
		}
		return Odds{Kind: KindAmerican, Decimal: 1 + v/100}, nil
	case v > 1:
		return Odds{Kind: KindDecimal, Decimal: v}, nil
	}
	return Odds{}, fmt.Errorf("%w: %q", ErrUnparseable, token)
}

func splitNote(text string) (body, note string) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return text, ""
	}
	body = strings.TrimSpace(text[:open])
	note = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text[open+1:]), ")"))
	return body, note
}
