package chart

import (
	"math"
	"slices"

	"github.com/match-odds-chart/internal/config"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// YTick is a gridline value and the pixel row it maps to.
type YTick struct {
	Value    float64 `json:"value"`
	PixelRow float64 `json:"pixel_row"`
}

// MaxTickCount bounds the target tick count. Ticks accepts twice that so
// NiceTicks can try coarser and finer targets around it.
const MaxTickCount = config.MaxTickCount

// Ticks returns about count round values (multiples of 1, 2 or 5 times a
// power of ten) covering [start, stop] without leaving it.
func Ticks(start, stop float64, count int) []float64 {
	count = min(count, 2*MaxTickCount)
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) || math.IsInf(start, 0) || math.IsInf(stop, 0) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}

	n := int(i2-i1) + 1
	ticks := make([]float64, n)
	for i := range ticks {
		if inc < 0 {
			ticks[i] = (i1 + float64(i)) / -inc
		} else {
			ticks[i] = (i1 + float64(i)) * inc
		}
	}
	if reverse {
		slices.Reverse(ticks)
	}
	return ticks
}

// tickSpec returns the first and last tick index and the increment. A
// negative increment means ticks are index / -inc, which keeps sub-unit steps
// exact.
func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// NiceTicks returns the round tick set whose length is closest to count.
// Round steps only come in 1, 2 and 5 times a power of ten, so a single call
// to Ticks can land well away from the target; the candidates are Ticks for
// every target in [1, 2*count], tried nearest first, and a later candidate
// wins only when it is strictly closer.
func NiceTicks(start, stop float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	count = min(count, MaxTickCount)

	best := Ticks(start, stop, count)
	for d := 1; d < count && distance(best, count) > 0; d++ {
		for _, c := range []int{count - d, count + d} {
			if ticks := Ticks(start, stop, c); distance(ticks, count) < distance(best, count) {
				best = ticks
			}
		}
	}
	if ticks := Ticks(start, stop, 2*count); distance(ticks, count) < distance(best, count) {
		best = ticks
	}
	return best
}

func distance(ticks []float64, count int) int {
	d := len(ticks) - count
	if d < 0 {
		return -d
	}
	return d
}

// ComputeYAxisTicks places gridline ticks for the scale's domain. An undefined
// scale yields no ticks.
func ComputeYAxisTicks(y LinearScale, count int) []YTick {
	if !y.Defined {
		return []YTick{}
	}

	lo, hi := y.Domain[0], y.Domain[1]
	if hi < lo {
		lo, hi = hi, lo
	}

	values := NiceTicks(lo, hi, count)
	ticks := make([]YTick, 0, len(values))
	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		ticks = append(ticks, YTick{Value: v, PixelRow: y.Map(v)})
	}
	return ticks
}
