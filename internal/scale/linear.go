// Package scale maps data values onto pixel ranges: a band scale for the
// release-season categories and a linear scale with "nice" rounding for the
// value axis. Scales are cheap and are rebuilt from the data on every layout.
package scale

import (
	"math"
	"strconv"
)

// DefaultTickCount is the tick density used for nice rounding and axis ticks.
const DefaultTickCount = 10

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear maps the continuous domain [D0, D1] onto the range [R0, R1].
// An inverted vertical axis is expressed with R0 > R1.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear creates a linear scale.
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Scale maps a domain value to the range. A degenerate domain maps to the
// midpoint of the range.
func (l *Linear) Scale(v float64) float64 {
	span := l.D1 - l.D0
	if span == 0 {
		return (l.R0 + l.R1) / 2
	}
	return l.R0 + (v-l.D0)/span*(l.R1-l.R0)
}

// Invert maps a range value back to the domain.
func (l *Linear) Invert(px float64) float64 {
	span := l.R1 - l.R0
	if span == 0 {
		return (l.D0 + l.D1) / 2
	}
	return l.D0 + (px-l.R0)/span*(l.D1-l.D0)
}

// Nice extends the domain outward so both ends fall on tick steps of the
// 1/2/5×10^k family for roughly count ticks. It returns the scale for chaining.
func (l *Linear) Nice(count int) *Linear {
	start, stop := l.D0, l.D1
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}

	prestep := math.NaN()
	for i := 0; i < 10; i++ {
		step := TickIncrement(start, stop, count)
		if step == prestep || step == 0 {
			break
		}
		if step > 0 {
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		} else {
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		}
		prestep = step
	}

	if reversed {
		start, stop = stop, start
	}
	l.D0, l.D1 = start, stop
	return l
}

// Ticks returns roughly count evenly spaced, human-readable values within the domain.
func (l *Linear) Ticks(count int) []float64 {
	start, stop := l.D0, l.D1
	if stop < start {
		start, stop = stop, start
	}
	if start == stop {
		return []float64{start}
	}

	step := TickIncrement(start, stop, count)
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil
	}

	var ticks []float64
	if step > 0 {
		i0, i1 := math.Ceil(start/step), math.Floor(stop/step)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i*step)
		}
	} else {
		inv := -step
		i0, i1 := math.Ceil(start*inv), math.Floor(stop*inv)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i/inv)
		}
	}
	return ticks
}

// TickFormat returns a formatter with just enough decimals for the tick step.
func (l *Linear) TickFormat(count int) func(float64) string {
	step := TickIncrement(math.Min(l.D0, l.D1), math.Max(l.D0, l.D1), count)
	if step < 0 {
		step = -1 / step
	}
	decimals := 0
	if step > 0 && step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
}

// TickIncrement returns the tick step for the interval. Positive results are
// the step itself; negative results encode a fractional step as -1/step so
// the arithmetic stays exact.
func TickIncrement(start, stop float64, count int) float64 {
	if count < 1 {
		count = 1
	}
	step := (stop - start) / float64(count)
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// NiceMax returns the nice upper bound of the domain [0, max]. A
// non-positive or non-finite max yields 1 so the axis never collapses.
func NiceMax(max float64) float64 {
	if !(max > 0) || math.IsInf(max, 0) {
		return 1
	}
	return NewLinear(0, max, 0, 1).Nice(DefaultTickCount).D1
}
