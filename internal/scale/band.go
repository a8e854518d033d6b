package scale

import "math"

// DefaultPadding is the inner and outer band padding, as a fraction of the step.
const DefaultPadding = 0.1

// Band maps an ordered set of categories onto equal-width, non-overlapping
// bands within [R0, R1]. Domain order is first-seen order; duplicates are
// collapsed onto their first occurrence.
type Band struct {
	R0, R1       float64
	PaddingInner float64
	PaddingOuter float64
	Align        float64 // 0 = left, 0.5 = centred, 1 = right

	domain []string
	index  map[string]int

	start     float64
	step      float64
	bandwidth float64
}

// NewBand creates a band scale with equal inner and outer padding, centred in the range.
func NewBand(domain []string, r0, r1, padding float64) *Band {
	b := &Band{
		R0:           r0,
		R1:           r1,
		PaddingInner: padding,
		PaddingOuter: padding,
		Align:        0.5,
		index:        make(map[string]int, len(domain)),
	}
	for _, d := range domain {
		if _, ok := b.index[d]; ok {
			continue
		}
		b.index[d] = len(b.domain)
		b.domain = append(b.domain, d)
	}
	b.rescale()
	return b
}

func (b *Band) rescale() {
	n := float64(len(b.domain))
	r0, r1 := b.R0, b.R1
	if r1 < r0 {
		r0, r1 = r1, r0
	}
	b.step = (r1 - r0) / math.Max(1, n-b.PaddingInner+b.PaddingOuter*2)
	b.start = r0 + (r1-r0-b.step*(n-b.PaddingInner))*b.Align
	b.bandwidth = b.step * (1 - b.PaddingInner)
}

// Domain returns the categories in band order.
func (b *Band) Domain() []string {
	out := make([]string, len(b.domain))
	copy(out, b.domain)
	return out
}

// Position returns the left edge of the category's band.
func (b *Band) Position(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	if b.R1 < b.R0 {
		return b.start + b.step*float64(len(b.domain)-1-i), true
	}
	return b.start + b.step*float64(i), true
}

// Center returns the midpoint of the category's band.
func (b *Band) Center(key string) (float64, bool) {
	x, ok := b.Position(key)
	return x + b.bandwidth/2, ok
}

// Bandwidth returns the width of each band.
func (b *Band) Bandwidth() float64 { return b.bandwidth }

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return b.step }
