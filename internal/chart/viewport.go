package chart

import (
	"fmt"
	"math"
)

// Point is a position in plot-area pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box given by its top-left and bottom-right corners.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Transform is a viewport transform: scale by K, then translate by (X, Y).
// It is applied to the wrapping group only; scene geometry never changes.
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the untransformed viewport.
var Identity = Transform{K: 1}

// Apply maps a content point to the screen.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to content coordinates.
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// translate moves the content by (x, y) content units.
func (t Transform) translate(x, y float64) Transform {
	if x == 0 && y == 0 {
		return t
	}
	return Transform{K: t.K, X: t.X + t.K*x, Y: t.Y + t.K*y}
}

// String renders the transform as an SVG transform attribute value.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}

// Zoom is the pan/zoom behaviour: a scale extent and a translate extent.
type Zoom struct {
	ScaleMin        float64
	ScaleMax        float64
	Extent          Rect // the visible viewport
	TranslateExtent Rect // content may not be dragged past this box
}

// NewZoom creates a zoom behaviour for a w×h plot area with scale extent
// [min, max]; both the viewport and the translate extent are the full box.
func NewZoom(w, h, min, max float64) *Zoom {
	box := Rect{Max: Point{X: w, Y: h}}
	return &Zoom{ScaleMin: min, ScaleMax: max, Extent: box, TranslateExtent: box}
}

// ClampScale limits k to the scale extent. NaN clamps to the minimum.
func (z *Zoom) ClampScale(k float64) float64 {
	if math.IsNaN(k) || k < z.ScaleMin {
		return z.ScaleMin
	}
	if k > z.ScaleMax {
		return z.ScaleMax
	}
	return k
}

// ScaleTo zooms to k keeping the content point under p fixed on screen.
func (z *Zoom) ScaleTo(t Transform, k float64, p Point) Transform {
	k = z.ClampScale(k)
	anchor := t.Invert(p)
	next := Transform{K: k, X: p.X - anchor.X*k, Y: p.Y - anchor.Y*k}
	return z.Constrain(next)
}

// ScaleBy multiplies the current zoom by factor around p.
func (z *Zoom) ScaleBy(t Transform, factor float64, p Point) Transform {
	return z.ScaleTo(t, t.K*factor, p)
}

// TranslateBy pans by (dx, dy) screen pixels.
func (z *Zoom) TranslateBy(t Transform, dx, dy float64) Transform {
	return z.Constrain(Transform{K: t.K, X: t.X + dx, Y: t.Y + dy})
}

// Constrain shifts t so the content covers the viewport within the translate
// extent. When the content is smaller than the viewport it is centred.
func (z *Zoom) Constrain(t Transform) Transform {
	if t.K == 0 {
		t = Identity
	}
	e, te := z.Extent, z.TranslateExtent
	dx0 := t.Invert(e.Min).X - te.Min.X
	dx1 := t.Invert(e.Max).X - te.Max.X
	dy0 := t.Invert(e.Min).Y - te.Min.Y
	dy1 := t.Invert(e.Max).Y - te.Max.Y
	return t.translate(settle(dx0, dx1), settle(dy0, dy1))
}

func settle(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if m := math.Min(0, d0); m != 0 {
		return m
	}
	return math.Max(0, d1)
}
