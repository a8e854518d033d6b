package chart

import (
	"errors"
	"fmt"

	"github.com/lightscameradata/boxoffice/internal/scale"
	"github.com/lightscameradata/boxoffice/pkg/models"
)

// ErrNoData is returned when there is nothing to lay out.
var ErrNoData = errors.New("chart: no data")

// ErrInvalidSize is returned when the margins leave no room to plot.
var ErrInvalidSize = errors.New("chart: plot area is empty")

// Kind classifies scene elements.
type Kind string

const (
	KindBar       Kind = "bar"
	KindErrorLine Kind = "error-line"
	KindDomain    Kind = "domain"
	KindTick      Kind = "tick"
	KindTickLabel Kind = "tick-label"
)

// Axis tick geometry.
const (
	tickSize    = 6
	tickPadding = 3
	labelAngle  = -45
)

// Element is one drawing primitive. Rect fields (X, Y, Width, Height) are
// used by bars; line fields (X1..Y2) by whiskers, domains and ticks; X, Y and
// Text by labels. All coordinates are relative to the plot area.
type Element struct {
	Key   string `json:"key"`
	Kind  Kind   `json:"kind"`
	Axis  string `json:"axis,omitempty"`  // "x" or "y" for axis parts
	Datum string `json:"datum,omitempty"` // bound release season

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	Text     string  `json:"text,omitempty"`
	Anchor   string  `json:"anchor,omitempty"`
	Rotate   int     `json:"rotate,omitempty"`
	Fill     string  `json:"fill,omitempty"`
	Stroke   string  `json:"stroke,omitempty"`
	StrokePx float64 `json:"stroke_px,omitempty"`
}

// Scene is the laid-out chart: scales summarised plus the element list.
type Scene struct {
	Config     Config    `json:"-"`
	PlotWidth  float64   `json:"plot_width"`
	PlotHeight float64   `json:"plot_height"`
	Categories []string  `json:"categories"`
	Bandwidth  float64   `json:"bandwidth"`
	NiceMax    float64   `json:"nice_max"`
	Ticks      []float64 `json:"ticks"`
	Elements   []Element `json:"elements"`
}

// Count returns the number of elements of a kind.
func (s *Scene) Count(kind Kind) int {
	n := 0
	for _, e := range s.Elements {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Find returns the element with the given key.
func (s *Scene) Find(key string) (Element, bool) {
	for _, e := range s.Elements {
		if e.Key == key {
			return e, true
		}
	}
	return Element{}, false
}

// BarKey and ErrorLineKey name the elements bound to a release season.
func BarKey(season string) string       { return string(KindBar) + "/" + season }
func ErrorLineKey(season string) string { return string(KindErrorLine) + "/" + season }

// Layout computes the chart for ds. It is pure: the same dataset and config
// always produce the same scene. Scales are rebuilt from the data each call.
func Layout(ds *models.Dataset, cfg Config) (*Scene, error) {
	if ds == nil || len(ds.Stats) == 0 {
		return nil, ErrNoData
	}
	cfg = cfg.withDefaults()
	_, _, pw, ph := cfg.plotArea()
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("%w: %dx%d with margins %d/%d/%d/%d", ErrInvalidSize,
			cfg.Width, cfg.Height, cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft)
	}
	w, h := float64(pw), float64(ph)

	x := scale.NewBand(ds.Categories(), 0, w, scale.DefaultPadding)
	niceMax := scale.NiceMax(ds.MaxUpper())
	y := scale.NewLinear(0, niceMax, h, 0)
	ticks := y.Ticks(scale.DefaultTickCount)
	format := y.TickFormat(scale.DefaultTickCount)

	scene := &Scene{
		Config:     cfg,
		PlotWidth:  w,
		PlotHeight: h,
		Categories: x.Domain(),
		Bandwidth:  x.Bandwidth(),
		NiceMax:    niceMax,
		Ticks:      ticks,
	}
	els := make([]Element, 0, 4*len(ds.Stats)+2*len(ticks)+2)

	// X axis along the baseline; labels rotated so long names do not collide.
	els = append(els, Element{
		Key: "x-domain", Kind: KindDomain, Axis: "x",
		X1: 0, Y1: h, X2: w, Y2: h, Stroke: cfg.AxisColor,
	})
	for _, season := range scene.Categories {
		cx, _ := x.Center(season)
		els = append(els,
			Element{
				Key: "x-tick/" + season, Kind: KindTick, Axis: "x", Datum: season,
				X1: cx, Y1: h, X2: cx, Y2: h + tickSize, Stroke: cfg.AxisColor,
			},
			Element{
				Key: "x-label/" + season, Kind: KindTickLabel, Axis: "x", Datum: season,
				X: cx, Y: h + tickSize + tickPadding, Text: season,
				Anchor: "end", Rotate: labelAngle, Fill: cfg.AxisColor,
			},
		)
	}

	els = append(els, Element{
		Key: "y-domain", Kind: KindDomain, Axis: "y",
		X1: 0, Y1: 0, X2: 0, Y2: h, Stroke: cfg.AxisColor,
	})
	for _, v := range ticks {
		label := format(v)
		ty := y.Scale(v)
		els = append(els,
			Element{
				Key: "y-tick/" + label, Kind: KindTick, Axis: "y",
				X1: -tickSize, Y1: ty, X2: 0, Y2: ty, Stroke: cfg.AxisColor,
			},
			Element{
				Key: "y-label/" + label, Kind: KindTickLabel, Axis: "y",
				X: -(tickSize + tickPadding), Y: ty, Text: label,
				Anchor: "end", Fill: cfg.AxisColor,
			},
		)
	}

	for _, s := range ds.Stats {
		bx, _ := x.Position(s.ReleaseSeason)
		top := y.Scale(s.Mean)
		height := h - top
		if height < 0 {
			// Negative means fall below the zero baseline; draw nothing.
			top, height = h, 0
		}
		els = append(els, Element{
			Key: BarKey(s.ReleaseSeason), Kind: KindBar, Datum: s.ReleaseSeason,
			X: bx, Y: top, Width: x.Bandwidth(), Height: height,
			Fill: cfg.BarFill,
		})
	}

	for _, s := range ds.Stats {
		cx, _ := x.Center(s.ReleaseSeason)
		els = append(els, Element{
			Key: ErrorLineKey(s.ReleaseSeason), Kind: KindErrorLine, Datum: s.ReleaseSeason,
			X1: cx, Y1: y.Scale(s.Upper()), X2: cx, Y2: y.Scale(s.Lower()),
			Stroke: cfg.ErrorStroke, StrokePx: cfg.ErrorStrokeWidth,
		})
	}

	scene.Elements = els
	return scene, nil
}
