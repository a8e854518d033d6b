package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// PlotFormats lists the raster and print formats WritePlot accepts.
var PlotFormats = []string{"png", "jpg", "pdf"}

// errorBars adapts rows to gonum's XYer and YErrorer: x is the band index,
// y the mean and the error symmetric at sem.
type errorBars []models.SeasonStat

func (e errorBars) Len() int                        { return len(e) }
func (e errorBars) XY(i int) (float64, float64)     { return float64(i), e[i].Mean }
func (e errorBars) YError(i int) (float64, float64) { return e[i].SEM, e[i].SEM }

// WritePlot renders the chart with gonum/plot in the given format ("png",
// "jpg" or "pdf"). It uses the same nice-rounded value axis as Layout.
func WritePlot(w io.Writer, ds *models.Dataset, cfg Config, format string) error {
	cfg = cfg.withDefaults()
	scene, err := Layout(ds, cfg)
	if err != nil {
		return err
	}
	if !validPlotFormat(format) {
		return fmt.Errorf("chart: unsupported plot format %q", format)
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.Y.Label.Text = "Mean"
	p.Y.Min = 0
	p.Y.Max = scene.NiceMax

	values := make(plotter.Values, len(ds.Stats))
	for i, s := range ds.Stats {
		values[i] = math.Max(s.Mean, 0)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(scene.Bandwidth*0.75))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = parseColor(cfg.BarFill, color.RGBA{R: 70, G: 130, B: 180, A: 255})
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	whiskers, err := plotter.NewYErrorBars(errorBars(ds.Stats))
	if err != nil {
		return fmt.Errorf("error bars: %w", err)
	}
	whiskers.LineStyle.Color = parseColor(cfg.ErrorStroke, color.RGBA{R: 255, A: 255})
	whiskers.LineStyle.Width = vg.Points(cfg.ErrorStrokeWidth)
	p.Add(whiskers)

	p.NominalX(scene.Categories...)
	p.X.Tick.Label.Rotation = math.Pi / 4

	wt, err := p.WriterTo(vg.Points(float64(cfg.Width)), vg.Points(float64(cfg.Height)), format)
	if err != nil {
		return fmt.Errorf("plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

func validPlotFormat(format string) bool {
	for _, f := range PlotFormats {
		if f == format {
			return true
		}
	}
	return false
}

// namedColors covers the CSS names used by the default config.
var namedColors = map[string]color.RGBA{
	"steelblue": {R: 70, G: 130, B: 180, A: 255},
	"orange":    {R: 255, G: 165, A: 255},
	"red":       {R: 255, A: 255},
	"black":     {A: 255},
}

// parseColor understands "#rrggbb" and a few CSS names, else returns fallback.
func parseColor(s string, fallback color.RGBA) color.RGBA {
	if c, ok := namedColors[s]; ok {
		return c
	}
	var r, g, b uint8
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 255}
		}
	}
	return fallback
}
