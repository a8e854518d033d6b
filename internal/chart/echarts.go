package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// WriteInteractiveHTML renders a self-contained ECharts page for ds: bars of
// the mean with whisker end markers at mean ± sem, an axis tooltip and
// wheel/drag zoom along the category axis.
func WriteInteractiveHTML(w io.Writer, ds *models.Dataset, cfg Config) error {
	cfg = cfg.withDefaults()
	scene, err := Layout(ds, cfg)
	if err != nil {
		return err
	}
	title := cfg.Title
	if title == "" {
		title = "Release season"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%dpx", cfg.Width),
			Height:    fmt.Sprintf("%dpx", cfg.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min: 0,
			Max: scene.NiceMax,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "inside",
			Start: 0,
			End:   100,
		}),
	)

	means := make([]opts.BarData, len(ds.Stats))
	upper := make([]opts.ScatterData, len(ds.Stats))
	lower := make([]opts.ScatterData, len(ds.Stats))
	for i, s := range ds.Stats {
		means[i] = opts.BarData{
			Name:      s.ReleaseSeason,
			Value:     s.Mean,
			ItemStyle: &opts.ItemStyle{Color: cfg.BarFill},
		}
		upper[i] = opts.ScatterData{Name: s.ReleaseSeason, Value: s.Upper(), Symbol: "rect", SymbolSize: 8}
		lower[i] = opts.ScatterData{Name: s.ReleaseSeason, Value: s.Lower(), Symbol: "rect", SymbolSize: 8}
	}
	bar.SetXAxis(scene.Categories).AddSeries("Mean", means)

	whiskers := charts.NewScatter()
	whiskers.SetXAxis(scene.Categories).
		AddSeries("Mean + SEM", upper, charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.ErrorStroke})).
		AddSeries("Mean - SEM", lower, charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.ErrorStroke}))
	bar.Overlap(whiskers)

	return bar.Render(w)
}
