// Package chart renders the release-season bar chart: bars for each
// category's mean with a vertical SEM whisker, a band x-axis with rotated
// labels and a nice-rounded y-axis.
//
// The core is a pure function, Layout, from a dataset and a Config to a
// Scene (a flat, keyed element list). Everything else builds on it: the SVG
// writer, reconciliation into a Container, the interactive Session (zoom/pan
// viewport and hover tooltips) and the PNG and interactive HTML exporters.
package chart

// Config holds rendering parameters for the chart.
type Config struct {
	Width        int    // SVG width in pixels (default: 600)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 20)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	Title        string // optional chart title, drawn in the top margin

	BarFill          string  // bar fill (default: "steelblue")
	HighlightFill    string  // bar fill while hovered (default: "orange")
	ErrorStroke      string  // error whisker colour (default: "red")
	ErrorStrokeWidth float64 // error whisker width in px (default: 1.5)
	AxisColor        string  // axis line and label colour (default: "currentColor")
	FontSize         int     // axis label font size (default: 10)

	ScaleMin      float64 // lowest zoom factor (default: 1)
	ScaleMax      float64 // highest zoom factor (default: 5)
	TooltipOffset float64 // tooltip offset from the pointer in px (default: 10)
}

// DefaultConfig returns the defaults used by the site.
func DefaultConfig() Config {
	return Config{
		Width:            600,
		Height:           400,
		MarginTop:        40,
		MarginRight:      20,
		MarginBottom:     50,
		MarginLeft:       70,
		BarFill:          "steelblue",
		HighlightFill:    "orange",
		ErrorStroke:      "red",
		ErrorStrokeWidth: 1.5,
		AxisColor:        "currentColor",
		FontSize:         10,
		ScaleMin:         1,
		ScaleMax:         5,
		TooltipOffset:    10,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.MarginTop == 0 && c.MarginRight == 0 && c.MarginBottom == 0 && c.MarginLeft == 0 {
		c.MarginTop, c.MarginRight, c.MarginBottom, c.MarginLeft = d.MarginTop, d.MarginRight, d.MarginBottom, d.MarginLeft
	}
	if c.BarFill == "" {
		c.BarFill = d.BarFill
	}
	if c.HighlightFill == "" {
		c.HighlightFill = d.HighlightFill
	}
	if c.ErrorStroke == "" {
		c.ErrorStroke = d.ErrorStroke
	}
	if c.ErrorStrokeWidth == 0 {
		c.ErrorStrokeWidth = d.ErrorStrokeWidth
	}
	if c.AxisColor == "" {
		c.AxisColor = d.AxisColor
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	if c.ScaleMin == 0 {
		c.ScaleMin = d.ScaleMin
	}
	if c.ScaleMax == 0 {
		c.ScaleMax = d.ScaleMax
	}
	if c.TooltipOffset == 0 {
		c.TooltipOffset = d.TooltipOffset
	}
	return c
}

// plotArea returns the usable drawing area dimensions.
func (c Config) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}
