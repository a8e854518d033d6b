package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// SVGOptions controls SVG output.
type SVGOptions struct {
	ID        string    // id attribute of the root <svg>; "chart_release_season" if empty
	Viewport  Transform // applied to the wrapping group; the zero value means identity
	Container string    // optional container CSS class
}

// SVG renders the scene as a standalone SVG document.
func SVG(scene *Scene, opts SVGOptions) string {
	var sb strings.Builder
	writeScene(&sb, scene, opts)
	return sb.String()
}

// WriteSVG writes the scene as SVG to w.
func WriteSVG(w io.Writer, scene *Scene, opts SVGOptions) error {
	_, err := io.WriteString(w, SVG(scene, opts))
	return err
}

func writeScene(sb *strings.Builder, scene *Scene, opts SVGOptions) {
	cfg := scene.Config
	id := opts.ID
	if id == "" {
		id = "chart_release_season"
	}
	vp := opts.Viewport
	if vp.K == 0 {
		vp = Identity
	}

	sb.WriteString(svgHeader(cfg, id, opts.Container))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text class="title" x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.AxisColor, escapeXML(cfg.Title)))
	}
	px, py, _, _ := cfg.plotArea()
	sb.WriteString(fmt.Sprintf(`<g class="plot" transform="translate(%d,%d)">`, px, py))
	sb.WriteString(fmt.Sprintf(`<g class="viewport" transform="%s">`, vp.String()))

	var axis string
	for _, e := range scene.Elements {
		if e.Axis != axis {
			if axis != "" {
				sb.WriteString(`</g>`)
			}
			if e.Axis != "" {
				sb.WriteString(fmt.Sprintf(`<g class="%s-axis" font-size="%d" font-family="sans-serif">`, e.Axis, cfg.FontSize))
			}
			axis = e.Axis
		}
		writeElement(sb, e)
	}
	if axis != "" {
		sb.WriteString(`</g>`)
	}

	sb.WriteString(`</g></g></svg>`)
}

func writeElement(sb *strings.Builder, e Element) {
	switch e.Kind {
	case KindBar:
		sb.WriteString(fmt.Sprintf(`<rect class="bar" data-key="%s" data-season="%s" x="%s" y="%s" width="%s" height="%s" style="fill: %s"/>`,
			escapeXML(e.Key), escapeXML(e.Datum), num(e.X), num(e.Y), num(e.Width), num(e.Height), escapeXML(e.Fill)))
	case KindErrorLine:
		sb.WriteString(fmt.Sprintf(`<line class="error-line" data-key="%s" data-season="%s" x1="%s" y1="%s" x2="%s" y2="%s" style="stroke: %s; stroke-width: %spx"/>`,
			escapeXML(e.Key), escapeXML(e.Datum), num(e.X1), num(e.Y1), num(e.X2), num(e.Y2), escapeXML(e.Stroke), num(e.StrokePx)))
	case KindDomain:
		sb.WriteString(fmt.Sprintf(`<line class="domain" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`,
			num(e.X1), num(e.Y1), num(e.X2), num(e.Y2), escapeXML(e.Stroke)))
	case KindTick:
		sb.WriteString(fmt.Sprintf(`<line class="tick" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`,
			num(e.X1), num(e.Y1), num(e.X2), num(e.Y2), escapeXML(e.Stroke)))
	case KindTickLabel:
		transform := ""
		if e.Rotate != 0 {
			transform = fmt.Sprintf(` transform="rotate(%d,%s,%s)"`, e.Rotate, num(e.X), num(e.Y))
		}
		dy := "0.32em"
		if e.Axis == "x" {
			dy = "0.71em"
		}
		sb.WriteString(fmt.Sprintf(`<text class="tick-label" x="%s" y="%s" dy="%s" fill="%s" text-anchor="%s"%s>%s</text>`,
			num(e.X), num(e.Y), dy, escapeXML(e.Fill), e.Anchor, transform, escapeXML(e.Text)))
	}
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg Config, id, class string) string {
	classAttr := ""
	if class != "" {
		classAttr = fmt.Sprintf(` class="%s"`, escapeXML(class))
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" id="%s"%s width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		escapeXML(id), classAttr, cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
