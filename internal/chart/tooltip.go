package chart

import (
	"strconv"
	"strings"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// TooltipState is the per-bar tooltip state.
type TooltipState int

const (
	Hidden TooltipState = iota
	Visible
)

func (s TooltipState) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// TooltipUpdate is the style change for the shared tooltip element.
type TooltipUpdate struct {
	Visible bool     `json:"visible"`
	Left    float64  `json:"left,omitempty"` // px, absolute
	Top     float64  `json:"top,omitempty"`  // px, absolute
	Lines   []string `json:"lines,omitempty"`
}

// Text joins the tooltip lines.
func (u TooltipUpdate) Text() string { return strings.Join(u.Lines, "\n") }

// FillUpdate recolours one bar.
type FillUpdate struct {
	Key  string `json:"key"`
	Fill string `json:"fill"`
}

// Tooltip drives hover behaviour for one bar:
// Hidden -> Visible on enter, Visible -> Visible on move, Visible -> Hidden on leave.
// Handlers only compute presentation updates; the bound row is never modified.
type Tooltip struct {
	stat      models.SeasonStat
	key       string
	offset    float64
	baseFill  string
	highlight string
	state     TooltipState
}

// NewTooltip creates a hidden tooltip for the bar bound to stat.
func NewTooltip(stat models.SeasonStat, cfg Config) *Tooltip {
	cfg = cfg.withDefaults()
	return &Tooltip{
		stat:      stat,
		key:       BarKey(stat.ReleaseSeason),
		offset:    cfg.TooltipOffset,
		baseFill:  cfg.BarFill,
		highlight: cfg.HighlightFill,
	}
}

// State returns the current state.
func (t *Tooltip) State() TooltipState { return t.state }

// Enter shows the tooltip at the pointer and highlights the bar.
func (t *Tooltip) Enter(p Point) (TooltipUpdate, FillUpdate) {
	t.state = Visible
	return t.visibleAt(p), FillUpdate{Key: t.key, Fill: t.highlight}
}

// Move repositions a visible tooltip. It reports false, and changes nothing,
// when the tooltip is hidden.
func (t *Tooltip) Move(p Point) (TooltipUpdate, bool) {
	if t.state != Visible {
		return TooltipUpdate{}, false
	}
	return t.visibleAt(p), true
}

// Leave hides the tooltip and restores the bar fill.
func (t *Tooltip) Leave() (TooltipUpdate, FillUpdate) {
	t.state = Hidden
	return TooltipUpdate{Visible: false}, FillUpdate{Key: t.key, Fill: t.baseFill}
}

func (t *Tooltip) visibleAt(p Point) TooltipUpdate {
	return TooltipUpdate{
		Visible: true,
		Left:    p.X + t.offset,
		Top:     p.Y + t.offset,
		Lines:   TooltipLines(t.stat),
	}
}

// TooltipLines formats the tooltip content for a row.
func TooltipLines(s models.SeasonStat) []string {
	return []string{
		"Release season: " + s.ReleaseSeason,
		"Mean: " + formatValue(s.Mean),
		"SEM: " + formatValue(s.SEM),
	}
}

// formatValue prints a value in its shortest exact form.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
