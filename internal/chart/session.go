package chart

import (
	"errors"
	"fmt"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// ErrUnknownBar is returned for pointer events on a key with no bar.
var ErrUnknownBar = errors.New("chart: unknown bar")

// ErrUnknownEvent is returned for unsupported event types.
var ErrUnknownEvent = errors.New("chart: unknown event type")

// EventType names an interaction event.
type EventType string

const (
	EventPointerEnter EventType = "pointerenter"
	EventPointerMove  EventType = "pointermove"
	EventPointerLeave EventType = "pointerleave"
	EventZoom         EventType = "zoom"  // absolute scale K around (X, Y)
	EventWheel        EventType = "wheel" // relative scale Factor around (X, Y)
	EventPan          EventType = "pan"   // drag by (DX, DY)
	EventReset        EventType = "reset"
)

// Event is one pointer or zoom gesture. X/Y are page coordinates for pointer
// events and plot-area coordinates for zoom events.
type Event struct {
	Type   EventType `json:"type"`
	Key    string    `json:"key,omitempty"` // bar key for pointer events
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	K      float64   `json:"k,omitempty"`
	Factor float64   `json:"factor,omitempty"`
	DX     float64   `json:"dx,omitempty"`
	DY     float64   `json:"dy,omitempty"`
}

// Update is the presentation change produced by one event.
type Update struct {
	Tooltip   *TooltipUpdate `json:"tooltip,omitempty"`
	Fill      *FillUpdate    `json:"fill,omitempty"`
	Transform *Transform     `json:"transform,omitempty"`
	Attr      string         `json:"attr,omitempty"` // viewport transform attribute
}

// Session is the interactive overlay for one mounted chart: one viewport and
// one tooltip per bar. It is not safe for concurrent use; each session is
// driven by a single event loop.
type Session struct {
	ID        string
	scene     *Scene
	zoom      *Zoom
	transform Transform
	tooltips  map[string]*Tooltip
}

// NewSession creates an overlay for scene, which must have been laid out from ds.
func NewSession(id string, ds *models.Dataset, scene *Scene) *Session {
	cfg := scene.Config
	s := &Session{
		ID:        id,
		scene:     scene,
		zoom:      NewZoom(scene.PlotWidth, scene.PlotHeight, cfg.ScaleMin, cfg.ScaleMax),
		transform: Identity,
		tooltips:  make(map[string]*Tooltip, len(ds.Stats)),
	}
	for _, stat := range ds.Stats {
		s.tooltips[BarKey(stat.ReleaseSeason)] = NewTooltip(stat, cfg)
	}
	return s
}

// Transform returns the current viewport transform.
func (s *Session) Transform() Transform { return s.transform }

// Tooltip returns the tooltip bound to a bar key.
func (s *Session) Tooltip(key string) (*Tooltip, bool) {
	t, ok := s.tooltips[key]
	return t, ok
}

// Handle applies one event and returns the resulting update.
func (s *Session) Handle(ev Event) (Update, error) {
	switch ev.Type {
	case EventPointerEnter, EventPointerMove, EventPointerLeave:
		return s.handlePointer(ev)
	case EventZoom:
		return s.setTransform(s.zoom.ScaleTo(s.transform, ev.K, Point{X: ev.X, Y: ev.Y})), nil
	case EventWheel:
		return s.setTransform(s.zoom.ScaleBy(s.transform, ev.Factor, Point{X: ev.X, Y: ev.Y})), nil
	case EventPan:
		return s.setTransform(s.zoom.TranslateBy(s.transform, ev.DX, ev.DY)), nil
	case EventReset:
		return s.setTransform(Identity), nil
	}
	return Update{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
}

func (s *Session) handlePointer(ev Event) (Update, error) {
	tt, ok := s.tooltips[ev.Key]
	if !ok {
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownBar, ev.Key)
	}
	p := Point{X: ev.X, Y: ev.Y}
	switch ev.Type {
	case EventPointerEnter:
		tip, fill := tt.Enter(p)
		return Update{Tooltip: &tip, Fill: &fill}, nil
	case EventPointerMove:
		tip, moved := tt.Move(p)
		if !moved {
			return Update{}, nil
		}
		return Update{Tooltip: &tip}, nil
	default:
		tip, fill := tt.Leave()
		return Update{Tooltip: &tip, Fill: &fill}, nil
	}
}

func (s *Session) setTransform(t Transform) Update {
	s.transform = t
	return Update{Transform: &t, Attr: t.String()}
}
