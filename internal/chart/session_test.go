package chart

import (
	"errors"
	"testing"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	return NewSession("s1", testDataset(), testScene(t))
}

func TestSessionPointerEvents(t *testing.T) {
	s := testSession(t)

	up, err := s.Handle(Event{Type: EventPointerEnter, Key: "bar/Winter", X: 5, Y: 6})
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if up.Tooltip == nil || !up.Tooltip.Visible || up.Fill == nil || up.Fill.Fill != "orange" {
		t.Fatalf("enter update = %+v", up)
	}
	if tt, _ := s.Tooltip("bar/Winter"); tt.State() != Visible {
		t.Errorf("winter tooltip state = %v", tt.State())
	}
	if tt, _ := s.Tooltip("bar/Summer"); tt.State() != Hidden {
		t.Errorf("summer tooltip state = %v", tt.State())
	}

	up, err = s.Handle(Event{Type: EventPointerMove, Key: "bar/Winter", X: 15, Y: 6})
	if err != nil || up.Tooltip == nil || up.Tooltip.Left != 25 || up.Fill != nil {
		t.Errorf("move update = %+v err=%v", up, err)
	}

	up, err = s.Handle(Event{Type: EventPointerLeave, Key: "bar/Winter"})
	if err != nil || up.Tooltip.Visible || up.Fill.Fill != "steelblue" {
		t.Errorf("leave update = %+v err=%v", up, err)
	}

	up, err = s.Handle(Event{Type: EventPointerMove, Key: "bar/Winter"})
	if err != nil || up.Tooltip != nil {
		t.Errorf("move while hidden = %+v err=%v", up, err)
	}
}

func TestSessionZoomEvents(t *testing.T) {
	s := testSession(t)

	up, err := s.Handle(Event{Type: EventZoom, K: 10})
	if err != nil {
		t.Fatalf("zoom: %v", err)
	}
	if up.Transform == nil || up.Transform.K != 5 || s.Transform().K != 5 {
		t.Errorf("zoom 10 = %+v", up.Transform)
	}
	if up.Attr != up.Transform.String() {
		t.Errorf("attr %q != %q", up.Attr, up.Transform.String())
	}

	if _, err := s.Handle(Event{Type: EventWheel, Factor: 0.01}); err != nil {
		t.Fatalf("wheel: %v", err)
	}
	if s.Transform().K != 1 {
		t.Errorf("wheel out = %+v, want k=1", s.Transform())
	}

	s.Handle(Event{Type: EventZoom, K: 3})
	s.Handle(Event{Type: EventPan, DX: -50})
	if s.Transform().X != -50 {
		t.Errorf("pan = %+v", s.Transform())
	}
	up, _ = s.Handle(Event{Type: EventReset})
	if *up.Transform != Identity || up.Attr != "translate(0,0) scale(1)" {
		t.Errorf("reset = %+v %q", up.Transform, up.Attr)
	}
}

func TestSessionErrors(t *testing.T) {
	s := testSession(t)
	if _, err := s.Handle(Event{Type: EventPointerEnter, Key: "bar/Monsoon"}); !errors.Is(err, ErrUnknownBar) {
		t.Errorf("unknown bar err = %v", err)
	}
	if _, err := s.Handle(Event{Type: "click"}); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("unknown event err = %v", err)
	}
}
