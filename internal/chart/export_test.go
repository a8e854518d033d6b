package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWritePlot(t *testing.T) {
	tests := []struct {
		format string
		magic  []byte
	}{
		{"png", []byte("\x89PNG")},
		{"jpg", []byte{0xff, 0xd8}},
		{"pdf", []byte("%PDF")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePlot(&buf, testDataset(), DefaultConfig(), tt.format); err != nil {
				t.Fatalf("WritePlot: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), tt.magic) {
				t.Errorf("output does not start with %q", tt.magic)
			}
		})
	}
}

func TestWritePlotErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlot(&buf, testDataset(), DefaultConfig(), "bmp"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := WritePlot(&buf, nil, DefaultConfig(), "png"); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestParseColor(t *testing.T) {
	fallback := namedColors["black"]
	if c := parseColor("#336699", fallback); c.R != 0x33 || c.G != 0x66 || c.B != 0x99 || c.A != 255 {
		t.Errorf("hex = %+v", c)
	}
	if c := parseColor("steelblue", fallback); c != namedColors["steelblue"] {
		t.Errorf("named = %+v", c)
	}
	if c := parseColor("hsl(1,2,3)", fallback); c != fallback {
		t.Errorf("unknown = %+v", c)
	}
}

func TestWriteInteractiveHTML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Title = "Mean box office by release season"
	var sb strings.Builder
	if err := WriteInteractiveHTML(&sb, testDataset(), cfg); err != nil {
		t.Fatalf("WriteInteractiveHTML: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"echarts", "Winter", "Mean + SEM", "dataZoom", cfg.Title} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
}
