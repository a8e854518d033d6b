package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/lightscameradata/boxoffice/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("dropped")
	logger.Error("error loading the data", "source", "plots_data/chart_release_season.csv")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["level"] != "ERROR" || rec["source"] != "plots_data/chart_release_season.csv" {
		t.Errorf("record: got %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("chart rendered", "bars", 4)
	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "bars=4") {
		t.Errorf("text output: got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("New with format xml should fail")
	}
	if _, err := New(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("New with level loud should fail")
	}
}
