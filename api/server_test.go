package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lightscameradata/boxoffice/internal/config"
	"github.com/lightscameradata/boxoffice/internal/dataset"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

// logRecorder keeps every log record for assertions.
type logRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *logRecorder) Enabled(context.Context, slog.Level) bool { return true }
func (h *logRecorder) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *logRecorder) WithGroup(string) slog.Handler            { return h }

func (h *logRecorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *logRecorder) errors() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Level == slog.LevelError {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			Title:         "Lights, Camera, Data!",
			Tagline:       "Lights, Camera, Data",
			RepositoryURL: "https://github.com/epfl-ada/ada-2024-project-awesometeam2024.git",
		},
		Charts: []config.ChartSpec{{
			Name:   "release_season",
			Title:  "Mean box office revenue by release season",
			Source: "plots_data/chart_release_season.csv",
		}},
		Data: config.DataConfig{FetchTimeoutSec: 2},
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return testServerWith(t, testConfig(), nil)
}

func testServerWith(t *testing.T, cfg *config.Config, h slog.Handler) *Server {
	t.Helper()
	var logger *slog.Logger
	if h != nil {
		logger = slog.New(h)
	}
	srv := NewServer(cfg, logger, "test")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.wsHub.Run(ctx)
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// ════════════════════════════════════════════════════════════════════
// APIResponse type tests
// ════════════════════════════════════════════════════════════════════

func TestAPIResponseJSON(t *testing.T) {
	tests := []struct {
		name string
		resp APIResponse
	}{
		{
			name: "success with data",
			resp: APIResponse{Success: true, Data: map[string]string{"key": "value"}},
		},
		{
			name: "error",
			resp: APIResponse{Success: false, Error: "something went wrong"},
		},
		{
			name: "success with nil data",
			resp: APIResponse{Success: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var got APIResponse
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if got.Success != tt.resp.Success {
				t.Errorf("Success: got %v, want %v", got.Success, tt.resp.Success)
			}
			if got.Error != tt.resp.Error {
				t.Errorf("Error: got %q, want %q", got.Error, tt.resp.Error)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status: got %d, want %d", path, rec.Code, http.StatusOK)
		}

		resp := decodeResponse(t, rec)
		if !resp.Success {
			t.Error("expected success=true")
		}
		data, ok := resp.Data.(map[string]interface{})
		if !ok {
			t.Fatal("data should be a map")
		}
		if data["status"] != "ok" {
			t.Errorf("status: got %q", data["status"])
		}
		if data["version"] != "test" {
			t.Errorf("version: got %v", data["version"])
		}
		for _, key := range []string{"charts", "sessions", "time"} {
			if _, ok := data[key]; !ok {
				t.Errorf("missing %s", key)
			}
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Pages
// ════════════════════════════════════════════════════════════════════

func TestPages(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		path   string
		title  string
		active string
	}{
		{"/", "Home | Lights, Camera, Data!", "Home"},
		{"/team", "Meet the Team", "Team"},
		{"/about", "About Us", "About"},
		{"/explore", "Explore Data Insights", "Explore"},
		{"/predict", "Predict Movie Success", "Predict"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, srv, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type: got %q", ct)
			}
			doc := parseHTML(t, rec)
			if got := doc.Find("title").Text(); got != tt.title {
				t.Errorf("title: got %q, want %q", got, tt.title)
			}
			if got := doc.Find("nav a.active").Text(); got != tt.active {
				t.Errorf("active nav: got %q, want %q", got, tt.active)
			}
			if href, _ := doc.Find("footer a.repo").Attr("href"); href != testConfig().Site.RepositoryURL {
				t.Errorf("repo link: got %q", href)
			}
		})
	}
}

func TestHomeRendersChart(t *testing.T) {
	srv := testServer(t)
	doc := parseHTML(t, get(t, srv, "/"))

	fig := doc.Find(`figure.chart[data-chart="release_season"]`)
	if fig.Length() != 1 {
		t.Fatalf("chart figures: got %d, want 1", fig.Length())
	}
	if fig.Find("svg#chart_release_season").Length() != 1 {
		t.Error("chart svg missing")
	}
	if n := fig.Find("rect.bar").Length(); n != 4 {
		t.Errorf("bars: got %d, want 4", n)
	}
	if n := fig.Find("line.error-line").Length(); n != 4 {
		t.Errorf("error lines: got %d, want 4", n)
	}
}

func TestHomeMissingData(t *testing.T) {
	cfg := testConfig()
	cfg.Data.Dir = t.TempDir()
	logs := &logRecorder{}
	srv := testServerWith(t, cfg, logs)

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	fig := parseHTML(t, rec).Find("figure.chart")
	if fig.Length() != 1 {
		t.Fatalf("chart figures: got %d, want 1", fig.Length())
	}
	if n := fig.Find("svg, rect, line, text").Length(); n != 0 {
		t.Errorf("failed chart drew %d elements", n)
	}
	if n := logs.errors(); n != 1 {
		t.Errorf("error records: got %d, want 1", n)
	}
}

// ════════════════════════════════════════════════════════════════════
// Chart exports
// ════════════════════════════════════════════════════════════════════

func TestChartFiles(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		file        string
		contentType string
		prefix      string
	}{
		{"release_season.svg", "image/svg+xml", "<svg"},
		{"release_season.png", "image/png", "\x89PNG"},
		{"release_season.pdf", "application/pdf", "%PDF"},
		{"release_season.html", "text/html; charset=utf-8", ""},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			rec := get(t, srv, "/charts/"+tt.file)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type: got %q, want %q", ct, tt.contentType)
			}
			if !strings.HasPrefix(rec.Body.String(), tt.prefix) {
				t.Errorf("body does not start with %q", tt.prefix)
			}
		})
	}
}

func TestChartSVGContent(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv, "/charts/release_season.svg")
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse svg: %v", err)
	}
	var seasons []string
	doc.Find("rect.bar").Each(func(_ int, s *goquery.Selection) {
		seasons = append(seasons, s.AttrOr("data-season", ""))
	})
	if strings.Join(seasons, ",") != "Winter,Spring,Summer,Fall" {
		t.Errorf("bar order: got %v", seasons)
	}
}

func TestChartInteractiveHTML(t *testing.T) {
	srv := testServer(t)
	body := get(t, srv, "/charts/release_season.html").Body.String()
	if !strings.Contains(body, "echarts") || !strings.Contains(body, "Winter") {
		t.Error("interactive export missing echarts chart")
	}
}

func TestChartFileErrors(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		path string
		code int
	}{
		{"/charts/release_season.bmp", http.StatusNotFound},
		{"/charts/release_season", http.StatusNotFound},
		{"/charts/box_office.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := get(t, srv, tt.path)
		if rec.Code != tt.code {
			t.Errorf("%s: got %d, want %d", tt.path, rec.Code, tt.code)
		}
		if resp := decodeResponse(t, rec); resp.Success || resp.Error == "" {
			t.Errorf("%s: expected error envelope, got %+v", tt.path, resp)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Chart API
// ════════════════════════════════════════════════════════════════════

type sceneResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Categories []string          `json:"categories"`
		NiceMax    float64           `json:"nice_max"`
		Elements   []json.RawMessage `json:"elements"`
	} `json:"data"`
}

func TestChartScene(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv, "/api/v1/charts/release_season")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp sceneResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if strings.Join(resp.Data.Categories, ",") != "Winter,Spring,Summer,Fall" {
		t.Errorf("categories: got %v", resp.Data.Categories)
	}
	// Summer: 68.94 + 4.05 rounds up to 80.
	if resp.Data.NiceMax != 80 {
		t.Errorf("nice_max: got %v, want 80", resp.Data.NiceMax)
	}
	if len(resp.Data.Elements) == 0 {
		t.Error("no elements")
	}
}

func TestChartSceneRemoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   int
	}{
		{"missing", http.StatusNotFound, http.StatusNotFound},
		{"server error", http.StatusInternalServerError, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer upstream.Close()

			cfg := testConfig()
			cfg.Data.BaseURL = upstream.URL
			logs := &logRecorder{}
			srv := testServerWith(t, cfg, logs)

			rec := get(t, srv, "/api/v1/charts/release_season")
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
			if n := logs.errors(); n != 1 {
				t.Errorf("error records: got %d, want 1", n)
			}
		})
	}
}

func TestChartSceneRemoteTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(1500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Data.BaseURL = upstream.URL
	cfg.Data.FetchTimeoutSec = 1
	logs := &logRecorder{}
	srv := testServerWith(t, cfg, logs)

	rec := get(t, srv, "/api/v1/charts/release_season")
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status: got %d, want %d (%s)", rec.Code, http.StatusGatewayTimeout, rec.Body.String())
	}
	if n := logs.errors(); n != 1 {
		t.Errorf("error records: got %d, want 1", n)
	}
}

func TestChartSceneRemoteOK(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plots_data/chart_release_season.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "release_season,mean,sem\nSpring,10,1\nAutumn,20,2\n")
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Data.BaseURL = upstream.URL
	srv := testServerWith(t, cfg, nil)

	var resp sceneResponse
	if err := json.NewDecoder(get(t, srv, "/api/v1/charts/release_season").Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(resp.Data.Categories, ",") != "Spring,Autumn" || resp.Data.NiceMax != 22 {
		t.Errorf("got categories %v nice_max %v", resp.Data.Categories, resp.Data.NiceMax)
	}
}

func TestListCharts(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv, "/api/v1/charts")
	var resp struct {
		Success bool        `json:"success"`
		Data    []ChartInfo `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "release_season" {
		t.Fatalf("charts: got %+v", resp.Data)
	}
	if resp.Data[0].Links["svg"] != "/charts/release_season.svg" {
		t.Errorf("svg link: got %q", resp.Data[0].Links["svg"])
	}
}

func TestGetConfig(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv, "/api/v1/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp struct {
		Data ConfigResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Sources) != 1 || resp.Data.Sources[0].Kind != config.SourceEmbedded {
		t.Errorf("sources: got %+v", resp.Data.Sources)
	}
}

func TestStaticAssets(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv, "/static/plots_data/chart_release_season.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "release_season,mean,sem") {
		t.Errorf("csv body: got %q", rec.Body.String())
	}
	if rec := get(t, srv, "/static/js/chart.js"); rec.Code != http.StatusOK {
		t.Errorf("chart.js status: got %d", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, APIResponse{
		Success: true,
		Data:    "hello",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Data != "hello" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "not found" {
		t.Errorf("error: got %q, want %q", resp.Error, "not found")
	}
}

func TestLoadErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("open: %w", dataset.ErrNotFound), http.StatusNotFound},
		{&dataset.ErrHTTP{StatusCode: 404}, http.StatusNotFound},
		{&dataset.ErrHTTP{StatusCode: 503}, http.StatusBadGateway},
		{fmt.Errorf("get: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("HTTP GET x: %w: %w", dataset.ErrFetch, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("HTTP GET x: %w: %w", dataset.ErrFetch, errors.New("connection refused")), http.StatusBadGateway},
		{errors.New("parse: bad row"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := loadErrorStatus(tt.err); got != tt.want {
			t.Errorf("loadErrorStatus(%v): got %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		in, name, ext string
	}{
		{"release_season.svg", "release_season", "svg"},
		{"a.b.png", "a.b", "png"},
		{"noext", "noext", ""},
		{".svg", ".svg", ""},
	}
	for _, tt := range tests {
		name, ext := splitExt(tt.in)
		if name != tt.name || ext != tt.ext {
			t.Errorf("splitExt(%q): got (%q, %q), want (%q, %q)", tt.in, name, ext, tt.name, tt.ext)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := NewServer(testConfig(), nil, "test")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

