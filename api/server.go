// Package api provides the HTTP server for the box-office site.
//
// It serves the pages, the chart exports (SVG, PNG, JPG, PDF and interactive
// HTML), the laid-out chart scene as JSON, the embedded static assets and a
// WebSocket endpoint that drives the chart's zoom and tooltip interaction.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lightscameradata/boxoffice/internal/chart"
	"github.com/lightscameradata/boxoffice/internal/config"
	"github.com/lightscameradata/boxoffice/internal/dataset"
	"github.com/lightscameradata/boxoffice/internal/site"
	"github.com/lightscameradata/boxoffice/pkg/models"
	"github.com/lightscameradata/boxoffice/web"
)

// Server is the HTTP server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	loader  *dataset.Loader
	static  fs.FS
	logger  *slog.Logger
	wsHub   *WSHub
	version string
}

// NewServer creates a configured server with all routes and middleware.
// Chart data is read from cfg.Data.Dir when set, otherwise from the
// embedded assets.
func NewServer(cfg *config.Config, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	static := web.StaticFS()
	dataFS := static
	if cfg.Data.Dir != "" {
		dataFS = os.DirFS(cfg.Data.Dir)
	}

	srv := &Server{
		cfg:     cfg,
		loader:  dataset.NewLoader(dataFS, cfg.Data.FetchTimeout()),
		static:  static,
		logger:  logger,
		wsHub:   NewWSHub(),
		version: version,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, addr)
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	s.wsHub.Broadcast(WSMessage{Type: "shutdown"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Pages
	r.Get("/", s.handleHome)
	r.Get("/team", s.handlePage(site.TeamPage))
	r.Get("/about", s.handlePage(site.AboutPage))
	r.Get("/explore", s.handlePage(site.ExplorePage))
	r.Get("/predict", s.handlePage(site.PredictPage))

	// Chart exports
	r.Get("/charts/{file}", s.handleChartFile)

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Charts
		r.Get("/charts", s.handleListCharts)
		r.Get("/charts/{name}", s.handleChartScene)

		// Configuration
		r.Get("/config", s.handleGetConfig)

		// WebSocket interaction sessions
		r.Get("/ws/charts/{name}", s.handleChartSocket)
	})

	// Embedded assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ChartInfo describes one configured chart and its endpoints.
type ChartInfo struct {
	Name   string            `json:"name"`
	Title  string            `json:"title"`
	Source string            `json:"source"`
	Links  map[string]string `json:"links"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  s.version,
			"charts":   len(s.cfg.Charts),
			"sessions": s.wsHub.ClientCount(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handlePage(page func(site.Options) templ.Component) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templ.Handler(page(s.siteOptions())).ServeHTTP(w, r)
	}
}

// handleHome renders every configured chart into its own container. A chart
// whose data fails to load is left empty; the page itself still renders.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	embeds := make([]site.ChartEmbed, 0, len(s.cfg.Charts))
	for _, spec := range s.cfg.Charts {
		embed := site.ChartEmbed{
			Name:   spec.Name,
			Title:  spec.Title,
			Socket: "/api/v1/ws/charts/" + spec.Name,
		}
		renderer := chart.NewRenderer(s.loader, s.cfg.Chart.Options(""), s.logger)
		container := chart.NewContainer(containerID(spec.Name))
		if res, err := renderer.Render(r.Context(), container, s.cfg.Data.Resolve(spec.Source)); err == nil {
			embed.SVG = chart.SVG(res.Scene, chart.SVGOptions{ID: container.ID})
		}
		embeds = append(embeds, embed)
	}
	templ.Handler(site.Home(s.siteOptions(), embeds)).ServeHTTP(w, r)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	infos := make([]ChartInfo, 0, len(s.cfg.Charts))
	for _, spec := range s.cfg.Charts {
		infos = append(infos, ChartInfo{
			Name:   spec.Name,
			Title:  spec.Title,
			Source: spec.Source,
			Links: map[string]string{
				"scene":     "/api/v1/charts/" + spec.Name,
				"svg":       "/charts/" + spec.Name + ".svg",
				"png":       "/charts/" + spec.Name + ".png",
				"html":      "/charts/" + spec.Name + ".html",
				"websocket": "/api/v1/ws/charts/" + spec.Name,
			},
		})
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: infos})
}

func (s *Server) handleChartScene(w http.ResponseWriter, r *http.Request) {
	spec, ds, ok := s.loadChart(w, r, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	scene, err := chart.Layout(ds, s.cfg.Chart.Options(spec.Title))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: scene})
}

// handleChartFile serves /charts/{name}.{format}, e.g. release_season.png.
func (s *Server) handleChartFile(w http.ResponseWriter, r *http.Request) {
	name, format := splitExt(chi.URLParam(r, "file"))
	contentType, ok := chartContentTypes[format]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown chart format %q", format))
		return
	}
	spec, ds, ok := s.loadChart(w, r, name)
	if !ok {
		return
	}
	opts := s.cfg.Chart.Options(spec.Title)

	// Render fully before writing so a failure can still set the status.
	var buf bytes.Buffer
	var err error
	switch format {
	case "svg":
		var scene *chart.Scene
		if scene, err = chart.Layout(ds, opts); err == nil {
			err = chart.WriteSVG(&buf, scene, chart.SVGOptions{ID: containerID(spec.Name)})
		}
	case "html":
		err = chart.WriteInteractiveHTML(&buf, ds, opts)
	default:
		err = chart.WritePlot(&buf, ds, opts, format)
	}
	if err != nil {
		s.logger.Error("chart export failed", "chart", spec.Name, "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

var chartContentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"pdf":  "application/pdf",
	"html": "text/html; charset=utf-8",
}

// loadChart looks up a configured chart and loads its dataset, writing the
// error response itself when that fails.
func (s *Server) loadChart(w http.ResponseWriter, r *http.Request, name string) (config.ChartSpec, *models.Dataset, bool) {
	spec, ok := s.cfg.FindChart(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("chart %q not found", name))
		return spec, nil, false
	}
	ds, err := s.loader.Load(r.Context(), s.cfg.Data.Resolve(spec.Source))
	if err != nil {
		s.logger.Error("error loading the data", "chart", name, "source", spec.Source, "error", err)
		writeError(w, loadErrorStatus(err), err.Error())
		return spec, nil, false
	}
	return spec, ds, true
}

func (s *Server) siteOptions() site.Options {
	return site.Options{
		Tagline:       s.cfg.Site.Tagline,
		RepositoryURL: s.cfg.Site.RepositoryURL,
	}
}

// loadErrorStatus maps a dataset load failure to an HTTP status.
// Timeouts are checked before ErrFetch because the loader wraps both.
func loadErrorStatus(err error) int {
	var netErr net.Error
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return http.StatusGatewayTimeout
	case errors.Is(err, dataset.ErrFetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func splitExt(file string) (name, ext string) {
	if i := strings.LastIndexByte(file, '.'); i > 0 {
		return file[:i], file[i+1:]
	}
	return file, ""
}

func containerID(name string) string { return "chart_" + name }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
