package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lightscameradata/boxoffice/internal/chart"
	"github.com/lightscameradata/boxoffice/internal/config"
	"github.com/lightscameradata/boxoffice/internal/dataset"
	"github.com/lightscameradata/boxoffice/pkg/models"
	"github.com/lightscameradata/boxoffice/web"
)

// --- Render Command ---

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every configured chart to files",
	Long: `Render every configured chart in each requested format.

Examples:
  boxoffice render
  boxoffice render --out dist --format svg --format png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.Render.OutputDir = out
		}
		if formats, _ := cmd.Flags().GetStringSlice("format"); len(formats) > 0 {
			cfg.Render.Formats = formats
		}

		start := time.Now()
		files, err := renderCharts(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		logger.Info("render complete", "files", len(files), "elapsed", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	renderCmd.Flags().String("out", "", "output directory (overrides render.output_dir)")
	renderCmd.Flags().StringSlice("format", nil, "formats to render: svg, png, jpg, pdf, html")
}

// renderFormats maps each output format to its writer.
var renderFormats = map[string]func(w io.Writer, ds *models.Dataset, opts chart.Config) error{
	"svg": func(w io.Writer, ds *models.Dataset, opts chart.Config) error {
		scene, err := chart.Layout(ds, opts)
		if err != nil {
			return err
		}
		return chart.WriteSVG(w, scene, chart.SVGOptions{})
	},
	"png":  plotWriter("png"),
	"jpg":  plotWriter("jpg"),
	"pdf":  plotWriter("pdf"),
	"html": func(w io.Writer, ds *models.Dataset, opts chart.Config) error { return chart.WriteInteractiveHTML(w, ds, opts) },
}

func plotWriter(format string) func(io.Writer, *models.Dataset, chart.Config) error {
	return func(w io.Writer, ds *models.Dataset, opts chart.Config) error {
		return chart.WritePlot(w, ds, opts, format)
	}
}

// renderCharts loads every configured chart once and writes it in each
// configured format to cfg.Render.OutputDir. Loads and writes run
// concurrently, bounded by cfg.Render.Concurrency. It returns the written
// paths in chart-then-format order.
func renderCharts(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, format := range cfg.Render.Formats {
		if _, ok := renderFormats[format]; !ok {
			return nil, fmt.Errorf("unknown render format %q", format)
		}
	}
	if err := os.MkdirAll(cfg.Render.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var dataFS fs.FS = web.StaticFS()
	if cfg.Data.Dir != "" {
		dataFS = os.DirFS(cfg.Data.Dir)
	}
	loader := dataset.NewLoader(dataFS, cfg.Data.FetchTimeout())

	limit := cfg.Render.Concurrency
	if limit <= 0 {
		limit = 1
	}

	// Phase 1: load each chart's data.
	datasets := make([]*models.Dataset, len(cfg.Charts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range cfg.Charts {
		i, spec := i, spec
		g.Go(func() error {
			ds, err := loader.Load(gctx, cfg.Data.Resolve(spec.Source))
			if err != nil {
				logger.Error("error loading the data", "chart", spec.Name, "source", spec.Source, "error", err)
				return fmt.Errorf("chart %s: %w", spec.Name, err)
			}
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase 2: write every chart × format.
	paths := make([]string, 0, len(cfg.Charts)*len(cfg.Render.Formats))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range cfg.Charts {
		i, spec := i, spec
		opts := cfg.Chart.Options(spec.Title)
		for _, format := range cfg.Render.Formats {
			format := format
			path := filepath.Join(cfg.Render.OutputDir, spec.Name+"."+format)
			paths = append(paths, path)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := writeChartFile(path, datasets[i], opts, format); err != nil {
					return fmt.Errorf("chart %s (%s): %w", spec.Name, format, err)
				}
				logger.Debug("chart written", "chart", spec.Name, "format", format, "path", path)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeChartFile(path string, ds *models.Dataset, opts chart.Config, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return renderFormats[format](f, ds, opts)
}
