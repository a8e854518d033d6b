package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// ErrDetached is returned when the container was torn down before the load finished.
var ErrDetached = errors.New("chart: container detached")

// DatasetLoader fetches a dataset by source path or URL.
type DatasetLoader interface {
	Load(ctx context.Context, source string) (*models.Dataset, error)
}

// Renderer loads a dataset and mounts its chart into a container.
type Renderer struct {
	loader DatasetLoader
	cfg    Config
	logger *slog.Logger
}

// NewRenderer creates a renderer. A nil logger discards diagnostics.
func NewRenderer(loader DatasetLoader, cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{loader: loader, cfg: cfg.withDefaults(), logger: logger}
}

// Config returns the renderer's effective chart configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Result is a completed render.
type Result struct {
	Dataset *models.Dataset
	Scene   *Scene
	Patch   Patch
}

// Render loads source and mounts the chart into c. A failed load is reported
// once on the logger and leaves c untouched: there is no retry and no
// fallback chart. If c is detached (or ctx done) by the time the load
// resolves, nothing is drawn.
func (r *Renderer) Render(ctx context.Context, c *Container, source string) (*Result, error) {
	ds, err := r.loader.Load(ctx, source)
	if err != nil {
		r.logger.Error("error loading the data", "source", source, "error", err)
		return nil, err
	}
	if !c.Attached() || ctx.Err() != nil {
		r.logger.Debug("container gone before load completed; skipping render", "container", c.ID, "source", source)
		return nil, ErrDetached
	}

	scene, err := Layout(ds, r.cfg)
	if err != nil {
		r.logger.Error("chart layout failed", "source", source, "error", err)
		return nil, fmt.Errorf("layout %s: %w", source, err)
	}
	p := Mount(c, scene)
	r.logger.Debug("chart rendered", "container", c.ID, "source", source,
		"bars", scene.Count(KindBar), "created", len(p.Create), "updated", len(p.Update), "removed", len(p.Remove))
	return &Result{Dataset: ds, Scene: scene, Patch: p}, nil
}
