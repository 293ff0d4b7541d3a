package viewgen

import (
	"context"

	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/app/generators/schema"
)

// Config controls a generation pass.
type Config struct {
	OutputRoot string
	Extension  string
	Workers    int
	DryRun     bool
	Notify     Notifier
}

// Result summarizes a generation pass.
type Result struct {
	Plan     Plan
	Rendered int
	Written  int
}

// Generate renders every view of every model, reconciles the renderings
// against prev and writes the changed artifacts. On success the returned
// Result carries the manifest to persist. A render failure returns before
// anything is written; a write failure returns the partial Result so the
// caller can report it, but the manifest must not be saved.
func Generate(ctx context.Context, models []schema.Model, r Renderer, prev manifest.Manifest, cfg Config) (*Result, error) {
	renderings, err := RenderAll(ctx, models, r, cfg.Workers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Plan:     Reconcile(renderings, prev),
		Rendered: len(renderings),
	}

	applier := Applier{
		Root:      cfg.OutputRoot,
		Extension: cfg.Extension,
		DryRun:    cfg.DryRun,
		Notify:    cfg.Notify,
	}
	res.Written, err = applier.Apply(ctx, res.Plan)
	if err != nil {
		return res, err
	}
	return res, nil
}
