package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jrazmi/routegen/app/generators/viewgen"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watch runs generation once, then again every time the schema file or a
// template changes, until ctx is cancelled. Changes arriving within the
// debounce window collapse into one run, and runs never overlap. A failed
// run is logged and watching continues.
func (o *Orchestrator) Watch(ctx context.Context) error {
	schemaPath, _, err := o.resolvePaths()
	if err != nil {
		return err
	}
	if schemaPath, err = filepath.Abs(schemaPath); err != nil {
		return fmt.Errorf("resolve schema path: %w", err)
	}

	var templateDir string
	if o.renderer == nil {
		if templateDir, err = filepath.Abs(o.cfg.TemplateDir); err != nil {
			return fmt.Errorf("resolve template dir: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := []string{filepath.Dir(schemaPath)}
	if templateDir != "" && templateDir != dirs[0] {
		dirs = append(dirs, templateDir)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		o.log.InfoContextf(ctx, "watching %s", dir)
	}

	relevant := func(ev fsnotify.Event) bool {
		if ev.Op&relevantOps == 0 {
			return false
		}
		name := filepath.Clean(ev.Name)
		if name == schemaPath {
			return true
		}
		return templateDir != "" && filepath.Dir(name) == templateDir && filepath.Ext(name) == viewgen.TemplateExt
	}

	o.runAndLog(ctx)

	debounce := o.cfg.WatchDebounce
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevant(ev) {
				o.log.DebugContext(ctx, "change detected", "path", ev.Name, "op", ev.Op.String())
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log.WarnContext(ctx, "watcher error", "error", err)

		case <-timer.C:
			o.runAndLog(ctx)
		}
	}
}

func (o *Orchestrator) runAndLog(ctx context.Context) {
	res, err := o.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			o.log.ErrorContext(ctx, "generation failed", "error", err)
		}
		return
	}
	o.log.InfoContext(ctx, "generation finished",
		"run_id", res.RunID,
		"changed", res.Changed,
		"unchanged", res.Unchanged,
		"duration", res.Duration,
	)
}
