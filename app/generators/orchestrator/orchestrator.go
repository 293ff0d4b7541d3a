// Package orchestrator drives a complete generation run: it locates the
// schema and the output root, parses the schema, loads the manifest, renders
// and writes the views and saves the new manifest.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jrazmi/routegen/app/generators/config"
	"github.com/jrazmi/routegen/app/generators/discovery"
	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/app/generators/schema"
	"github.com/jrazmi/routegen/app/generators/viewgen"
	"github.com/jrazmi/routegen/infrastructure/postgresdb"
	"github.com/jrazmi/routegen/sdk/logger"
	"github.com/jrazmi/routegen/sdk/telemetry"
)

// DBEnvPrefix namespaces the pool settings used with a manifest database.
const DBEnvPrefix = "ROUTEGEN_DB"

// Result holds the outcome of one run.
type Result struct {
	RunID            string
	SchemaPath       string
	OutputRoot       string
	ManifestLocation string
	DryRun           bool
	Models           int
	Rendered         int
	Changed          int
	Unchanged        int
	Written          int
	Events           []viewgen.Event
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	Warnings         []string
}

// StoreOpener opens the manifest store for an output root. The returned
// close function is always non-nil on success.
type StoreOpener func(ctx context.Context, root string) (manifest.Store, func(), error)

// Orchestrator runs generation for one configuration.
type Orchestrator struct {
	cfg         config.Config
	log         *logger.Logger
	workDir     string
	findSchema  discovery.Lookup
	findAppRoot discovery.Lookup
	openStore   StoreOpener
	renderer    viewgen.Renderer
	onRun       func(*Result, error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkDir sets the directory discovery starts from.
func WithWorkDir(dir string) Option {
	return func(o *Orchestrator) {
		o.workDir = dir
	}
}

// WithDiscovery replaces the schema and app root lookups.
func WithDiscovery(findSchema, findAppRoot discovery.Lookup) Option {
	return func(o *Orchestrator) {
		o.findSchema = findSchema
		o.findAppRoot = findAppRoot
	}
}

// WithStoreOpener replaces the manifest store selection.
func WithStoreOpener(open StoreOpener) Option {
	return func(o *Orchestrator) {
		o.openStore = open
	}
}

// WithRenderer replaces the template renderer.
func WithRenderer(r viewgen.Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = r
	}
}

// WithRunHook is called after every run, including the runs of Watch.
func WithRunHook(fn func(*Result, error)) Option {
	return func(o *Orchestrator) {
		o.onRun = fn
	}
}

// New creates an Orchestrator for cfg.
func New(cfg config.Config, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		log:         log,
		workDir:     ".",
		findSchema:  discovery.FindSchema,
		findAppRoot: discovery.FindAppRoot,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.NewDiscard()
	}
	if o.openStore == nil {
		o.openStore = o.defaultStore
	}
	return o
}

// Run performs one generation run.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	ctx = telemetry.WithRunID(ctx)
	res, err := o.run(ctx)
	if o.onRun != nil {
		o.onRun(res, err)
	}
	return res, err
}

func (o *Orchestrator) run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     telemetry.RunID(ctx),
		DryRun:    o.cfg.DryRun,
		StartTime: time.Now(),
	}
	defer func() {
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
	}()
	log := o.log.With("run_id", res.RunID)

	schemaPath, outputRoot, err := o.resolvePaths()
	if err != nil {
		return res, err
	}
	res.SchemaPath, res.OutputRoot = schemaPath, outputRoot

	models, err := schema.ParseFile(schemaPath)
	if err != nil {
		return res, err
	}
	res.Models = len(models)
	if len(models) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("no models found in %s", schemaPath))
	}
	log.InfoContext(ctx, "schema parsed", "path", schemaPath, "models", len(models))

	if !o.cfg.DryRun {
		lock, err := manifest.AcquireLock(ctx, outputRoot, "routegen "+res.RunID, o.cfg.LockTimeout)
		if err != nil {
			return res, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.WarnContext(ctx, "release lock", "path", lock.Path(), "error", err)
			}
		}()
	}

	store, closeStore, err := o.openStore(ctx, outputRoot)
	if err != nil {
		return res, fmt.Errorf("open manifest store: %w", err)
	}
	defer closeStore()
	res.ManifestLocation = store.Location()

	prev := store.Load(ctx)

	renderer := o.renderer
	if renderer == nil {
		renderer = viewgen.NewTemplateRenderer(o.cfg.TemplateDir)
	}

	gen, err := viewgen.Generate(ctx, models, renderer, prev, viewgen.Config{
		OutputRoot: outputRoot,
		Extension:  o.cfg.Extension,
		Workers:    o.cfg.Concurrency,
		DryRun:     o.cfg.DryRun,
		Notify: func(ctx context.Context, ev viewgen.Event) {
			res.Events = append(res.Events, ev)
			msg := "view unchanged"
			if ev.Changed {
				msg = "view changed"
			}
			log.InfoContext(ctx, msg, "model", ev.Model, "view", string(ev.ViewType), "path", ev.Path, "hash", ev.Hash)
		},
	})
	if gen != nil {
		res.Rendered = gen.Rendered
		res.Changed = gen.Plan.Changed()
		res.Unchanged = gen.Rendered - res.Changed
		res.Written = gen.Written
	}
	if err != nil {
		return res, err
	}

	if o.cfg.DryRun {
		return res, nil
	}
	if err := store.Save(ctx, gen.Plan.Manifest); err != nil {
		return res, err
	}
	log.InfoContext(ctx, "manifest saved", "location", res.ManifestLocation, "entries", gen.Plan.Manifest.Len())
	return res, nil
}

func (o *Orchestrator) resolvePaths() (schemaPath, outputRoot string, err error) {
	schemaPath, err = discovery.Resolve(o.cfg.SchemaPath, o.workDir, o.findSchema, discovery.ErrSchemaNotFound)
	if err != nil {
		return "", "", fmt.Errorf("locate schema from %s: %w", o.workDir, err)
	}
	outputRoot, err = discovery.Resolve(o.cfg.OutputDir, o.workDir, o.findAppRoot, discovery.ErrAppRootNotFound)
	if err != nil {
		return "", "", fmt.Errorf("locate app root from %s: %w", o.workDir, err)
	}
	if abs, err := filepath.Abs(outputRoot); err == nil {
		outputRoot = abs
	}
	return schemaPath, outputRoot, nil
}

func (o *Orchestrator) defaultStore(ctx context.Context, root string) (manifest.Store, func(), error) {
	if o.cfg.ManifestDSN == "" {
		store := manifest.NewFileStore(root,
			manifest.WithFileName(o.cfg.ManifestName()),
			manifest.WithLogger(o.log.Logger),
		)
		return store, func() {}, nil
	}

	opts := []postgresdb.Option{postgresdb.WithLogger(o.log.Logger)}
	if o.cfg.Concurrency > 0 {
		opts = append(opts, postgresdb.WithMaxConns(o.cfg.Concurrency))
	}
	pool, err := postgresdb.New(DBEnvPrefix, o.cfg.ManifestDSN, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := postgresdb.Migrate(ctx, pool, o.log.Logger); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return manifest.NewPostgresStore(pool, root, o.log.Logger), pool.Close, nil
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
