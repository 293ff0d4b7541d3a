// Package viewgen renders the fixed set of views for every model and writes
// only the artifacts whose content changed since the last recorded run.
//
// A run is split in three steps:
//
//  1. RenderAll renders every (model, view type) pair, concurrently but into
//     a deterministic order. Any template failure aborts before a single
//     artifact is touched.
//  2. Reconcile compares each fingerprint with the previous manifest and
//     builds the next manifest. It is a pure function.
//  3. Apply writes the changed artifacts in order.
package viewgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/app/generators/schema"
	"github.com/jrazmi/routegen/sdk/atomicfile"
	"golang.org/x/sync/errgroup"
)

// RoutesDir is the directory under the output root holding generated views.
const RoutesDir = "routes"

// Rendering is the rendered content of one (model, view type) pair.
type Rendering struct {
	Model    string
	ViewType manifest.ViewType
	Content  string
	Hash     string
}

// Decision is the outcome of reconciling one rendering.
type Decision struct {
	Rendering
	PreviousHash string // empty when the pair was never generated
	Changed      bool
}

// Plan is the result of Reconcile.
type Plan struct {
	Decisions []Decision
	Manifest  manifest.Manifest // exactly covers the rendered pairs
}

// Changed returns the number of decisions that require a write.
func (p Plan) Changed() int {
	n := 0
	for _, d := range p.Decisions {
		if d.Changed {
			n++
		}
	}
	return n
}

// Event is emitted once per pair as it is written or skipped.
type Event struct {
	Model    string
	ViewType manifest.ViewType
	Path     string
	Hash     string
	Changed  bool
}

// Notifier receives one Event per pair, in generation order.
type Notifier func(ctx context.Context, ev Event)

// Fingerprint returns the hex encoded SHA-256 digest of content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ArtifactPath returns <root>/routes/<model lowercased>/<view lowercased>.<ext>.
func ArtifactPath(root, model string, vt manifest.ViewType, ext string) string {
	name := vt.Lower()
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return filepath.Join(root, RoutesDir, strings.ToLower(model), name)
}

// RenderAll renders every view type of every model with at most workers
// concurrent renders (GOMAXPROCS when workers < 1). The result is ordered by
// model then by manifest.ViewTypes. The first failure cancels the rest.
func RenderAll(ctx context.Context, models []schema.Model, r Renderer, workers int) ([]Rendering, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]Rendering, len(models)*len(manifest.ViewTypes))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for mi, model := range models {
		for vi, vt := range manifest.ViewTypes {
			slot := mi*len(manifest.ViewTypes) + vi
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				content, err := r.Render(ctx, Context{Model: model, ViewType: vt, Models: models})
				if err != nil {
					return err
				}
				out[slot] = Rendering{
					Model:    model.Name,
					ViewType: vt,
					Content:  content,
					Hash:     Fingerprint(content),
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Reconcile decides, for every rendering, whether its artifact must be
// written: it must when prev has no entry for the pair or the entry's hash
// differs. The returned manifest holds one fresh entry per rendering, in
// rendering order; entries of prev for pairs that were not rendered are
// dropped.
func Reconcile(renderings []Rendering, prev manifest.Manifest) Plan {
	plan := Plan{
		Decisions: make([]Decision, 0, len(renderings)),
		Manifest: manifest.Manifest{
			Version:        manifest.CurrentVersion,
			GeneratedViews: make([]manifest.GeneratedView, 0, len(renderings)),
		},
	}

	for _, r := range renderings {
		d := Decision{Rendering: r, Changed: true}
		if old, ok := prev.Lookup(r.Model, r.ViewType); ok {
			d.PreviousHash = old.Hash
			d.Changed = old.Hash != r.Hash
		}
		plan.Decisions = append(plan.Decisions, d)
		plan.Manifest.GeneratedViews = append(plan.Manifest.GeneratedViews, manifest.GeneratedView{
			Model:    r.Model,
			ViewType: r.ViewType,
			Hash:     r.Hash,
		})
	}
	return plan
}

// Applier writes the artifacts of a plan.
type Applier struct {
	Root      string
	Extension string
	DryRun    bool // decide and notify, but write nothing
	Notify    Notifier
}

// Apply writes every changed artifact in plan order and notifies for every
// decision. It stops at the first write failure; artifacts already written
// stay in place.
func (a Applier) Apply(ctx context.Context, plan Plan) (int, error) {
	written := 0
	for _, d := range plan.Decisions {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		path := ArtifactPath(a.Root, d.Model, d.ViewType, a.Extension)
		if d.Changed && !a.DryRun {
			if err := atomicfile.WriteFile(path, []byte(d.Content), 0o644); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written++
		}

		if a.Notify != nil {
			a.Notify(ctx, Event{
				Model:    d.Model,
				ViewType: d.ViewType,
				Path:     path,
				Hash:     d.Hash,
				Changed:  d.Changed,
			})
		}
	}
	return written, nil
}
