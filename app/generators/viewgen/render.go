package viewgen

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"text/template"

	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/app/generators/schema"
)

// TemplateExt is the file extension of view templates.
const TemplateExt = ".tmpl"

// Context is the value a view template is executed with.
type Context struct {
	Model    schema.Model
	ViewType manifest.ViewType
	Models   []schema.Model // every model of the schema, in parse order
}

// Renderer produces the content of one view for one model.
type Renderer interface {
	Render(ctx context.Context, data Context) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, data Context) (string, error)

func (f RendererFunc) Render(ctx context.Context, data Context) (string, error) {
	return f(ctx, data)
}

// TemplateError reports a view template that could not be read, parsed or
// executed. It aborts the run.
type TemplateError struct {
	Model    string
	ViewType manifest.ViewType
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("render %s view of %s with %s: %v", e.ViewType, e.Model, e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// TemplateRenderer renders views with text/template files named after the
// lowercased view type, e.g. list.tmpl. Templates are parsed on first use
// and cached; it is safe for concurrent use.
type TemplateRenderer struct {
	fsys fs.FS
	name string

	mu    sync.Mutex
	cache map[manifest.ViewType]*template.Template
}

// NewTemplateRenderer loads templates from dir.
func NewTemplateRenderer(dir string) *TemplateRenderer {
	r := NewTemplateRendererFS(os.DirFS(dir))
	r.name = dir
	return r
}

// NewTemplateRendererFS loads templates from the root of fsys.
func NewTemplateRendererFS(fsys fs.FS) *TemplateRenderer {
	return &TemplateRenderer{
		fsys:  fsys,
		cache: make(map[manifest.ViewType]*template.Template),
	}
}

// TemplateName returns the file name holding the template for vt.
func TemplateName(vt manifest.ViewType) string {
	return vt.Lower() + TemplateExt
}

// Render executes the template for data.ViewType.
func (r *TemplateRenderer) Render(ctx context.Context, data Context) (string, error) {
	name := TemplateName(data.ViewType)
	fail := func(err error) (string, error) {
		return "", &TemplateError{Model: data.Model.Name, ViewType: data.ViewType, Template: r.path(name), Err: err}
	}

	tmpl, err := r.template(data.ViewType)
	if err != nil {
		return fail(err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fail(err)
	}
	return buf.String(), nil
}

func (r *TemplateRenderer) template(vt manifest.ViewType) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.cache[vt]; ok {
		return t, nil
	}

	name := TemplateName(vt)
	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, err
	}
	t, err := template.New(name).Funcs(Funcs()).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, err
	}
	r.cache[vt] = t
	return t, nil
}

func (r *TemplateRenderer) path(name string) string {
	if r.name == "" {
		return name
	}
	return r.name + string(os.PathSeparator) + name
}
