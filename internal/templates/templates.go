package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

//go:embed defaults
var defaultFS embed.FS

const (
	defaultsRoot = "defaults"
	layoutFile   = "layout.html"
	partialsDir  = "partials"
	pagesDir     = "pages"
	entryName    = "layout"
	templateExt  = ".html"
)

var ErrTemplateNotFound = errors.New("templates: template not found")

// URLResolver turns route names into links. *routes.Table satisfies it.
type URLResolver interface {
	Href(name string, params map[string]any) (string, error)
	Rel(p string) string
	Absolute(p string) string
}

// Options configures a Renderer.
type Options struct {
	// Dir holds project templates. Files override the embedded defaults by
	// relative name; extra files under pages/ add page templates.
	Dir    string
	URLs   URLResolver
	Funcs  template.FuncMap
	Logger interfaces.Logger
}

// Renderer renders page templates into the shared layout. It is safe for
// concurrent use once constructed.
type Renderer struct {
	logger interfaces.Logger
	funcs  template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// New parses the embedded templates merged with opts.Dir.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		logger: logging.Fallback(opts.Logger),
		funcs:  Funcs(opts.URLs),
		pages:  map[string]*template.Template{},
	}
	for name, fn := range opts.Funcs {
		r.funcs[name] = fn
	}

	sources, err := collectSources(opts.Dir)
	if err != nil {
		return nil, err
	}
	if err := r.parse(sources); err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the layout with the page template name bound to it.
func (r *Renderer) Render(name string, data any, out io.Writer) error {
	r.mu.RLock()
	tmpl, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entryName, data); err != nil {
		return fmt.Errorf("templates: render %s: %w", name, err)
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// Has reports whether a page template with name exists.
func (r *Renderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pages[name]
	return ok
}

// Names lists the page templates.
func (r *Renderer) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type source struct {
	name   string
	body   []byte
	origin string
}

type sourceSet struct {
	layout   source
	partials map[string]source
	pages    map[string]source
}

func (r *Renderer) parse(set sourceSet) error {
	base := template.New("zoe").Funcs(r.funcs)
	if _, err := base.New(set.layout.name).Parse(string(set.layout.body)); err != nil {
		return fmt.Errorf("templates: parse %s (%s): %w", set.layout.name, set.layout.origin, err)
	}
	for _, name := range sortedKeys(set.partials) {
		src := set.partials[name]
		if _, err := base.New(src.name).Parse(string(src.body)); err != nil {
			return fmt.Errorf("templates: parse %s (%s): %w", src.name, src.origin, err)
		}
	}

	pages := make(map[string]*template.Template, len(set.pages))
	for _, name := range sortedKeys(set.pages) {
		src := set.pages[name]
		clone, err := base.Clone()
		if err != nil {
			return fmt.Errorf("templates: clone base for %s: %w", name, err)
		}
		if _, err := clone.New(src.name).Parse(string(src.body)); err != nil {
			return fmt.Errorf("templates: parse %s (%s): %w", src.name, src.origin, err)
		}
		pages[name] = clone
		r.logger.Trace("templates.page.parsed", "template", name, "origin", src.origin)
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

func collectSources(dir string) (sourceSet, error) {
	set := sourceSet{
		partials: map[string]source{},
		pages:    map[string]source{},
	}

	embedded, err := fs.Sub(defaultFS, defaultsRoot)
	if err != nil {
		return set, fmt.Errorf("templates: open defaults: %w", err)
	}
	if err := addSources(&set, embedded, "embedded"); err != nil {
		return set, err
	}

	if dir = strings.TrimSpace(dir); dir != "" {
		info, err := os.Stat(dir)
		switch {
		case err == nil && info.IsDir():
			if err := addSources(&set, os.DirFS(dir), filepath.ToSlash(dir)); err != nil {
				return set, err
			}
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return set, fmt.Errorf("templates: stat %s: %w", dir, err)
		}
	}

	if set.layout.body == nil {
		return set, fmt.Errorf("%w: %s", ErrTemplateNotFound, layoutFile)
	}
	return set, nil
}

func addSources(set *sourceSet, fsys fs.FS, origin string) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != templateExt {
			return nil
		}
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", p, err)
		}
		src := source{name: p, body: body, origin: origin + "/" + p}
		name := strings.TrimSuffix(path.Base(p), templateExt)

		switch dir := path.Dir(p); {
		case p == layoutFile:
			set.layout = src
		case dir == partialsDir:
			set.partials[name] = src
		case dir == pagesDir:
			set.pages[name] = src
		}
		return nil
	})
}

func sortedKeys(m map[string]source) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
