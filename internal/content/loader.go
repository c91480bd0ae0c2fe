package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/internal/markdown"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// Sub directories of a content dir.
const (
	PostsDir    = "posts"
	PagesDir    = "pages"
	ProjectsDir = "projects"

	// ExcerptLength is the rune count of generated post excerpts.
	ExcerptLength = 140
	DefaultLayout = "default"
)

// Options configure a Loader.
type Options struct {
	Config   *siteconfig.Config
	Root     string
	Getenv   func(string) string
	Renderer interfaces.MarkdownRenderer
	Logger   interfaces.Logger
}

// Loader scans content directories into a Library.
type Loader struct {
	cfg      *siteconfig.Config
	root     string
	getenv   func(string) string
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
}

// NewLoader constructs a Loader. A nil renderer leaves HTML fields empty.
func NewLoader(opts Options) *Loader {
	cfg := opts.Config
	if cfg == nil {
		cfg = &siteconfig.Config{}
	}
	return &Loader{
		cfg:      cfg,
		root:     opts.Root,
		getenv:   opts.Getenv,
		renderer: opts.Renderer,
		logger:   logging.Fallback(opts.Logger),
	}
}

// Load scans every resolved directory. Files that cannot be parsed are
// logged and skipped; when the same slug appears more than once the first
// file wins.
func (l *Loader) Load(ctx context.Context) (*Library, error) {
	dirs := ResolveDirs(l.cfg, l.root, l.getenv)
	l.logger.Debug("content.load.start", "dirs", len(dirs))

	posts := newSlugSet[*Post](l.logger, "post")
	pages := newSlugSet[*Page](l.logger, "page")
	projects := newSlugSet[*Project](l.logger, "project")
	collections := make([]*Collection, 0, len(l.cfg.ContentTypes))
	entrySets := make([]*slugSet[*Entry], 0, len(l.cfg.ContentTypes))
	for _, ct := range l.cfg.ContentTypes {
		collections = append(collections, &Collection{Name: ct.Name, Template: ct.Template})
		entrySets = append(entrySets, newSlugSet[*Entry](l.logger, ct.Name))
	}

	for _, dir := range dirs {
		err := l.scan(ctx, dir, PostsDir, true, func(doc *markdown.Document, html string) {
			post := l.buildPost(doc, html)
			posts.add(post.Slug, doc.Path, post)
		})
		if err != nil {
			return nil, err
		}
		err = l.scan(ctx, dir, PagesDir, true, func(doc *markdown.Document, html string) {
			page := buildPage(doc, html)
			pages.add(page.Slug, doc.Path, page)
		})
		if err != nil {
			return nil, err
		}
		err = l.scan(ctx, dir, ProjectsDir, true, func(doc *markdown.Document, html string) {
			project := buildProject(doc, html)
			projects.add(project.Slug, doc.Path, project)
		})
		if err != nil {
			return nil, err
		}
		for i, ct := range l.cfg.ContentTypes {
			set := entrySets[i]
			name := ct.Name
			err = l.scan(ctx, dir, ct.Path, true, func(doc *markdown.Document, html string) {
				entry := buildEntry(name, doc, html)
				set.add(entry.Slug, doc.Path, entry)
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for i, collection := range collections {
		collection.Entries = entrySets[i].items
	}

	lib := NewLibrary(posts.items, pages.items, projects.items, collections)
	lib.dirs = dirs
	l.logger.Info("content.load.complete",
		"posts", len(posts.items),
		"pages", len(pages.items),
		"projects", len(projects.items),
		"collections", len(collections),
	)
	return lib, nil
}

func (l *Loader) scan(ctx context.Context, dir Dir, sub string, recursive bool, visit func(*markdown.Document, string)) error {
	base := filepath.Join(dir.Path, sub)
	files, err := markdown.ScanFiles(base, recursive)
	if err != nil {
		l.logger.Warn("content.scan.failed", "dir", base, "error", err)
		return nil
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir.Path, file)
		if err != nil || !dir.Allows(rel) {
			continue
		}
		logger := logging.WithSourceContext(l.logger, dir.Source, file)

		doc, err := markdown.LoadDocument(file)
		if err != nil {
			logger.Warn("content.file.parse_failed", "error", err)
			continue
		}
		html, err := l.render(ctx, doc.Body)
		if err != nil {
			logger.Warn("content.file.render_failed", "error", err)
			continue
		}
		visit(doc, html)
	}
	return nil
}

func (l *Loader) render(ctx context.Context, body []byte) (string, error) {
	if l.renderer == nil {
		return "", nil
	}
	html, err := l.renderer.Render(ctx, body)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return string(html), nil
}

func (l *Loader) buildPost(doc *markdown.Document, html string) *Post {
	meta := doc.FrontMatter
	body := string(doc.Body)
	slug := documentSlug(doc)

	post := &Post{
		Slug:         slug,
		Title:        firstNonEmpty(meta.String("title"), slug),
		Description:  meta.String("description"),
		Excerpt:      meta.String("excerpt"),
		Date:         doc.ModTime,
		ModifiedDate: doc.ModTime,
		Banner:       meta.String("banner"),
		Published:    true,
		ReadingTime:  markdown.ReadingTime(body),
		Content:      body,
		HTML:         html,
		SourcePath:   doc.Path,
		FrontMatter:  meta,
	}
	if post.Excerpt == "" {
		post.Excerpt = markdown.Excerpt(strings.TrimSpace(body), ExcerptLength)
	}
	if date, ok := meta.Time("date"); ok {
		post.Date = date
	}
	if modified, ok := meta.Time("modifiedDate"); ok {
		post.ModifiedDate = modified
	}
	if published, ok := meta.Bool("published"); ok && !published {
		post.Published = false
	}
	if pinned, ok := meta.Bool("pinned"); ok {
		post.Pinned = pinned
	}
	for _, name := range meta.Strings("tags") {
		post.Tags = append(post.Tags, Tag{Name: name, Slug: Slugify(name)})
	}
	return post
}

func buildPage(doc *markdown.Document, html string) *Page {
	meta := doc.FrontMatter
	slug := documentSlug(doc)
	return &Page{
		Slug:        slug,
		Title:       firstNonEmpty(meta.String("title"), slug),
		Description: meta.String("description"),
		Layout:      firstNonEmpty(meta.String("layout"), DefaultLayout),
		Container:   meta.String("container"),
		IsMDX:       doc.IsMDX,
		Content:     string(doc.Body),
		HTML:        html,
		SourcePath:  doc.Path,
		ModTime:     doc.ModTime,
		FrontMatter: meta,
	}
}

func buildProject(doc *markdown.Document, html string) *Project {
	meta := doc.FrontMatter
	slug := documentSlug(doc)
	featured, _ := meta.Bool("featured")
	return &Project{
		Slug:        slug,
		Title:       firstNonEmpty(meta.String("title"), slug),
		Description: meta.String("description"),
		Repo:        meta.String("repo"),
		URL:         meta.String("url"),
		Banner:      meta.String("banner"),
		Tags:        meta.Strings("tags"),
		Featured:    featured,
		Content:     string(doc.Body),
		HTML:        html,
		SourcePath:  doc.Path,
		ModTime:     doc.ModTime,
	}
}

func buildEntry(collection string, doc *markdown.Document, html string) *Entry {
	meta := doc.FrontMatter
	slug := documentSlug(doc)
	entry := &Entry{
		Collection:  collection,
		Slug:        slug,
		Title:       firstNonEmpty(meta.String("title"), slug),
		Description: meta.String("description"),
		Date:        doc.ModTime,
		Template:    meta.String("template"),
		Content:     string(doc.Body),
		HTML:        html,
		SourcePath:  doc.Path,
		FrontMatter: meta,
	}
	if date, ok := meta.Time("date"); ok {
		entry.Date = date
	}
	return entry
}

func documentSlug(doc *markdown.Document) string {
	if slug := doc.FrontMatter.String("slug"); slug != "" {
		return slug
	}
	return Slugify(doc.Name())
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// slugSet keeps the first item registered under each slug.
type slugSet[T any] struct {
	kind   string
	seen   map[string]string
	items  []T
	logger interfaces.Logger
}

func newSlugSet[T any](logger interfaces.Logger, kind string) *slugSet[T] {
	return &slugSet[T]{kind: kind, seen: map[string]string{}, logger: logger}
}

func (s *slugSet[T]) add(slug, path string, item T) {
	if first, ok := s.seen[slug]; ok {
		s.logger.Warn("content.slug.duplicate",
			"kind", s.kind,
			"slug", slug,
			"kept", first,
			"dropped", path,
		)
		return
	}
	s.seen[slug] = path
	s.items = append(s.items, item)
}
