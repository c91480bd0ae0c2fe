package generator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-zoe/internal/changelog"
	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/helpqa"
	"github.com/goliatone/go-zoe/internal/routes"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/storage"
	"github.com/goliatone/go-zoe/internal/templates"
	"github.com/goliatone/go-zoe/internal/themes"
)

type staticChangelog []*changelog.Entry

func (s staticChangelog) All(context.Context) ([]*changelog.Entry, error) {
	return s, nil
}

func TestBuildWithDefaultTemplates(t *testing.T) {
	cfg := &siteconfig.Config{
		Title:       "Zoe",
		Description: "A static site",
		URL:         "https://example.com/docs",
		RSS:         siteconfig.RSSConfig{Enabled: true},
		Navs:        []siteconfig.NavItem{{Title: "Blog", Href: "/docs/blog/"}},
		Comments:    &siteconfig.CommentsConfig{Provider: "utterances", Repo: "acme/site"},
	}
	cfg.Normalize()

	table, err := routes.New(cfg)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	renderer, err := templates.New(templates.Options{URLs: table})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	catalog, err := themes.NewCatalog(nil)
	if err != nil {
		t.Fatalf("themes: %v", err)
	}

	lib := content.NewLibrary([]*content.Post{
		{Slug: "hello", Title: "Hello <World>", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Published: true,
			Tags: []content.Tag{{Name: "Go", Slug: "go"}}, HTML: "<p>body</p>", ReadingTime: 1},
		{Slug: "earlier", Title: "Earlier", Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Published: true},
	}, []*content.Page{
		{Slug: "about", Title: "About", Layout: "default", HTML: "<p>about us</p>"},
		{Slug: "landing", Title: "Landing", Layout: "full", HTML: "<section>full width</section>"},
	}, []*content.Project{
		{Slug: "tool", Title: "Tool", Repo: "acme/tool"},
	}, []*content.Collection{
		{Name: "docs-guides", Entries: []*content.Entry{{Collection: "docs-guides", Slug: "intro", Title: "Intro", HTML: "<p>guide</p>"}}},
	})

	mem := storage.NewMemory()
	svc := generator.NewService(generator.Dependencies{
		Config:    cfg,
		Content:   &staticContent{library: lib},
		Changelog: staticChangelog{{Slug: "v1-0-0", Version: "1.0.0", Title: "First", Date: "2024-01-01", HTML: "<p>init</p>"}},
		Themes:    catalog,
		Routes:    table,
		Renderer:  renderer,
		Storage:   mem,
	})
	result, err := svc.Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatalf("expected pages to be built")
	}

	read := func(name string) string {
		t.Helper()
		data, err := mem.ReadFile(context.Background(), name)
		if err != nil {
			t.Fatalf("read %s: %v (have %v)", name, err, mem.Names())
		}
		return string(data)
	}

	home := read("index.html")
	for _, want := range []string{
		"<title>Zoe</title>",
		`<link rel="manifest" href="/docs/manifest.webmanifest">`,
		`href="/docs/blog/hello/"`,
		`<link rel="canonical" href="https://example.com/docs/">`,
	} {
		if !strings.Contains(home, want) {
			t.Fatalf("home page missing %q:\n%s", want, home)
		}
	}

	post := read("blog/hello/index.html")
	for _, want := range []string{
		"<title>Hello &lt;World&gt; | Zoe</title>",
		"<p>body</p>",
		`rel="prev" href="/docs/blog/earlier/"`,
		`href="/docs/blog/tag/go/"`,
		"utteranc.es",
	} {
		if !strings.Contains(post, want) {
			t.Fatalf("post page missing %q:\n%s", want, post)
		}
	}

	if landing := read("landing/index.html"); !strings.Contains(landing, `<div class="page page-full"><section>full width</section></div>`) {
		t.Fatalf("expected full layout for landing page:\n%s", landing)
	}
	if entry := read("docs-guides/intro/index.html"); !strings.Contains(entry, "<p>guide</p>") {
		t.Fatalf("expected collection entry body:\n%s", entry)
	}
	if entry := read("changelog/v1-0-0/index.html"); !strings.Contains(entry, "<p>init</p>") {
		t.Fatalf("expected changelog entry body:\n%s", entry)
	}
	if notFound := read("404.html"); !strings.Contains(notFound, `<meta name="robots" content="noindex">`) {
		t.Fatalf("404 page must be noindex:\n%s", notFound)
	}
	if css := read("assets/theme.css"); !strings.Contains(css, "--background") {
		t.Fatalf("expected theme variables:\n%s", css)
	}
	if manifest := read("manifest.webmanifest"); !strings.Contains(manifest, `"start_url": "/docs/"`) {
		t.Fatalf("expected start url under the site path:\n%s", manifest)
	}
}

type staticHelp struct {
	catalog *helpqa.Catalog
}

func (staticHelp) Enabled() bool { return true }

func (s staticHelp) Load(context.Context) (*helpqa.Catalog, error) {
	return s.catalog, nil
}

func TestBuildKeysHelpItemsByIssueID(t *testing.T) {
	cfg := &siteconfig.Config{Title: "Zoe", URL: "https://example.com"}
	cfg.HelpQA = &siteconfig.HelpQAConfig{Repo: "acme/help"}
	cfg.Normalize()

	table, err := routes.New(cfg)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	renderer, err := templates.New(templates.Options{URLs: table})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	catalog, err := themes.NewCatalog(nil)
	if err != nil {
		t.Fatalf("themes: %v", err)
	}

	billing := &helpqa.Category{ID: "501", Name: "Billing"}
	help := helpqa.NewCatalog([]*helpqa.Category{billing}, []*helpqa.Item{
		{ID: "9001", Number: 7, Title: "Refunds", HTML: "<p>refund policy</p>", Categories: []*helpqa.Category{billing}},
	})

	mem := storage.NewMemory()
	svc := generator.NewService(generator.Dependencies{
		Config:   cfg,
		Content:  &staticContent{library: content.NewLibrary(nil, nil, nil, nil)},
		Help:     staticHelp{catalog: help},
		Themes:   catalog,
		Routes:   table,
		Renderer: renderer,
		Storage:  mem,
	})
	if _, err := svc.Build(context.Background(), generator.BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	if ok, _ := mem.Exists(context.Background(), "help/item/9001/index.html"); !ok {
		t.Fatalf("expected help item page under the issue id, have %v", mem.Names())
	}
	if ok, _ := mem.Exists(context.Background(), "help/item/7/index.html"); ok {
		t.Fatal("help item page must not be keyed by issue number")
	}
	for _, name := range []string{"help/index.html", "help/categories/501/index.html"} {
		data, err := mem.ReadFile(context.Background(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), `href="/help/item/9001/"`) {
			t.Fatalf("%s should link the item by id:\n%s", name, data)
		}
	}
}
