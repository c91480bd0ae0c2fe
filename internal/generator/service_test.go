package generator_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-zoe/internal/content"
	"github.com/goliatone/go-zoe/internal/generator"
	"github.com/goliatone/go-zoe/internal/releases"
	"github.com/goliatone/go-zoe/internal/routes"
	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/storage"
	"github.com/goliatone/go-zoe/internal/themes"
)

type staticContent struct {
	mu      sync.Mutex
	library *content.Library
	err     error
}

func (s *staticContent) Load(context.Context) (*content.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.library, s.err
}

func (s *staticContent) set(lib *content.Library) {
	s.mu.Lock()
	s.library = lib
	s.mu.Unlock()
}

type recordingRenderer struct {
	mu    sync.Mutex
	views map[string]generator.View
	extra map[string]bool
	fail  string
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{views: map[string]generator.View{}, extra: map[string]bool{}}
}

func (r *recordingRenderer) Render(name string, data any, out io.Writer) error {
	view, ok := data.(generator.View)
	if !ok {
		return fmt.Errorf("unexpected data %T", data)
	}
	if name == r.fail {
		return errors.New("boom")
	}
	r.mu.Lock()
	r.views[view.Path] = view
	r.mu.Unlock()
	_, err := fmt.Fprintf(out, "<title>%s</title><main data-kind=%q data-template=%q></main>", view.Meta.Title, view.Kind, name)
	return err
}

func (r *recordingRenderer) Has(name string) bool {
	return r.extra[name]
}

func (r *recordingRenderer) view(t *testing.T, path string) generator.View {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.views[path]
	if !ok {
		t.Fatalf("no view rendered for %s", path)
	}
	return view
}

type failingReleases struct{}

func (failingReleases) Fetch(context.Context, []siteconfig.ReleaseSource) ([]*releases.Release, error) {
	return nil, errors.New("rate limited")
}

func testConfig() *siteconfig.Config {
	cfg := &siteconfig.Config{
		Title:       "Zoe",
		Description: "A static site",
		URL:         "https://example.com",
		RSS:         siteconfig.RSSConfig{Enabled: true},
		Build:       siteconfig.BuildConfig{Workers: 4},
	}
	cfg.Normalize()
	return cfg
}

func testLibrary(withDraft bool) *content.Library {
	posts := []*content.Post{
		{Slug: "newer", Title: "Newer", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Published: true,
			Tags: []content.Tag{{Name: "Go", Slug: "go"}}, Description: "newer post"},
		{Slug: "older", Title: "Older", Date: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), Published: true,
			Tags: []content.Tag{{Name: "Go", Slug: "go"}}},
	}
	if withDraft {
		posts = append(posts, &content.Post{Slug: "wip", Title: "WIP", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)})
	}
	pages := []*content.Page{{Slug: "about", Title: "About", Layout: "default"}}
	return content.NewLibrary(posts, pages, nil, nil)
}

type harness struct {
	cfg      *siteconfig.Config
	source   *staticContent
	renderer *recordingRenderer
	storage  *storage.Memory
	deps     generator.Dependencies
}

func newHarness(t *testing.T, cfg *siteconfig.Config, lib *content.Library) *harness {
	t.Helper()
	table, err := routes.New(cfg)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	catalog, err := themes.NewCatalog(nil)
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	h := &harness{
		cfg:      cfg,
		source:   &staticContent{library: lib},
		renderer: newRecordingRenderer(),
		storage:  storage.NewMemory(),
	}
	h.deps = generator.Dependencies{
		Config:   cfg,
		Content:  h.source,
		Themes:   catalog,
		Routes:   table,
		Renderer: h.renderer,
		Storage:  h.storage,
		Public: fstest.MapFS{
			"favicon.ico":          {Data: []byte("icon")},
			"images/logo.svg":      {Data: []byte("<svg/>")},
			".DS_Store":            {Data: []byte("junk")},
			"manifest.webmanifest": {Data: []byte("{}")},
		},
	}
	return h
}

func (h *harness) build(t *testing.T, opts generator.BuildOptions) *generator.BuildResult {
	t.Helper()
	result, err := generator.NewService(h.deps).Build(context.Background(), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return result
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := h.storage.ReadFile(context.Background(), name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func (h *harness) exists(name string) bool {
	ok, _ := h.storage.Exists(context.Background(), name)
	return ok
}

func TestBuildWritesPagesAndSiteFiles(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(true))
	result := h.build(t, generator.BuildOptions{})

	expected := []string{
		"index.html",
		"blog/index.html",
		"blog/newer/index.html",
		"blog/older/index.html",
		"blog/tags/index.html",
		"blog/tag/go/index.html",
		"blog/archives/index.html",
		"projects/index.html",
		"about/index.html",
		"404.html",
		"rss.xml",
		"sitemap.xml",
		"robots.txt",
		"manifest.webmanifest",
		"assets/theme.css",
		"favicon.ico",
		"images/logo.svg",
		".zoe-manifest.json",
	}
	for _, name := range expected {
		if !h.exists(name) {
			t.Fatalf("expected %s to be written, have %v", name, h.storage.Names())
		}
	}
	for _, name := range []string{"blog/wip/index.html", "blog/drafts/index.html", ".DS_Store", "releases/index.html", "pricing/index.html", "help/index.html"} {
		if h.exists(name) {
			t.Fatalf("did not expect %s to be written", name)
		}
	}
	if result.PagesBuilt != 10 {
		t.Fatalf("expected 10 pages built, got %d", result.PagesBuilt)
	}
	if result.ID == "" {
		t.Fatalf("expected build id")
	}
	if len(result.Diagnostics) != result.PagesBuilt {
		t.Fatalf("expected one diagnostic per page, got %d", len(result.Diagnostics))
	}

	if manifest := h.read(t, "manifest.webmanifest"); manifest == "{}" || !strings.Contains(manifest, `"short_name": "Zoe"`) {
		t.Fatalf("generated web manifest must win over the public file, got %s", manifest)
	}

	sitemap := h.read(t, "sitemap.xml")
	if !strings.Contains(sitemap, "<loc>https://example.com/blog/newer/</loc>") {
		t.Fatalf("sitemap missing post url:\n%s", sitemap)
	}
	if strings.Contains(sitemap, "404.html") {
		t.Fatalf("sitemap must not list the not found page:\n%s", sitemap)
	}
	if robots := h.read(t, "robots.txt"); !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("robots must reference the sitemap:\n%s", robots)
	}

	rss := h.read(t, "rss.xml")
	for _, want := range []string{
		`<title><![CDATA[Zoe RSS Feed]]></title>`,
		`<atom:link href="https://example.com/rss.xml" rel="self" type="application/rss+xml"/>`,
		`<guid isPermaLink="true">https://example.com/blog/newer/</guid>`,
		`<category>Go</category>`,
		`<language>en</language>`,
	} {
		if !strings.Contains(rss, want) {
			t.Fatalf("rss missing %q:\n%s", want, rss)
		}
	}
	if strings.Contains(rss, "WIP") {
		t.Fatalf("rss must not include drafts")
	}
	if strings.Index(rss, "Newer") > strings.Index(rss, "Older") {
		t.Fatalf("rss items must be newest first")
	}
}

func TestBuildLinksPostsAndPaginates(t *testing.T) {
	cfg := testConfig()
	cfg.Blog.PostsPerPage = 1
	h := newHarness(t, cfg, testLibrary(false))
	h.build(t, generator.BuildOptions{})

	newer := h.renderer.view(t, "/blog/newer/").Data.(generator.PostView)
	if newer.Prev == nil || newer.Prev.Slug != "older" || newer.Next != nil {
		t.Fatalf("unexpected neighbours for newest post: %+v", newer)
	}
	older := h.renderer.view(t, "/blog/older/").Data.(generator.PostView)
	if older.Next == nil || older.Next.Slug != "newer" || older.Prev != nil {
		t.Fatalf("unexpected neighbours for oldest post: %+v", older)
	}

	first := h.renderer.view(t, "/blog/").Data.(generator.BlogView)
	if first.Pagination.TotalPages != 2 || first.Pagination.NextURL != "/blog/page/2/" || first.Pagination.PrevURL != "" {
		t.Fatalf("unexpected first page pagination %+v", first.Pagination)
	}
	second := h.renderer.view(t, "/blog/page/2/").Data.(generator.BlogView)
	if second.Pagination.PrevURL != "/blog/" || second.Pagination.NextURL != "" || len(second.Posts) != 1 {
		t.Fatalf("unexpected second page %+v", second)
	}

	home := h.renderer.view(t, "/").Data.(generator.HomeView)
	if len(home.Posts) != 2 {
		t.Fatalf("expected home to list both posts, got %d", len(home.Posts))
	}
}

func TestBuildSkipsUnchangedPages(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(false))
	first := h.build(t, generator.BuildOptions{})
	if first.PagesBuilt == 0 || first.PagesSkipped != 0 {
		t.Fatalf("unexpected first build counts %+v", first)
	}

	second := h.build(t, generator.BuildOptions{})
	if second.PagesBuilt != 0 || second.PagesSkipped != first.PagesBuilt {
		t.Fatalf("expected every page to be skipped, got built=%d skipped=%d", second.PagesBuilt, second.PagesSkipped)
	}
	for _, page := range second.Rendered {
		if !page.Skipped {
			t.Fatalf("expected %s to be marked skipped", page.Output)
		}
	}

	forced := h.build(t, generator.BuildOptions{Force: true})
	if forced.PagesSkipped != 0 || forced.PagesBuilt != first.PagesBuilt {
		t.Fatalf("force must rewrite every page, got built=%d skipped=%d", forced.PagesBuilt, forced.PagesSkipped)
	}
}

func TestBuildRewritesMissingOutputs(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(false))
	h.build(t, generator.BuildOptions{})
	if err := h.storage.Remove(context.Background(), "about/index.html"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	result := h.build(t, generator.BuildOptions{})
	if result.PagesBuilt != 1 {
		t.Fatalf("expected only the missing page to be rebuilt, got %d", result.PagesBuilt)
	}
	if !h.exists("about/index.html") {
		t.Fatalf("expected missing page to be written again")
	}
}

func TestBuildRemovesStaleOutputs(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(false))
	h.build(t, generator.BuildOptions{})

	h.source.set(content.NewLibrary([]*content.Post{
		{Slug: "newer", Title: "Newer", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Published: true},
	}, nil, nil, nil))
	result := h.build(t, generator.BuildOptions{})

	removed := strings.Join(result.Removed, ",")
	for _, name := range []string{"blog/older/index.html", "about/index.html", "blog/tag/go/index.html"} {
		if !strings.Contains(removed, name) {
			t.Fatalf("expected %s to be removed, got %v", name, result.Removed)
		}
		if h.exists(name) {
			t.Fatalf("expected %s to be gone from storage", name)
		}
	}
	if !h.exists("blog/newer/index.html") {
		t.Fatalf("current outputs must survive")
	}
}

func TestBuildIncludesDraftsWhenRequested(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(true))
	h.build(t, generator.BuildOptions{IncludeDrafts: true})

	for _, name := range []string{"blog/wip/index.html", "blog/drafts/index.html"} {
		if !h.exists(name) {
			t.Fatalf("expected %s with drafts enabled", name)
		}
	}
	draft := h.renderer.view(t, "/blog/wip/")
	if !draft.Meta.NoIndex || !draft.Build.Drafts {
		t.Fatalf("draft pages must be noindex and flag the drafts build: %+v", draft.Meta)
	}
	if strings.Contains(h.read(t, "sitemap.xml"), "/blog/wip/") {
		t.Fatalf("drafts must stay out of the sitemap")
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(false))
	result := h.build(t, generator.BuildOptions{DryRun: true})

	if !result.DryRun || result.PagesBuilt == 0 || len(result.Rendered) != result.PagesBuilt {
		t.Fatalf("unexpected dry run result %+v", result)
	}
	if names := h.storage.Names(); len(names) != 0 {
		t.Fatalf("dry run must not write, got %v", names)
	}
}

func TestBuildReportsRenderFailures(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(false))
	h.renderer.fail = generator.KindPost

	result, err := generator.NewService(h.deps).Build(context.Background(), generator.BuildOptions{})
	if err == nil {
		t.Fatalf("expected render errors to surface")
	}
	if result == nil || len(result.Errors) != 2 {
		t.Fatalf("expected one error per post, got %+v", result)
	}
	failed := 0
	for _, diag := range result.Diagnostics {
		if diag.Err != nil {
			failed++
			if diag.Template != generator.KindPost {
				t.Fatalf("unexpected failing template %s", diag.Template)
			}
		}
	}
	if failed != 2 {
		t.Fatalf("expected two failing diagnostics, got %d", failed)
	}
	if !h.exists("index.html") {
		t.Fatalf("other pages must still be written")
	}
}

func TestBuildToleratesRemoteFailures(t *testing.T) {
	cfg := testConfig()
	cfg.ReleaseRepo = siteconfig.ReleaseSources{{Provider: "github", Repo: "acme/tool"}}
	h := newHarness(t, cfg, testLibrary(false))
	h.deps.Releases = failingReleases{}

	h.build(t, generator.BuildOptions{})
	view := h.renderer.view(t, "/releases/").Data.(generator.ReleasesView)
	if view.Latest != nil || len(view.Groups) != 0 {
		t.Fatalf("expected empty releases after a fetch failure, got %+v", view)
	}
}

func TestBuildSelectsLayoutTemplates(t *testing.T) {
	lib := content.NewLibrary(nil, []*content.Page{
		{Slug: "landing", Title: "Landing", Layout: "full"},
		{Slug: "plain", Title: "Plain", Layout: "unknown"},
		{Slug: "blog", Title: "Shadowed"},
	}, nil, nil)
	h := newHarness(t, testConfig(), lib)
	h.renderer.extra["page-full"] = true

	result := h.build(t, generator.BuildOptions{})
	templates := map[string]string{}
	for _, page := range result.Rendered {
		templates[page.Output] = page.Template
	}
	if templates["landing/index.html"] != "page-full" {
		t.Fatalf("expected page-full template, got %q", templates["landing/index.html"])
	}
	if templates["plain/index.html"] != generator.KindPage {
		t.Fatalf("expected page template fallback, got %q", templates["plain/index.html"])
	}
	if templates["blog/index.html"] != generator.KindBlog {
		t.Fatalf("the blog index must win over a page with the same slug, got %q", templates["blog/index.html"])
	}
}

func TestBuildRendersPricingPlans(t *testing.T) {
	cfg := testConfig()
	cfg.Pricing = &siteconfig.PricingConfig{
		Enabled:        true,
		YearlyDiscount: 20,
		Plans: []siteconfig.PricingPlan{
			{ID: "pro", Name: "Pro", Price: siteconfig.Price{Amount: 10, Numeric: true}},
			{ID: "team", Name: "Team", Price: siteconfig.Price{Label: "Contact us"}},
		},
	}
	h := newHarness(t, cfg, testLibrary(false))
	h.build(t, generator.BuildOptions{})

	view := h.renderer.view(t, "/pricing/").Data.(generator.PricingView)
	if len(view.Plans) != 2 {
		t.Fatalf("expected two plans, got %d", len(view.Plans))
	}
	if !view.Plans[0].HasYearly || view.Plans[0].Yearly != 96 {
		t.Fatalf("unexpected yearly price %+v", view.Plans[0])
	}
	if view.Plans[1].HasYearly {
		t.Fatalf("non numeric prices have no yearly price")
	}
}

func TestBuildRequiresDependencies(t *testing.T) {
	_, err := generator.NewService(generator.Dependencies{}).Build(context.Background(), generator.BuildOptions{})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBuildContentFailureAborts(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	h.source.err = errors.New("disk on fire")
	if _, err := generator.NewService(h.deps).Build(context.Background(), generator.BuildOptions{}); err == nil {
		t.Fatalf("expected content failure to abort the build")
	}
}

func TestCleanEmptiesStorage(t *testing.T) {
	h := newHarness(t, testConfig(), testLibrary(false))
	h.build(t, generator.BuildOptions{})
	if err := generator.NewService(h.deps).Clean(context.Background()); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if names := h.storage.Names(); len(names) != 0 {
		t.Fatalf("expected empty storage, got %v", names)
	}
}

func TestDisabledService(t *testing.T) {
	svc := generator.NewDisabledService()
	if _, err := svc.Build(context.Background(), generator.BuildOptions{}); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}
