package templates_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-zoe/internal/siteconfig"
	"github.com/goliatone/go-zoe/internal/templates"
)

type stubURLs struct{}

func (stubURLs) Href(name string, params map[string]any) (string, error) {
	if slug, ok := params["slug"]; ok {
		return "/" + name + "/" + slug.(string) + "/", nil
	}
	if name == "home" {
		return "/", nil
	}
	return "/" + name + "/", nil
}

func (stubURLs) Rel(p string) string { return "/" + strings.TrimLeft(p, "/") }

func (stubURLs) Absolute(p string) string { return "https://example.com" + p }

type meta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Type        string
	NoIndex     bool
}

type view struct {
	Site *siteconfig.Config
	Meta meta
	Kind string
	Data any
}

func testSite() *siteconfig.Config {
	cfg := &siteconfig.Config{Title: "Zoe", Description: "A site"}
	cfg.Normalize()
	return cfg
}

func render(t *testing.T, r *templates.Renderer, name string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(name, data, &buf); err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return buf.String()
}

func TestRenderEmbeddedNotFound(t *testing.T) {
	r, err := templates.New(templates.Options{URLs: stubURLs{}})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out := render(t, r, "404", view{Site: testSite(), Meta: meta{Title: "Not found", NoIndex: true}, Kind: "404"})

	for _, want := range []string{"<title>Not found | Zoe</title>", `<meta name="robots" content="noindex">`, "<h1>404</h1>", "/assets/theme.css"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderPostUsesSafeHTMLAndComments(t *testing.T) {
	r, err := templates.New(templates.Options{URLs: stubURLs{}})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	site := testSite()
	post := map[string]any{
		"Title":       "Hello",
		"Date":        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"ReadingTime": 2,
		"Published":   true,
		"Tags":        []map[string]string{{"Name": "Go", "Slug": "go"}},
		"Banner":      "",
		"HTML":        "<p>body</p>",
	}
	comments := &siteconfig.CommentsConfig{Provider: "utterances", Repo: "me/site"}
	out := render(t, r, "post", view{
		Site: site,
		Kind: "post",
		Data: map[string]any{"Post": post, "Comments": comments, "Prev": nil, "Next": nil},
	})

	for _, want := range []string{"<p>body</p>", `datetime="2024-03-01T00:00:00Z"`, "/blog_tag/go/", "utteranc.es/client.js", `repo="me/site"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestProjectDirOverridesAndAddsTemplates(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "pages", "404.html"), `{{define "content"}}custom missing{{end}}`)
	mustWrite(t, filepath.Join(dir, "pages", "page-landing.html"), `{{define "content"}}landing {{.Kind}}{{end}}`)
	mustWrite(t, filepath.Join(dir, "partials", "footer.html"), `{{define "footer"}}<footer>custom footer</footer>{{end}}`)

	r, err := templates.New(templates.Options{Dir: dir, URLs: stubURLs{}})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if !r.Has("page-landing") {
		t.Fatalf("expected project template to be registered, got %v", r.Names())
	}
	if !r.Has("home") {
		t.Fatalf("expected embedded templates to remain available")
	}

	out := render(t, r, "404", view{Site: testSite(), Kind: "404"})
	if !strings.Contains(out, "custom missing") || !strings.Contains(out, "custom footer") {
		t.Fatalf("expected overrides in output:\n%s", out)
	}
	out = render(t, r, "page-landing", view{Site: testSite(), Kind: "page"})
	if !strings.Contains(out, "landing page") {
		t.Fatalf("expected landing output:\n%s", out)
	}
}

func TestMissingProjectDirIsIgnored(t *testing.T) {
	if _, err := templates.New(templates.Options{Dir: filepath.Join(t.TempDir(), "missing")}); err != nil {
		t.Fatalf("expected missing dir to be ignored, got %v", err)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := templates.New(templates.Options{URLs: stubURLs{}})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render("missing", nil, &buf); !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestParseErrorsSurface(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "pages", "broken.html"), `{{define "content"}}{{.Oops{{end}}`)
	if _, err := templates.New(templates.Options{Dir: dir}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
