package routes_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-zoe/internal/routes"
	"github.com/goliatone/go-zoe/internal/siteconfig"
)

func newTable(t *testing.T, mutate func(cfg *siteconfig.Config)) *routes.Table {
	t.Helper()
	cfg := &siteconfig.Config{Title: "Zoe"}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Normalize()
	table, err := routes.New(cfg)
	if err != nil {
		t.Fatalf("new routes: %v", err)
	}
	return table
}

func TestPathAppendsTrailingSlash(t *testing.T) {
	table := newTable(t, nil)

	cases := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{name: routes.Home, want: "/"},
		{name: routes.Blog, want: "/blog/"},
		{name: routes.BlogPost, params: map[string]any{"slug": "hello-world"}, want: "/blog/hello-world/"},
		{name: routes.BlogPage, params: map[string]any{"page": 2}, want: "/blog/page/2/"},
		{name: routes.HelpItem, params: map[string]any{"id": 42}, want: "/help/item/42/"},
		{name: routes.CollectionEntry, params: map[string]any{"collection": "docs", "slug": "intro"}, want: "/docs/intro/"},
		{name: routes.RSS, want: "/rss.xml"},
		{name: routes.NotFound, want: "/404.html"},
	}

	for _, tc := range cases {
		got, err := table.Path(tc.name, tc.params)
		if err != nil {
			t.Fatalf("path %s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("path %s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestPathUsesBlogBasePathWithoutTrailingSlash(t *testing.T) {
	off := false
	table := newTable(t, func(cfg *siteconfig.Config) {
		cfg.Blog.BasePath = "/posts/"
		cfg.Build.TrailingSlash = &off
	})

	got, err := table.Path(routes.BlogTag, map[string]any{"slug": "go"})
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if got != "/posts/tag/go" {
		t.Fatalf("expected /posts/tag/go, got %q", got)
	}
}

func TestURLUsesSiteURL(t *testing.T) {
	table := newTable(t, func(cfg *siteconfig.Config) {
		cfg.URL = "https://example.com/"
	})

	got, err := table.URL(routes.Projects, nil)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if got != "https://example.com/projects/" {
		t.Fatalf("unexpected url %q", got)
	}

	relative := newTable(t, nil)
	got, err = relative.URL(routes.Projects, nil)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if got != "/projects/" {
		t.Fatalf("expected relative path without site url, got %q", got)
	}
}

func TestHrefKeepsSiteSubPath(t *testing.T) {
	table := newTable(t, func(cfg *siteconfig.Config) {
		cfg.URL = "https://example.com/site"
	})

	path, err := table.Path(routes.Changelog, nil)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/changelog/" {
		t.Fatalf("expected path without sub path, got %q", path)
	}
	href, err := table.Href(routes.Changelog, nil)
	if err != nil {
		t.Fatalf("href: %v", err)
	}
	if href != "/site/changelog/" {
		t.Fatalf("expected sub path href, got %q", href)
	}
}

func TestPathUnknownRoute(t *testing.T) {
	table := newTable(t, nil)
	if _, err := table.Path("missing", nil); !errors.Is(err, routes.ErrUnknownRoute) {
		t.Fatalf("expected ErrUnknownRoute, got %v", err)
	}
}

func TestOutputFile(t *testing.T) {
	cases := map[string]string{
		"/":                         "index.html",
		"":                          "index.html",
		"/blog/":                    "blog/index.html",
		"/blog/hello/":              "blog/hello/index.html",
		"/rss.xml":                  "rss.xml",
		"/404.html":                 "404.html",
		"/pricing":                  "pricing.html",
		"/blog/%E4%BD%A0%E5%A5%BD/": "blog/你好/index.html",
		"/../escape/":               "escape/index.html",
	}
	for in, want := range cases {
		if got := routes.OutputFile(in); got != want {
			t.Fatalf("OutputFile(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestRelPrefixesSubPath(t *testing.T) {
	table := newTable(t, func(cfg *siteconfig.Config) {
		cfg.URL = "https://example.com/site/"
	})
	if got := table.Rel("assets/theme.css"); got != "/site/assets/theme.css" {
		t.Fatalf("unexpected rel %q", got)
	}
	if got := table.Rel("https://cdn.example.com/x.js"); got != "https://cdn.example.com/x.js" {
		t.Fatalf("absolute urls must pass through, got %q", got)
	}
}
